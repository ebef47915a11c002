package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/auth"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/flow"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/gateway"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/metrics"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/models"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/utils"
)

// BankInfoProvider and ProofUploader are the two backend calls made outside
// the flow controller.
type BankInfoProvider interface {
	GetBankAccountInfo(ctx context.Context) (models.BankAccount, error)
}

type ProofUploader interface {
	UploadPaymentProof(ctx context.Context, referenceNumber string, amountCents int64, filename string, doc io.Reader) error
}

type Handler struct {
	Manager *flow.Manager
	Bank    BankInfoProvider
	Proof   ProofUploader
	Auth    auth.Port
	Log     *utils.Logger
}

func NewHandler(manager *flow.Manager, bank BankInfoProvider, proof ProofUploader, authPort auth.Port, logger *utils.Logger) *Handler {
	return &Handler{
		Manager: manager,
		Bank:    bank,
		Proof:   proof,
		Auth:    authPort,
		Log:     logger,
	}
}

type amountRequest struct {
	Amount string `json:"amount"`
}

type paymentMethodRequest struct {
	Method models.PaymentMethod `json:"method"`
}

type initiateRequest struct {
	IsAnonymous bool `json:"isAnonymous"`
}

type gatewayEventRequest struct {
	URL string `json:"url"`
}

type outcomeRequest struct {
	Outcome models.Outcome `json:"outcome"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, err := h.Auth.UserID(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctrl := h.Manager.Create(userID)
	utils.RespondJSON(w, http.StatusCreated, ctrl.Snapshot())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.session(w, r)
	if !ok {
		return
	}

	utils.RespondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) SelectAmount(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.session(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	cents, err := utils.ParseAmountToCents(req.Amount)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	if err := ctrl.SelectAmount(cents); err != nil {
		h.respondFlowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) Continue(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := ctrl.ConfirmAmountAndContinue(r.Context()); err != nil {
		h.respondFlowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) SubmitDonorDetails(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.session(w, r)
	if !ok {
		return
	}

	var details models.DonorDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	details.IdentityOrRegNo = strings.TrimSpace(details.IdentityOrRegNo)
	details.IncomeTaxNumber = strings.TrimSpace(details.IncomeTaxNumber)
	details.Address = strings.TrimSpace(details.Address)
	details.PhoneNumber = strings.TrimSpace(details.PhoneNumber)

	if err := ctrl.SubmitDonorDetails(r.Context(), details); err != nil {
		h.respondFlowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) SelectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.session(w, r)
	if !ok {
		return
	}

	var req paymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := ctrl.SelectPaymentMethod(req.Method); err != nil {
		h.respondFlowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.session(w, r)
	if !ok {
		return
	}

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := ctrl.InitiatePayment(r.Context(), req.IsAnonymous); err != nil {
		h.respondFlowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) GatewayEvent(w http.ResponseWriter, r *http.Request) {
	ctrl, observer, ok := h.session(w, r)
	if !ok {
		return
	}

	var req gatewayEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		utils.RespondError(w, http.StatusBadRequest, "url is required")
		return
	}

	result := observer.Observe(req.URL)
	if result == gateway.ResultNoMatch {
		metrics.ClassificationMisses.Inc()
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"result":  resultLabel(result),
		"session": ctrl.Snapshot(),
	})
}

func (h *Handler) ReportOutcome(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.session(w, r)
	if !ok {
		return
	}

	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := ctrl.ReportPaymentOutcome(req.Outcome); err != nil {
		h.respondFlowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) UploadProof(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.session(w, r)
	if !ok {
		return
	}

	snap := ctrl.Snapshot()
	if snap.Step != models.StepPaymentProcessing || snap.PaymentMethod != models.PaymentMethodManual {
		utils.RespondError(w, http.StatusConflict, "no manual payment awaiting proof")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("docFile")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "docFile is required")
		return
	}
	defer file.Close()

	if err := h.Proof.UploadPaymentProof(r.Context(), snap.PaymentReference, snap.AmountCents, header.Filename, file); err != nil {
		h.Log.Error("proof_upload_failed", map[string]interface{}{
			"sessionId": snap.ID,
			"error":     err.Error(),
		})
		// The selected file stays on the client; the upload may be retried.
		utils.RespondError(w, http.StatusBadGateway, "proof upload failed")
		return
	}

	// A reset may have raced the upload. Re-check before reporting so the
	// proof-received outcome never lands on a fresh attempt.
	after := ctrl.Snapshot()
	if after.Step != models.StepPaymentProcessing || after.PaymentReference != snap.PaymentReference {
		h.Log.Warn("proof_upload_session_restarted", map[string]interface{}{
			"sessionId":       snap.ID,
			"referenceNumber": snap.PaymentReference,
		})
		utils.RespondError(w, http.StatusConflict, "session restarted, start over")
		return
	}

	if err := ctrl.ReportPaymentOutcome(models.OutcomeProofReceived); err != nil {
		h.respondFlowError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, _, ok := h.session(w, r)
	if !ok {
		return
	}

	ctrl.Reset()
	utils.RespondJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *Handler) BankAccount(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Auth.UserID(r); err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	account, err := h.Bank.GetBankAccountInfo(r.Context())
	if err != nil {
		h.Log.Error("bank_account_lookup_failed", map[string]interface{}{"error": err.Error()})
		utils.RespondError(w, http.StatusBadGateway, "could not load bank account info")
		return
	}
	utils.RespondJSON(w, http.StatusOK, account)
}

// session resolves the session in the request path and checks that the caller
// owns it.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*flow.Controller, *gateway.Observer, bool) {
	userID, err := h.Auth.UserID(r)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "sign in required")
		return nil, nil, false
	}

	id := mux.Vars(r)["id"]
	ctrl, observer, err := h.Manager.Get(id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return nil, nil, false
	}
	if ctrl.UserID() != userID {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return nil, nil, false
	}

	// Every request on the session counts as activity, including attempts the
	// controller goes on to reject. The inactivity guard must not sweep a user
	// who is mid-interaction but keeps failing validation.
	ctrl.Touch()
	return ctrl, observer, true
}

func (h *Handler) respondFlowError(w http.ResponseWriter, err error) {
	var validation *flow.ValidationError
	if errors.As(err, &validation) {
		utils.RespondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  validation.Reason,
			"fields": validation.Fields,
		})
		return
	}

	var remote *flow.RemoteError
	if errors.As(err, &remote) {
		h.Log.Error("backend_call_failed", map[string]interface{}{
			"op":    remote.Op,
			"error": remote.Err.Error(),
		})
		utils.RespondError(w, http.StatusBadGateway, "the donation service is unavailable, please retry")
		return
	}

	switch {
	case errors.Is(err, flow.ErrBusy):
		utils.RespondError(w, http.StatusConflict, "a transition is already in progress")
	case errors.Is(err, flow.ErrInvalidTransition):
		utils.RespondError(w, http.StatusConflict, "operation not valid in the current step")
	case errors.Is(err, flow.ErrSessionReset):
		utils.RespondError(w, http.StatusConflict, "session restarted, start over")
	default:
		utils.RespondError(w, http.StatusInternalServerError, "unexpected error")
	}
}

func resultLabel(result gateway.Result) string {
	switch result {
	case gateway.ResultReported:
		return "reported"
	case gateway.ResultAlreadyReported:
		return "already_reported"
	}
	return "no_match"
}
