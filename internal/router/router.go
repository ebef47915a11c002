package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/handlers"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/utils"
)

func New(h *handlers.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(utils.CorsMiddleware)
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.HandleFunc("/donations/sessions", h.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/donations/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/donations/sessions/{id}/amount", h.SelectAmount).Methods(http.MethodPost)
	r.HandleFunc("/donations/sessions/{id}/continue", h.Continue).Methods(http.MethodPost)
	r.HandleFunc("/donations/sessions/{id}/donor-details", h.SubmitDonorDetails).Methods(http.MethodPost)
	r.HandleFunc("/donations/sessions/{id}/payment-method", h.SelectPaymentMethod).Methods(http.MethodPost)
	r.HandleFunc("/donations/sessions/{id}/initiate", h.InitiatePayment).Methods(http.MethodPost)
	r.HandleFunc("/donations/sessions/{id}/gateway-event", h.GatewayEvent).Methods(http.MethodPost)
	r.HandleFunc("/donations/sessions/{id}/outcome", h.ReportOutcome).Methods(http.MethodPost)
	r.HandleFunc("/donations/sessions/{id}/proof", h.UploadProof).Methods(http.MethodPost)
	r.HandleFunc("/donations/sessions/{id}/reset", h.ResetSession).Methods(http.MethodPost)
	r.HandleFunc("/donations/bank-account", h.BankAccount).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health(r)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}
