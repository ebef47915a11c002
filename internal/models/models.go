package models

// Step is the current stage of a donation attempt.
type Step int

const (
	StepAmountSelection Step = iota
	StepDonorDetails
	StepPaymentMethodSelection
	StepPaymentProcessing
	StepOutcome
)

func (s Step) String() string {
	switch s {
	case StepAmountSelection:
		return "AMOUNT_SELECTION"
	case StepDonorDetails:
		return "DONOR_DETAILS"
	case StepPaymentMethodSelection:
		return "PAYMENT_METHOD_SELECTION"
	case StepPaymentProcessing:
		return "PAYMENT_PROCESSING"
	case StepOutcome:
		return "OUTCOME"
	}
	return "UNKNOWN"
}

// PaymentMethod values match the payment-type codes of the donation backend.
type PaymentMethod int

const (
	PaymentMethodNone   PaymentMethod = 0
	PaymentMethodOnline PaymentMethod = 3
	PaymentMethodManual PaymentMethod = 4
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodOnline || m == PaymentMethodManual
}

func (m PaymentMethod) String() string {
	switch m {
	case PaymentMethodOnline:
		return "ONLINE"
	case PaymentMethodManual:
		return "MANUAL"
	}
	return "NONE"
}

// Outcome is the terminal classification of a payment attempt.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
	OutcomeCancelled
	OutcomePending
	OutcomeProofReceived
)

func (o Outcome) Valid() bool {
	return o >= OutcomeSuccess && o <= OutcomeProofReceived
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeFailure:
		return "FAILURE"
	case OutcomeCancelled:
		return "CANCELLED"
	case OutcomePending:
		return "PENDING"
	case OutcomeProofReceived:
		return "PROOF_RECEIVED"
	}
	return "NONE"
}

// DonorDetails is the tax-certificate information collected once per donor.
type DonorDetails struct {
	IdentityOrRegNo string `json:"identityOrRegNo"`
	IncomeTaxNumber string `json:"incomeTaxNumber"`
	Address         string `json:"address"`
	PhoneNumber     string `json:"phoneNumber"`
}

// MissingFields lists the required fields that are empty after trimming.
func (d DonorDetails) MissingFields() []string {
	missing := make([]string, 0, 4)
	if isBlank(d.IdentityOrRegNo) {
		missing = append(missing, "identityOrRegNo")
	}
	if isBlank(d.IncomeTaxNumber) {
		missing = append(missing, "incomeTaxNumber")
	}
	if isBlank(d.Address) {
		missing = append(missing, "address")
	}
	if isBlank(d.PhoneNumber) {
		missing = append(missing, "phoneNumber")
	}
	return missing
}

func isBlank(value string) bool {
	for _, r := range value {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

type BankAccount struct {
	Branch     string `json:"branch"`
	BranchCode string `json:"branchCode"`
	AccountNo  string `json:"accountNo"`
}

// SessionSnapshot is the read-only view of a donation session handed to clients.
type SessionSnapshot struct {
	ID               string        `json:"id"`
	Step             Step          `json:"step"`
	AmountCents      int64         `json:"amountCents"`
	DonorDetails     *DonorDetails `json:"donorDetails,omitempty"`
	PaymentMethod    PaymentMethod `json:"paymentMethod"`
	PaymentReference string        `json:"paymentReference,omitempty"`
	Outcome          Outcome       `json:"outcome"`
}
