package gateway

import (
	"net/url"
	"strings"
	"sync"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/models"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/utils"
)

// Result distinguishes the three ways a navigation event can land: no
// recognizable status, first recognized status (reported), or a status seen
// after the session outcome was already delivered.
type Result int

const (
	ResultNoMatch Result = iota
	ResultReported
	ResultAlreadyReported
)

// Reporter receives at most one outcome per donation session.
type Reporter interface {
	ReportPaymentOutcome(outcome models.Outcome) error
}

// Classify maps a navigation URL from the hosted payment page to a terminal
// outcome. The status query parameter is authoritative; a case-insensitive
// substring search is the fallback for gateways that encode the status in the
// path. Unparseable URLs produce no classification.
func Classify(raw string) (models.Outcome, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return models.OutcomeNone, false
	}
	return classifyParsed(parsed, raw)
}

func classifyParsed(parsed *url.URL, raw string) (models.Outcome, bool) {
	switch strings.ToLower(parsed.Query().Get("status")) {
	case "success":
		return models.OutcomeSuccess, true
	case "failure":
		return models.OutcomeFailure, true
	case "cancel":
		return models.OutcomeCancelled, true
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "success"):
		return models.OutcomeSuccess, true
	case strings.Contains(lower, "failure"):
		return models.OutcomeFailure, true
	case strings.Contains(lower, "cancel"):
		return models.OutcomeCancelled, true
	}
	return models.OutcomeNone, false
}

// Observer consumes the navigation stream of one embedded payment page. The
// hosted checkout redirects through several intermediate URLs before landing
// on the final status URL; only the first recognizable one is reported.
type Observer struct {
	mu       sync.Mutex
	reported bool
	reporter Reporter
	log      *utils.Logger
}

func NewObserver(reporter Reporter, log *utils.Logger) *Observer {
	return &Observer{reporter: reporter, log: log}
}

func (o *Observer) Observe(raw string) Result {
	parsed, err := url.Parse(raw)
	if err != nil {
		o.log.Warn("gateway_url_unparseable", map[string]interface{}{"url": raw, "error": err.Error()})
		return ResultNoMatch
	}

	outcome, ok := classifyParsed(parsed, raw)
	if !ok {
		return ResultNoMatch
	}

	o.mu.Lock()
	if o.reported {
		o.mu.Unlock()
		return ResultAlreadyReported
	}
	o.reported = true
	o.mu.Unlock()

	if err := o.reporter.ReportPaymentOutcome(outcome); err != nil {
		// The classification matched but the session would not take it, e.g.
		// a reset raced the redirect. Re-arm so a later attempt can report.
		o.mu.Lock()
		o.reported = false
		o.mu.Unlock()
		o.log.Warn("gateway_outcome_rejected", map[string]interface{}{
			"outcome": outcome.String(),
			"error":   err.Error(),
		})
		return ResultNoMatch
	}
	return ResultReported
}

// Rearm clears the at-most-once latch when the owning session restarts.
func (o *Observer) Rearm() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reported = false
}
