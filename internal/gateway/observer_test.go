package gateway_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/gateway"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/models"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/utils"
)

type fakeReporter struct {
	mu         sync.Mutex
	calls      int
	last       models.Outcome
	rejectWith error
}

func (f *fakeReporter) ReportPaymentOutcome(outcome models.Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectWith != nil {
		return f.rejectWith
	}
	f.calls++
	f.last = outcome
	return nil
}

func (f *fakeReporter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    models.Outcome
		matched bool
	}{
		{name: "status param success", url: "https://pay.example/cb?status=success", want: models.OutcomeSuccess, matched: true},
		{name: "status param uppercase", url: "https://pay.example/cb?status=SUCCESS", want: models.OutcomeSuccess, matched: true},
		{name: "status param failure", url: "https://pay.example/cb?status=failure", want: models.OutcomeFailure, matched: true},
		{name: "status param cancel", url: "https://pay.example/cb?status=cancel", want: models.OutcomeCancelled, matched: true},
		{name: "param wins over path substring", url: "https://pay.example/cancel?status=success", want: models.OutcomeSuccess, matched: true},
		{name: "substring fallback success", url: "https://pay.example/checkout/success/done", want: models.OutcomeSuccess, matched: true},
		{name: "substring fallback failure", url: "https://pay.example/FAILURE", want: models.OutcomeFailure, matched: true},
		{name: "substring fallback cancel", url: "https://pay.example/cb/cancelled", want: models.OutcomeCancelled, matched: true},
		{name: "no match", url: "https://pay.example/callback", matched: false},
		{name: "unknown status param no substring", url: "https://pay.example/cb?status=whatever", matched: false},
		{name: "unparseable url", url: "://missing-scheme", matched: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := gateway.Classify(tt.url)

			if matched != tt.matched {
				t.Fatalf("Classify(%q) matched = %v, want %v", tt.url, matched, tt.matched)
			}
			if matched && got != tt.want {
				t.Fatalf("Classify(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestObserverUnparseableURL(t *testing.T) {
	reporter := &fakeReporter{}
	observer := gateway.NewObserver(reporter, utils.NewLogger())

	if got := observer.Observe("://missing-scheme?status=success"); got != gateway.ResultNoMatch {
		t.Fatalf("unparseable url = %v, want no match", got)
	}
	if reporter.callCount() != 0 {
		t.Fatalf("reporter called %d times, want 0", reporter.callCount())
	}
}

func TestObserverAtMostOnce(t *testing.T) {
	reporter := &fakeReporter{}
	observer := gateway.NewObserver(reporter, utils.NewLogger())

	if got := observer.Observe("https://pay.example/callback"); got != gateway.ResultNoMatch {
		t.Fatalf("first event = %v, want no match", got)
	}
	if got := observer.Observe("https://pay.example/callback?status=cancel"); got != gateway.ResultReported {
		t.Fatalf("second event = %v, want reported", got)
	}
	if got := observer.Observe("https://pay.example/callback?status=success"); got != gateway.ResultAlreadyReported {
		t.Fatalf("third event = %v, want already reported", got)
	}

	if reporter.callCount() != 1 {
		t.Fatalf("reporter called %d times, want 1", reporter.callCount())
	}
	if reporter.last != models.OutcomeCancelled {
		t.Fatalf("reported outcome = %v, want %v", reporter.last, models.OutcomeCancelled)
	}
}

func TestObserverIntermediateRedirects(t *testing.T) {
	reporter := &fakeReporter{}
	observer := gateway.NewObserver(reporter, utils.NewLogger())

	for _, u := range []string{
		"https://gateway.example/session/abc",
		"https://gateway.example/session/abc/3ds",
		"https://gateway.example/redirecting",
	} {
		if got := observer.Observe(u); got != gateway.ResultNoMatch {
			t.Fatalf("intermediate %q classified as %v", u, got)
		}
	}

	if got := observer.Observe("https://app.example/return?status=success"); got != gateway.ResultReported {
		t.Fatalf("final redirect = %v, want reported", got)
	}
	if reporter.callCount() != 1 {
		t.Fatalf("reporter called %d times, want 1", reporter.callCount())
	}
}

func TestObserverRearm(t *testing.T) {
	reporter := &fakeReporter{}
	observer := gateway.NewObserver(reporter, utils.NewLogger())

	if got := observer.Observe("https://x/cb?status=success"); got != gateway.ResultReported {
		t.Fatalf("got %v, want reported", got)
	}

	observer.Rearm()

	if got := observer.Observe("https://x/cb?status=failure"); got != gateway.ResultReported {
		t.Fatalf("after rearm got %v, want reported", got)
	}
	if reporter.callCount() != 2 {
		t.Fatalf("reporter called %d times, want 2", reporter.callCount())
	}
}

func TestObserverRejectedReportRearms(t *testing.T) {
	reporter := &fakeReporter{rejectWith: errors.New("not in payment processing")}
	observer := gateway.NewObserver(reporter, utils.NewLogger())

	if got := observer.Observe("https://x/cb?status=success"); got != gateway.ResultNoMatch {
		t.Fatalf("rejected report returned %v, want no match", got)
	}

	reporter.mu.Lock()
	reporter.rejectWith = nil
	reporter.mu.Unlock()

	if got := observer.Observe("https://x/cb?status=success"); got != gateway.ResultReported {
		t.Fatalf("retry after rejection = %v, want reported", got)
	}
}
