package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"fundis/internal/mpesa"
)

type scriptedQuerier struct {
	script []func() (*mpesa.STKPushStatus, error)
	calls  int
}

func (q *scriptedQuerier) QuerySTKPushStatus(ctx context.Context, checkoutRequestID string) (*mpesa.STKPushStatus, error) {
	if q.calls >= len(q.script) {
		return nil, errors.New("script exhausted")
	}
	step := q.script[q.calls]
	q.calls++
	return step()
}

func pending() func() (*mpesa.STKPushStatus, error) {
	return func() (*mpesa.STKPushStatus, error) {
		return &mpesa.STKPushStatus{ResultCode: "1032", ResultDesc: "Request is being processed"}, nil
	}
}

func succeeded(receipt string) func() (*mpesa.STKPushStatus, error) {
	return func() (*mpesa.STKPushStatus, error) {
		return &mpesa.STKPushStatus{ResultCode: "0", ResultDesc: "Success", MpesaReceiptNumber: receipt}, nil
	}
}

func declined(desc string) func() (*mpesa.STKPushStatus, error) {
	return func() (*mpesa.STKPushStatus, error) {
		return &mpesa.STKPushStatus{ResultCode: "1", ResultDesc: desc}, nil
	}
}

func transient() func() (*mpesa.STKPushStatus, error) {
	return func() (*mpesa.STKPushStatus, error) {
		return nil, mpesa.ErrNetwork
	}
}

func fastPollConfig(maxAttempts int) PollConfig {
	return PollConfig{
		InitialDelay:      time.Millisecond,
		Interval:          time.Millisecond,
		MaxAttempts:       maxAttempts,
		PendingResultCode: "1032",
	}
}

func TestPollForOutcome_SuccessOnThirdAttempt(t *testing.T) {
	q := &scriptedQuerier{script: []func() (*mpesa.STKPushStatus, error){
		pending(), pending(), succeeded("SGR7TKQ2LP"),
	}}

	out := pollForOutcome(context.Background(), q, "ws_CO_1", fastPollConfig(30))
	if out.state != pollSuccess {
		t.Fatalf("expected success, got state %d reason %q", out.state, out.reason)
	}
	if out.receipt != "SGR7TKQ2LP" {
		t.Fatalf("expected receipt SGR7TKQ2LP, got %q", out.receipt)
	}
	if q.calls != 3 {
		t.Fatalf("expected exactly 3 queries, got %d", q.calls)
	}
}

func TestPollForOutcome_FailureStopsImmediately(t *testing.T) {
	q := &scriptedQuerier{script: []func() (*mpesa.STKPushStatus, error){
		declined("Request cancelled by user"), succeeded("NEVER"),
	}}

	out := pollForOutcome(context.Background(), q, "ws_CO_2", fastPollConfig(30))
	if out.state != pollFailure {
		t.Fatalf("expected failure, got state %d", out.state)
	}
	if out.reason != "Request cancelled by user" {
		t.Fatalf("unexpected reason %q", out.reason)
	}
	if q.calls != 1 {
		t.Fatalf("expected polling to stop after first terminal result, got %d queries", q.calls)
	}
}

func TestPollForOutcome_BudgetExhausted(t *testing.T) {
	script := make([]func() (*mpesa.STKPushStatus, error), 5)
	for i := range script {
		script[i] = pending()
	}
	q := &scriptedQuerier{script: script}

	out := pollForOutcome(context.Background(), q, "ws_CO_3", fastPollConfig(5))
	if out.state != pollTimedOut {
		t.Fatalf("expected timeout, got state %d", out.state)
	}
	if out.reason != "payment timeout" {
		t.Fatalf("unexpected reason %q", out.reason)
	}
	if q.calls != 5 {
		t.Fatalf("expected exactly 5 queries, got %d", q.calls)
	}
}

func TestPollForOutcome_TransientErrorsConsumeAttempts(t *testing.T) {
	q := &scriptedQuerier{script: []func() (*mpesa.STKPushStatus, error){
		transient(), transient(), succeeded("QX12"),
	}}

	out := pollForOutcome(context.Background(), q, "ws_CO_4", fastPollConfig(30))
	if out.state != pollSuccess {
		t.Fatalf("expected success after transient errors, got state %d", out.state)
	}
	if q.calls != 3 {
		t.Fatalf("expected 3 queries, got %d", q.calls)
	}
}

func TestPollForOutcome_AllTransientErrorsTimeOut(t *testing.T) {
	script := make([]func() (*mpesa.STKPushStatus, error), 3)
	for i := range script {
		script[i] = transient()
	}
	q := &scriptedQuerier{script: script}

	out := pollForOutcome(context.Background(), q, "ws_CO_5", fastPollConfig(3))
	if out.state != pollTimedOut {
		t.Fatalf("expected timeout when every query fails, got state %d", out.state)
	}
}

func TestPollForOutcome_CancelledDuringInitialDelay(t *testing.T) {
	q := &scriptedQuerier{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastPollConfig(30)
	cfg.InitialDelay = time.Hour
	out := pollForOutcome(ctx, q, "ws_CO_6", cfg)
	if out.state != pollCancelled {
		t.Fatalf("expected cancelled, got state %d", out.state)
	}
	if q.calls != 0 {
		t.Fatalf("expected no queries after cancellation, got %d", q.calls)
	}
}

func TestPollForOutcome_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := &scriptedQuerier{script: []func() (*mpesa.STKPushStatus, error){
		func() (*mpesa.STKPushStatus, error) {
			cancel()
			return &mpesa.STKPushStatus{ResultCode: "1032"}, nil
		},
	}}

	out := pollForOutcome(ctx, q, "ws_CO_7", fastPollConfig(30))
	if out.state != pollCancelled {
		t.Fatalf("expected cancelled, got state %d", out.state)
	}
	if q.calls != 1 {
		t.Fatalf("expected exactly 1 query before cancellation took effect, got %d", q.calls)
	}
}

func TestPollForOutcome_ReceiptFallsBackToCheckoutRequestID(t *testing.T) {
	q := &scriptedQuerier{script: []func() (*mpesa.STKPushStatus, error){
		succeeded(""),
	}}

	out := pollForOutcome(context.Background(), q, "ws_CO_8", fastPollConfig(30))
	if out.state != pollSuccess {
		t.Fatalf("expected success, got state %d", out.state)
	}
	if out.receipt != "ws_CO_8" {
		t.Fatalf("expected checkout request id fallback, got %q", out.receipt)
	}
}
