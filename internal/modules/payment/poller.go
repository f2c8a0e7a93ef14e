package payment

import (
	"context"
	"time"

	"fundis/internal/mpesa"
)

// PollConfig tunes the confirmation poll loop. The pending code is the
// provider-specific "still processing" sentinel; it is configuration, not a
// universal contract.
type PollConfig struct {
	InitialDelay      time.Duration
	Interval          time.Duration
	MaxAttempts       int
	PendingResultCode string
}

// DefaultPollConfig matches the payer-facing confirmation window: one grace
// delay, then up to 30 attempts 10s apart (about five minutes end to end).
func DefaultPollConfig() PollConfig {
	return PollConfig{
		InitialDelay:      5 * time.Second,
		Interval:          10 * time.Second,
		MaxAttempts:       30,
		PendingResultCode: mpesa.DefaultPendingResultCode,
	}
}

type pollState int

const (
	pollSuccess pollState = iota
	pollFailure
	pollTimedOut
	pollCancelled
)

type pollOutcome struct {
	state   pollState
	receipt string
	reason  string
}

type statusQuerier interface {
	QuerySTKPushStatus(ctx context.Context, checkoutRequestID string) (*mpesa.STKPushStatus, error)
}

// pollForOutcome drives sequential status queries for one accepted push
// request until a terminal result or the attempt budget runs out. Queries are
// strictly ordered: attempt N+1 is never issued before attempt N returned.
// Cancelling ctx stops the loop at the next suspension point and yields
// pollCancelled; no result is delivered for a cancelled session.
func pollForOutcome(ctx context.Context, querier statusQuerier, checkoutRequestID string, cfg PollConfig) pollOutcome {
	// The provider needs a moment to deliver the prompt to the payer's
	// device; querying immediately would just burn attempts.
	if !sleepCtx(ctx, cfg.InitialDelay) {
		return pollOutcome{state: pollCancelled}
	}

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 && !sleepCtx(ctx, cfg.Interval) {
			return pollOutcome{state: pollCancelled}
		}

		status, err := querier.QuerySTKPushStatus(ctx, checkoutRequestID)
		if ctx.Err() != nil {
			return pollOutcome{state: pollCancelled}
		}
		if err != nil {
			// Transient. A failed query consumes an attempt but is never a
			// terminal outcome on its own.
			continue
		}

		switch status.ResultCode {
		case mpesa.ResultCodeSuccess:
			receipt := status.MpesaReceiptNumber
			if receipt == "" {
				receipt = checkoutRequestID
			}
			return pollOutcome{state: pollSuccess, receipt: receipt}
		case "", cfg.PendingResultCode:
			// Still waiting on the payer.
		default:
			reason := status.ResultDesc
			if reason == "" {
				reason = "payment failed"
			}
			return pollOutcome{state: pollFailure, reason: reason}
		}
	}

	return pollOutcome{state: pollTimedOut, reason: "payment timeout"}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
