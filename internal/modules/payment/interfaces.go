package payment

import (
	"context"

	"fundis/internal/domain"
	"fundis/internal/mpesa"
)

type gatewayClient interface {
	InitiateSTKPush(ctx context.Context, phoneNumber string, amount int64, accountReference, description string) (*mpesa.STKPushResult, error)
	QuerySTKPushStatus(ctx context.Context, checkoutRequestID string) (*mpesa.STKPushStatus, error)
}

type sessionRepo interface {
	Create(ctx context.Context, s *domain.PaymentSession) error
	GetByID(ctx context.Context, id int64) (*domain.PaymentSession, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.PaymentSession, error)
	MarkPending(ctx context.Context, id int64, phoneNumber, checkoutRequestID, merchantRequestID string) (bool, error)
	MarkSucceeded(ctx context.Context, id int64, receipt string) (bool, error)
	MarkFailed(ctx context.Context, id int64, reason string) (bool, error)
	ResetToIdle(ctx context.Context, id int64) (bool, error)
	SaveCallbackRawBody(ctx context.Context, checkoutRequestID, rawBody string) error
}

type bookingWriter interface {
	Create(ctx context.Context, b *domain.Booking) error
}

// Notifier delivers the single terminal event of a payment session to
// whoever is watching it (the websocket feed in production).
type Notifier interface {
	PaymentSucceeded(sessionID int64, receipt string)
	PaymentFailed(sessionID int64, reason string)
}
