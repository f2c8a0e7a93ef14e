package repository

import (
	"context"

	"fundis/internal/domain"

	"gorm.io/gorm"
)

type PaymentSessionRepository struct {
	db *gorm.DB
}

func NewPaymentSessionRepository(db *gorm.DB) *PaymentSessionRepository {
	return &PaymentSessionRepository{db: db}
}

func (r *PaymentSessionRepository) Create(ctx context.Context, s *domain.PaymentSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *PaymentSessionRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentSession, error) {
	var s domain.PaymentSession
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PaymentSessionRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*domain.PaymentSession, error) {
	var s domain.PaymentSession
	if err := r.db.WithContext(ctx).Where("checkout_request_id = ?", checkoutRequestID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkPending arms an idle session for a fresh push attempt. Used by the
// retry path after ResetToIdle; the initial attempt creates the session in
// pending state directly.
func (r *PaymentSessionRepository) MarkPending(ctx context.Context, id int64, phoneNumber, checkoutRequestID, merchantRequestID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.PaymentSession{}).
		Where("id = ? AND status = ?", id, domain.PaymentSessionIdle).
		Updates(map[string]interface{}{
			"status":              domain.PaymentSessionPending,
			"phone_number":        phoneNumber,
			"checkout_request_id": checkoutRequestID,
			"merchant_request_id": merchantRequestID,
		})
	return res.RowsAffected > 0, res.Error
}

// MarkSucceeded moves a pending session to succeeded and records the receipt.
// The conditional update makes the terminal transition idempotent: a second
// finalize attempt affects zero rows and reports changed=false.
func (r *PaymentSessionRepository) MarkSucceeded(ctx context.Context, id int64, receipt string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.PaymentSession{}).
		Where("id = ? AND status = ?", id, domain.PaymentSessionPending).
		Updates(map[string]interface{}{
			"status":         domain.PaymentSessionSucceeded,
			"receipt_number": receipt,
		})
	return res.RowsAffected > 0, res.Error
}

// MarkFailed moves a pending session to failed with a human-readable reason.
func (r *PaymentSessionRepository) MarkFailed(ctx context.Context, id int64, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.PaymentSession{}).
		Where("id = ? AND status = ?", id, domain.PaymentSessionPending).
		Updates(map[string]interface{}{
			"status":         domain.PaymentSessionFailed,
			"failure_reason": reason,
		})
	return res.RowsAffected > 0, res.Error
}

// ResetToIdle returns a failed session to idle so the payer can retry with a
// fresh phone number. Checkout correlation state from the failed attempt is
// cleared to keep the status/checkout-id invariant.
func (r *PaymentSessionRepository) ResetToIdle(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.PaymentSession{}).
		Where("id = ? AND status = ?", id, domain.PaymentSessionFailed).
		Updates(map[string]interface{}{
			"status":              domain.PaymentSessionIdle,
			"checkout_request_id": "",
			"merchant_request_id": "",
			"receipt_number":      "",
			"failure_reason":      "",
			"phone_number":        "",
		})
	return res.RowsAffected > 0, res.Error
}

func (r *PaymentSessionRepository) SaveCallbackRawBody(ctx context.Context, checkoutRequestID, rawBody string) error {
	return r.db.WithContext(ctx).
		Model(&domain.PaymentSession{}).
		Where("checkout_request_id = ?", checkoutRequestID).
		Update("callback_raw_body", rawBody).Error
}
