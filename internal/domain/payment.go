package domain

import "time"

type PaymentSessionStatus string

const (
	PaymentSessionIdle      PaymentSessionStatus = "idle"
	PaymentSessionPending   PaymentSessionStatus = "pending"
	PaymentSessionSucceeded PaymentSessionStatus = "succeeded"
	PaymentSessionFailed    PaymentSessionStatus = "failed"
)

// PaymentSession is one STK push attempt. CheckoutRequestID is empty until the
// gateway accepts the push request; ReceiptNumber is set only on success.
type PaymentSession struct {
	ID                int64                `gorm:"primaryKey" json:"id"`
	AccountReference  string               `gorm:"type:varchar(64);index;not null" json:"account_reference"`
	Description       string               `gorm:"type:text" json:"description"`
	PhoneNumber       string               `gorm:"type:varchar(16)" json:"phone_number"`
	Amount            int64                `gorm:"not null" json:"amount"`
	CheckoutRequestID string               `gorm:"type:varchar(64);index" json:"checkout_request_id,omitempty"`
	MerchantRequestID string               `gorm:"type:varchar(64)" json:"merchant_request_id,omitempty"`
	Status            PaymentSessionStatus `gorm:"type:varchar(16);default:'idle';index" json:"status"`
	ReceiptNumber     string               `gorm:"type:varchar(32)" json:"receipt_number,omitempty"`
	FailureReason     string               `gorm:"type:text" json:"failure_reason,omitempty"`
	BookingDraft      string               `gorm:"type:text" json:"-"`
	CallbackRawBody   string               `gorm:"type:text" json:"-"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

func (PaymentSession) TableName() string { return "payment_sessions" }
