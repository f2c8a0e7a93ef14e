package payment

import "encoding/json"

// BookingDraft carries the appointment details that become a Booking record
// once the payment succeeds. It is stored on the session as JSON so the
// poller goroutine can finalize without the original request in scope.
type BookingDraft struct {
	ServiceName       string `json:"service_name" binding:"required"`
	ProfessionalName  string `json:"professional_name" binding:"required"`
	ProfessionalPhone string `json:"professional_phone"`
	Date              string `json:"date" binding:"required"`
	Time              string `json:"time" binding:"required"`
	Location          string `json:"location"`
}

func (d BookingDraft) encode() string {
	raw, _ := json.Marshal(d)
	return string(raw)
}

func decodeBookingDraft(raw string) BookingDraft {
	var d BookingDraft
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &d)
	}
	return d
}

type StartPaymentRequest struct {
	PhoneNumber string       `json:"phone_number" binding:"required"`
	Amount      int64        `json:"amount" binding:"required,gt=0"`
	Booking     BookingDraft `json:"booking" binding:"required"`
}

type RetryPaymentRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

// stkCallback mirrors the Daraja result callback payload bit for bit.
type stkCallbackEnvelope struct {
	Body struct {
		StkCallback stkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type stkCallback struct {
	MerchantRequestID string               `json:"MerchantRequestID"`
	CheckoutRequestID string               `json:"CheckoutRequestID"`
	ResultCode        int                  `json:"ResultCode"`
	ResultDesc        string               `json:"ResultDesc"`
	CallbackMetadata  *stkCallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type stkCallbackMetadata struct {
	Item []stkCallbackItem `json:"Item"`
}

type stkCallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

func (cb stkCallback) receiptNumber() string {
	if cb.CallbackMetadata == nil {
		return ""
	}
	for _, item := range cb.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			var receipt string
			if err := json.Unmarshal(item.Value, &receipt); err == nil {
				return receipt
			}
		}
	}
	return ""
}
