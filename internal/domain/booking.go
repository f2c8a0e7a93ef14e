package domain

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is the persisted record of a paid-for service appointment. It is
// created exactly once, when the payment session for it succeeds, and the
// payment workflow never mutates it afterwards.
type Booking struct {
	ID                int64         `json:"id"`
	BookingNumber     string        `json:"booking_number"`
	ServiceName       string        `json:"service_name"`
	ProfessionalName  string        `json:"professional_name"`
	ProfessionalPhone string        `json:"professional_phone"`
	Date              string        `json:"date"`
	Time              string        `json:"time"`
	Location          string        `json:"location"`
	Price             int64         `json:"price"`
	TransactionID     string        `json:"transaction_id"`
	Status            BookingStatus `json:"status"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
