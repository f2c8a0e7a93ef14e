package booking

import (
	"context"

	"fundis/internal/domain"
)

type bookingRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, limit, offset int) ([]domain.Booking, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (bool, error)
}
