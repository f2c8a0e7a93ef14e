package booking

import (
	"context"
	"errors"

	"fundis/internal/domain"

	"gorm.io/gorm"
)

const defaultListLimit = 50

// Service reads the bookings created by the payment workflow and manages
// their post-payment lifecycle (completion, cancellation).
type Service struct {
	repo    bookingRepo
	loggerf func(format string, args ...interface{})
}

func NewService(repo bookingRepo, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{repo: repo, loggerf: loggerf}
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error) {
	b, err := s.repo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// UpdateStatus moves a booking along confirmed -> completed or
// confirmed -> cancelled. Terminal states never change again.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !validTransition(current.Status, status) {
		return nil, ErrInvalidTransition
	}

	if _, err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.loggerf("level=info msg=booking status updated booking_id=%d status=%s", id, status)
	return s.Get(ctx, id)
}

func validTransition(from, to domain.BookingStatus) bool {
	if from != domain.BookingConfirmed {
		return false
	}
	return to == domain.BookingCompleted || to == domain.BookingCancelled
}
