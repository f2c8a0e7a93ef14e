package repository

import (
	"context"
	"time"

	"fundis/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                int64     `gorm:"column:id;primaryKey"`
	BookingNumber     string    `gorm:"column:booking_number;uniqueIndex"`
	ServiceName       string    `gorm:"column:service_name"`
	ProfessionalName  string    `gorm:"column:professional_name"`
	ProfessionalPhone string    `gorm:"column:professional_phone"`
	Date              string    `gorm:"column:date"`
	Time              string    `gorm:"column:time"`
	Location          string    `gorm:"column:location"`
	Price             int64     `gorm:"column:price"`
	TransactionID     string    `gorm:"column:transaction_id;uniqueIndex"`
	Status            string    `gorm:"column:status"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:                m.ID,
		BookingNumber:     m.BookingNumber,
		ServiceName:       m.ServiceName,
		ProfessionalName:  m.ProfessionalName,
		ProfessionalPhone: m.ProfessionalPhone,
		Date:              m.Date,
		Time:              m.Time,
		Location:          m.Location,
		Price:             m.Price,
		TransactionID:     m.TransactionID,
		Status:            domain.BookingStatus(m.Status),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:                b.ID,
		BookingNumber:     b.BookingNumber,
		ServiceName:       b.ServiceName,
		ProfessionalName:  b.ProfessionalName,
		ProfessionalPhone: b.ProfessionalPhone,
		Date:              b.Date,
		Time:              b.Time,
		Location:          b.Location,
		Price:             b.Price,
		TransactionID:     b.TransactionID,
		Status:            string(b.Status),
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// List returns bookings newest first, for the "my bookings" view.
func (r *BookingRepository) List(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// UpdateStatus changes a booking's status. Reports whether a row changed so
// callers can tell an unknown id from a no-op.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	return tx.RowsAffected > 0, tx.Error
}

func (r *BookingRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}
