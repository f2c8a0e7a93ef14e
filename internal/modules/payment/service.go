package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fundis/internal/domain"
	"fundis/internal/mpesa"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const finalizeTimeout = 10 * time.Second

// Service owns the payment session lifecycle end to end: local validation,
// push initiation, the confirmation poll, and the side effects of a terminal
// outcome (booking record, notification). It is the only component that
// produces caller-visible outcomes; gateway and poller failures are
// intermediate signals.
type Service struct {
	gateway  gatewayClient
	sessions sessionRepo
	bookings bookingWriter
	notifs   Notifier
	loggerf  func(format string, args ...interface{})
	cfg      PollConfig

	mu     sync.Mutex
	active map[int64]context.CancelFunc
	wg     sync.WaitGroup
}

func NewService(gateway gatewayClient, sessions sessionRepo, bookings bookingWriter, notifs Notifier, cfg PollConfig, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultPollConfig()
	}
	if cfg.PendingResultCode == "" {
		cfg.PendingResultCode = mpesa.DefaultPendingResultCode
	}
	return &Service{
		gateway:  gateway,
		sessions: sessions,
		bookings: bookings,
		notifs:   notifs,
		loggerf:  loggerf,
		cfg:      cfg,
		active:   make(map[int64]context.CancelFunc),
	}
}

// StartPayment validates the payer's number locally, initiates the STK push
// and, if the gateway accepts it, persists the session and starts the single
// confirmation poller for it. An invalid number never reaches the network.
func (s *Service) StartPayment(ctx context.Context, req StartPaymentRequest) (*domain.PaymentSession, error) {
	if !mpesa.ValidPhone(req.PhoneNumber) {
		return nil, ErrInvalidPhone
	}

	phone, err := mpesa.NormalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	accountReference := fmt.Sprintf("FUNDIS%d", time.Now().UnixMilli())
	description := req.Booking.ServiceName + " booking"

	result, err := s.gateway.InitiateSTKPush(ctx, phone, req.Amount, accountReference, description)
	if err != nil {
		var rejected *mpesa.RejectedError
		if errors.As(err, &rejected) {
			// Keep the refused attempt on record; no poller is started.
			failed := &domain.PaymentSession{
				AccountReference: accountReference,
				Description:      description,
				PhoneNumber:      phone,
				Amount:           req.Amount,
				Status:           domain.PaymentSessionFailed,
				FailureReason:    rejected.Description,
				BookingDraft:     req.Booking.encode(),
			}
			if createErr := s.sessions.Create(ctx, failed); createErr != nil {
				s.loggerf("level=error msg=failed to record rejected session reference=%s err=%v", accountReference, createErr)
			}
		}
		return nil, err
	}

	session := &domain.PaymentSession{
		AccountReference:  accountReference,
		Description:       description,
		PhoneNumber:       phone,
		Amount:            req.Amount,
		CheckoutRequestID: result.CheckoutRequestID,
		MerchantRequestID: result.MerchantRequestID,
		Status:            domain.PaymentSessionPending,
		BookingDraft:      req.Booking.encode(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=stk push accepted session_id=%d checkout_request_id=%s reference=%s", session.ID, session.CheckoutRequestID, accountReference)
	s.spawnPoller(session.ID, session.CheckoutRequestID)
	return session, nil
}

// RetryPayment re-arms a session that was reset to idle after a failure and
// pushes again, possibly to a different phone number.
func (s *Service) RetryPayment(ctx context.Context, sessionID int64, phoneNumber string) (*domain.PaymentSession, error) {
	if !mpesa.ValidPhone(phoneNumber) {
		return nil, ErrInvalidPhone
	}

	if s.isActive(sessionID) {
		return nil, ErrAlreadyInProgress
	}

	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case domain.PaymentSessionPending:
		return nil, ErrAlreadyInProgress
	case domain.PaymentSessionIdle:
	default:
		return nil, ErrNotRetryable
	}

	phone, err := mpesa.NormalizePhone(phoneNumber)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	result, err := s.gateway.InitiateSTKPush(ctx, phone, session.Amount, session.AccountReference, session.Description)
	if err != nil {
		// Session stays idle; the payer can retry again.
		return nil, err
	}

	changed, err := s.sessions.MarkPending(ctx, sessionID, phone, result.CheckoutRequestID, result.MerchantRequestID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrAlreadyInProgress
	}

	s.loggerf("level=info msg=stk push retry accepted session_id=%d checkout_request_id=%s", sessionID, result.CheckoutRequestID)
	s.spawnPoller(sessionID, result.CheckoutRequestID)
	return s.getSession(ctx, sessionID)
}

func (s *Service) GetSession(ctx context.Context, sessionID int64) (*domain.PaymentSession, error) {
	return s.getSession(ctx, sessionID)
}

// CancelPayment tears down the active poller for a session, if any. The
// session stays pending in storage; no terminal event will ever be delivered
// for it after cancellation.
func (s *Service) CancelPayment(sessionID int64) bool {
	s.mu.Lock()
	cancel, ok := s.active[sessionID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// ResetSession returns a failed session to idle so the payer can retry with a
// fresh number.
func (s *Service) ResetSession(ctx context.Context, sessionID int64) (*domain.PaymentSession, error) {
	if s.isActive(sessionID) {
		return nil, ErrAlreadyInProgress
	}

	changed, err := s.sessions.ResetToIdle(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !changed {
		if _, getErr := s.getSession(ctx, sessionID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotResettable
	}
	return s.getSession(ctx, sessionID)
}

// HandleCallback processes the gateway's asynchronous result callback. It is
// a fast path to the same idempotent terminal transitions the poller uses, so
// whichever of the two observes the outcome first wins and the other becomes
// a no-op.
func (s *Service) HandleCallback(ctx context.Context, rawBody []byte) error {
	var envelope stkCallbackEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return fmt.Errorf("decoding stk callback: %w", err)
	}

	cb := envelope.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return errors.New("stk callback missing CheckoutRequestID")
	}

	if err := s.sessions.SaveCallbackRawBody(ctx, cb.CheckoutRequestID, string(rawBody)); err != nil {
		s.loggerf("level=error msg=failed to save callback body checkout_request_id=%s err=%v", cb.CheckoutRequestID, err)
	}

	session, err := s.sessions.GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if cb.ResultCode == 0 {
		receipt := cb.receiptNumber()
		if receipt == "" {
			receipt = cb.CheckoutRequestID
		}
		s.finalizeSuccess(session.ID, receipt)
	} else {
		reason := cb.ResultDesc
		if reason == "" {
			reason = "payment failed"
		}
		s.finalizeFailure(session.ID, reason)
	}

	// The poller for this session has nothing left to observe.
	s.CancelPayment(session.ID)
	return nil
}

// Close cancels every active poller and waits for them to drain. Used on
// shutdown.
func (s *Service) Close() {
	s.mu.Lock()
	for _, cancel := range s.active {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) getSession(ctx context.Context, sessionID int64) (*domain.PaymentSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *Service) isActive(sessionID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[sessionID]
	return ok
}

// spawnPoller starts the confirmation poll goroutine for a session. The
// active map guarantees at most one poller per session; registration happens
// before the goroutine runs so a racing second start is rejected.
func (s *Service) spawnPoller(sessionID int64, checkoutRequestID string) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if _, exists := s.active[sessionID]; exists {
		s.mu.Unlock()
		cancel()
		return
	}
	s.active[sessionID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.active, sessionID)
			s.mu.Unlock()
			cancel()
		}()

		outcome := pollForOutcome(ctx, s.gateway, checkoutRequestID, s.cfg)
		switch outcome.state {
		case pollCancelled:
			s.loggerf("level=info msg=payment poll cancelled session_id=%d", sessionID)
		case pollSuccess:
			s.finalizeSuccess(sessionID, outcome.receipt)
		default:
			s.finalizeFailure(sessionID, outcome.reason)
		}
	}()
}

func (s *Service) finalizeSuccess(sessionID int64, receipt string) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	changed, err := s.sessions.MarkSucceeded(ctx, sessionID, receipt)
	if err != nil {
		s.loggerf("level=error msg=failed to mark session succeeded session_id=%d err=%v", sessionID, err)
		return
	}
	if !changed {
		// Already terminal; the notification for it has been sent.
		return
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		s.loggerf("level=error msg=failed to load succeeded session session_id=%d err=%v", sessionID, err)
	} else {
		s.createBooking(ctx, session, receipt)
	}

	s.loggerf("level=info msg=payment succeeded session_id=%d receipt=%s", sessionID, receipt)
	s.notifs.PaymentSucceeded(sessionID, receipt)
}

func (s *Service) finalizeFailure(sessionID int64, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	changed, err := s.sessions.MarkFailed(ctx, sessionID, reason)
	if err != nil {
		s.loggerf("level=error msg=failed to mark session failed session_id=%d err=%v", sessionID, err)
		return
	}
	if !changed {
		return
	}

	s.loggerf("level=info msg=payment failed session_id=%d reason=%q", sessionID, reason)
	s.notifs.PaymentFailed(sessionID, reason)
}

func (s *Service) createBooking(ctx context.Context, session *domain.PaymentSession, receipt string) {
	draft := decodeBookingDraft(session.BookingDraft)
	booking := &domain.Booking{
		BookingNumber:     "BK" + strconv.FormatInt(time.Now().UnixMilli(), 10),
		ServiceName:       draft.ServiceName,
		ProfessionalName:  draft.ProfessionalName,
		ProfessionalPhone: draft.ProfessionalPhone,
		Date:              draft.Date,
		Time:              draft.Time,
		Location:          draft.Location,
		Price:             session.Amount,
		TransactionID:     receipt,
		Status:            domain.BookingConfirmed,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			// A booking for this receipt already exists (callback and poller
			// both observed the outcome); nothing to do.
			return
		}
		s.loggerf("level=error msg=failed to create booking session_id=%d receipt=%s err=%v", session.ID, receipt, err)
		return
	}
	s.loggerf("level=info msg=booking created session_id=%d booking_number=%s receipt=%s", session.ID, booking.BookingNumber, receipt)
}
