package payment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"fundis/internal/mpesa"
	"fundis/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/mpesa", h.StartPayment)
	rg.GET("/payments/mpesa/:id", h.GetSession)
	rg.POST("/payments/mpesa/:id/cancel", h.CancelPayment)
	rg.POST("/payments/mpesa/:id/reset", h.ResetSession)
	rg.POST("/payments/mpesa/:id/retry", h.RetryPayment)
	rg.POST("/payments/mpesa/callback", h.Callback)
}

func (h *Handler) StartPayment(c *gin.Context) {
	var req StartPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}

	session, err := h.service.StartPayment(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, session)
}

func (h *Handler) GetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

func (h *Handler) CancelPayment(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	cancelled := h.service.CancelPayment(id)
	response.Success(c, http.StatusOK, gin.H{"cancelled": cancelled})
}

func (h *Handler) ResetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.service.ResetSession(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

func (h *Handler) RetryPayment(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req RetryPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	session, err := h.service.RetryPayment(c.Request.Context(), id, req.PhoneNumber)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, session)
}

// Callback receives the Daraja result callback. Daraja expects a 200 with a
// zero ResultCode body regardless of how we processed it; anything else makes
// it retry the delivery.
func (h *Handler) Callback(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
		return
	}

	if err := h.service.HandleCallback(c.Request.Context(), rawBody); err != nil {
		h.loggerf("level=error msg=stk callback processing failed err=%v", err)
	}
	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}

func (h *Handler) sessionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "session id must be an integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var rejected *mpesa.RejectedError
	switch {
	case errors.Is(err, ErrInvalidPhone):
		response.Error(c, http.StatusBadRequest, "INVALID_PHONE", "phone number must be a Kenyan mobile number")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", "payment session not found")
	case errors.Is(err, ErrAlreadyInProgress):
		response.Error(c, http.StatusConflict, "PAYMENT_IN_PROGRESS", "a payment is already in progress for this session")
	case errors.Is(err, ErrNotResettable):
		response.Error(c, http.StatusConflict, "NOT_RESETTABLE", "only failed sessions can be reset")
	case errors.Is(err, ErrNotRetryable):
		response.Error(c, http.StatusConflict, "NOT_RETRYABLE", "session must be reset before retrying")
	case errors.As(err, &rejected):
		h.loggerf("level=warn msg=stk push rejected code=%s desc=%q", rejected.Code, rejected.Description)
		response.Error(c, http.StatusBadGateway, "PUSH_REJECTED", rejected.Description)
	case errors.Is(err, mpesa.ErrAuth):
		h.loggerf("level=error msg=mpesa auth failed err=%v", err)
		response.Error(c, http.StatusBadGateway, "GATEWAY_AUTH", "payment gateway authentication failed")
	case errors.Is(err, mpesa.ErrNetwork):
		h.loggerf("level=error msg=mpesa request failed err=%v", err)
		response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "payment gateway is unreachable")
	default:
		h.loggerf("level=error msg=payment request failed err=%v", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
