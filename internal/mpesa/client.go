package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	// ResponseCodeAccepted is the only initiation response code that means the
	// push request was accepted by the gateway.
	ResponseCodeAccepted = "0"

	// ResultCodeSuccess is the terminal "paid" result code of a status query.
	ResultCodeSuccess = "0"

	// DefaultPendingResultCode is Safaricom's "request is being processed"
	// sentinel. Other providers use different sentinels, so the poller takes
	// it from configuration rather than from this constant directly.
	DefaultPendingResultCode = "1032"
)

var (
	ErrAuth    = errors.New("mpesa: authentication failed")
	ErrNetwork = errors.New("mpesa: network error")
)

// RejectedError means the gateway actively refused an STK push request, as
// opposed to a transport failure.
type RejectedError struct {
	Code        string
	Description string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("mpesa: request rejected (code=%s): %s", e.Code, e.Description)
}

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	Passkey        string
	Shortcode      string
	BaseURL        string
	CallbackURL    string
	Timeout        time.Duration
}

// Client talks to the Daraja API. The access token cache is shared by all
// calls on the same instance; refresh is serialized behind mu so concurrent
// payment sessions never race duplicate credential exchanges.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://sandbox.safaricom.co.ke"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

// AccessToken returns the cached bearer token while it is still valid and
// performs a basic-auth credential exchange otherwise.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned status %d", ErrAuth, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token in response", ErrAuth)
	}

	expires, err := tr.ExpiresIn.Int64()
	if err != nil || expires <= 0 {
		expires = 3599
	}

	c.accessToken = tr.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(expires) * time.Second)
	return c.accessToken, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type STKPushResult struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// STKPushStatus is the raw result of a status query. The client does not
// interpret ResultCode; classification is the poller's job.
type STKPushStatus struct {
	MerchantRequestID  string `json:"MerchantRequestID"`
	CheckoutRequestID  string `json:"CheckoutRequestID"`
	ResultCode         string `json:"ResultCode"`
	ResultDesc         string `json:"ResultDesc"`
	MpesaReceiptNumber string `json:"MpesaReceiptNumber"`
}

type apiError struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// InitiateSTKPush asks the gateway to prompt the payer's device. Amount is in
// whole shillings. The phone number is normalized to 254XXXXXXXXX before it
// goes on the wire.
func (c *Client) InitiateSTKPush(ctx context.Context, phoneNumber string, amount int64, accountReference, description string) (*STKPushResult, error) {
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	ts := c.timestamp()
	payload := stkPushRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          c.password(ts),
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            strconv.FormatInt(amount, 10),
		PartyA:            phone,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountReference,
		TransactionDesc:   description,
	}

	status, body, err := c.postJSON(ctx, "/mpesa/stkpush/v1/processrequest", token, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.ErrorMessage == "" {
			apiErr.ErrorMessage = fmt.Sprintf("gateway returned status %d", status)
		}
		return nil, &RejectedError{Code: apiErr.ErrorCode, Description: apiErr.ErrorMessage}
	}

	var result STKPushResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding push response: %v", ErrNetwork, err)
	}
	if result.ResponseCode != ResponseCodeAccepted {
		return nil, &RejectedError{Code: result.ResponseCode, Description: result.ResponseDescription}
	}
	return &result, nil
}

// QuerySTKPushStatus fetches the current state of an initiated push request.
// The timestamp and password are re-derived per call; they are time-scoped
// and must not be reused from the initiation request.
func (c *Client) QuerySTKPushStatus(ctx context.Context, checkoutRequestID string) (*STKPushStatus, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	ts := c.timestamp()
	payload := stkQueryRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          c.password(ts),
		Timestamp:         ts,
		CheckoutRequestID: checkoutRequestID,
	}

	status, body, err := c.postJSON(ctx, "/mpesa/stkpushquery/v1/query", token, payload)
	if err != nil {
		return nil, err
	}
	// While the prompt is still open Daraja answers the query endpoint with a
	// non-200 error payload; treat it like any transport hiccup and let the
	// poller absorb it into the attempt budget.
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: query endpoint returned status %d", ErrNetwork, status)
	}

	var result STKPushStatus
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding query response: %v", ErrNetwork, err)
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, payload any) (int, []byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) timestamp() string {
	return c.now().Format("20060102150405")
}

func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp))
}
