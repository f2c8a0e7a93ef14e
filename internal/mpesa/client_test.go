package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Passkey:        "passkey",
		Shortcode:      "174379",
		BaseURL:        baseURL,
		CallbackURL:    "https://example.com/api/v1/payments/mpesa/callback",
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AccessToken_CachedUntilExpiry(t *testing.T) {
	tokenCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/v1/generate", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key", user)
		require.Equal(t, "secret", pass)
		tokenCalls++
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": "tok-1",
			"expires_in":   "3599",
		})
	}))
	defer srv.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewClient(testConfig(srv.URL))
	c.now = func() time.Time { return now }

	tok, err := c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, 1, tokenCalls)

	// Second call inside the validity window reuses the cache.
	now = now.Add(30 * time.Minute)
	_, err = c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tokenCalls)

	// At expiry the token must be refreshed exactly once.
	now = now.Add(time.Hour)
	_, err = c.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tokenCalls)
}

func TestClient_AccessToken_ExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestClient_InitiateSTKPush_Accepted(t *testing.T) {
	var pushed stkPushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok", "expires_in": "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&pushed))
			writeJSON(w, http.StatusOK, STKPushResult{
				MerchantRequestID:   "mr_1",
				CheckoutRequestID:   "ws_CO_1",
				ResponseCode:        "0",
				ResponseDescription: "Success. Request accepted for processing",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	now := time.Date(2025, 6, 1, 9, 30, 15, 0, time.UTC)
	c := NewClient(testConfig(srv.URL))
	c.now = func() time.Time { return now }

	res, err := c.InitiateSTKPush(context.Background(), "0712345678", 500, "FUNDIS123", "Plumbing booking")
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_1", res.CheckoutRequestID)

	assert.Equal(t, "174379", pushed.BusinessShortCode)
	assert.Equal(t, "174379", pushed.PartyB)
	assert.Equal(t, "254712345678", pushed.PartyA)
	assert.Equal(t, "254712345678", pushed.PhoneNumber)
	assert.Equal(t, "CustomerPayBillOnline", pushed.TransactionType)
	assert.Equal(t, "500", pushed.Amount)
	assert.Equal(t, "FUNDIS123", pushed.AccountReference)
	assert.Equal(t, "20250601093015", pushed.Timestamp)

	wantPassword := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey" + "20250601093015"))
	assert.Equal(t, wantPassword, pushed.Password)
}

func TestClient_InitiateSTKPush_RejectedByResponseCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok", "expires_in": "3599"})
		default:
			writeJSON(w, http.StatusOK, STKPushResult{
				ResponseCode:        "1",
				ResponseDescription: "Invalid Amount",
			})
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.InitiateSTKPush(context.Background(), "0712345678", 0, "REF", "desc")

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "1", rejected.Code)
	assert.Equal(t, "Invalid Amount", rejected.Description)
}

func TestClient_InitiateSTKPush_RejectedByHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok", "expires_in": "3599"})
		default:
			writeJSON(w, http.StatusBadRequest, apiError{
				ErrorCode:    "400.002.02",
				ErrorMessage: "Bad Request - Invalid PhoneNumber",
			})
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.InitiateSTKPush(context.Background(), "254712345678", 500, "REF", "desc")

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "400.002.02", rejected.Code)
}

func TestClient_InitiateSTKPush_InvalidPhoneSkipsNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.InitiateSTKPush(context.Background(), "12345", 500, "REF", "desc")

	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Equal(t, 0, calls)
}

func TestClient_QuerySTKPushStatus_ReturnsRawResult(t *testing.T) {
	var queried stkQueryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok", "expires_in": "3599"})
		case "/mpesa/stkpushquery/v1/query":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&queried))
			writeJSON(w, http.StatusOK, STKPushStatus{
				CheckoutRequestID: "ws_CO_1",
				ResultCode:        "1032",
				ResultDesc:        "Request cancelled by user",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	status, err := c.QuerySTKPushStatus(context.Background(), "ws_CO_1")
	require.NoError(t, err)

	// The client hands the result code back verbatim; it never classifies.
	assert.Equal(t, "1032", status.ResultCode)
	assert.Equal(t, "ws_CO_1", queried.CheckoutRequestID)
	assert.NotEmpty(t, queried.Password)
}

func TestClient_QuerySTKPushStatus_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok", "expires_in": "3599"})
	}))
	c := NewClient(testConfig(srv.URL))

	// Prime the token cache, then kill the server to force a transport error.
	_, err := c.AccessToken(context.Background())
	require.NoError(t, err)
	srv.Close()

	_, err = c.QuerySTKPushStatus(context.Background(), "ws_CO_1")
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestClient_QuerySTKPushStatus_ProcessingHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok", "expires_in": "3599"})
		default:
			writeJSON(w, http.StatusInternalServerError, apiError{
				ErrorCode:    "500.001.1001",
				ErrorMessage: "The transaction is being processed",
			})
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.QuerySTKPushStatus(context.Background(), "ws_CO_1")
	assert.ErrorIs(t, err, ErrNetwork)
}
