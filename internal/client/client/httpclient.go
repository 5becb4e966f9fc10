package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/common"
	"github.com/dmitrijs2005/bakerykit/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxBodySize = 1 << 20

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		if d > 0 {
			h.http.Timeout = d
		}
	}
}

// WithRateLimit caps outbound requests per second; rps <= 0 means unlimited.
func WithRateLimit(rps float64) Option {
	return func(h *HTTPClient) {
		if rps > 0 {
			burst := int(rps)
			if burst < 1 {
				burst = 1
			}
			h.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// do sends one request and returns the raw body of a 2xx response.
// Non-2xx responses become *ServerError; transport failures ErrUnavailable.
func (h *HTTPClient) do(ctx context.Context, method, path, token string, in any) ([]byte, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+token)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		h.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	h.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage extracts "message" or "error" from a JSON error body.
func errorMessage(data []byte) string {
	var mb messageBody
	if err := json.Unmarshal(data, &mb); err == nil {
		if mb.Message != "" {
			return mb.Message
		}
		if mb.Error != "" {
			return mb.Error
		}
	}
	return DefaultServerMessage
}

func decode(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

func (h *HTTPClient) call(ctx context.Context, method, path, token string, in, out any) error {
	data, err := h.do(ctx, method, path, token, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(data, out)
}

func (h *HTTPClient) Register(ctx context.Context, req RegisterRequest) error {
	return h.call(ctx, http.MethodPost, "/auth/register", "", req, nil)
}

func (h *HTTPClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := h.call(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	if !resp.TwoFactorRequired && (resp.AccessToken == "" || resp.UserID == "") {
		return nil, fmt.Errorf("%w: login response without token or user id", ErrUnexpectedResponse)
	}
	return &resp, nil
}

func (h *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := h.call(ctx, http.MethodPost, "/auth/refresh", "", RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: refresh response without token", ErrUnexpectedResponse)
	}
	return &resp, nil
}

func (h *HTTPClient) SetPassword(ctx context.Context, token string, req SetPasswordRequest) error {
	return h.call(ctx, http.MethodPost, "/auth/set-password", token, req, nil)
}

// ForgotPassword returns the server message. The success body is raw text
// holding a JSON object, sometimes itself JSON-quoted; anything else is
// ErrUnexpectedResponse.
func (h *HTTPClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	data, err := h.do(ctx, http.MethodPost, "/auth/forgot-password", "", ForgotPasswordRequest{Email: email})
	if err != nil {
		return "", err
	}
	return parseTextMessage(data)
}

func parseTextMessage(data []byte) (string, error) {
	text := bytes.TrimSpace(data)

	var quoted string
	if err := json.Unmarshal(text, &quoted); err == nil {
		text = []byte(strings.TrimSpace(quoted))
	}

	var mb messageBody
	if err := json.Unmarshal(text, &mb); err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnexpectedResponse, truncate(string(data), 80))
	}
	return mb.Message, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (h *HTTPClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return h.call(ctx, http.MethodPost, "/auth/reset-password", "", req, nil)
}

func (h *HTTPClient) TwoFactorStatus(ctx context.Context, token string) (bool, error) {
	var resp TwoFactorStatusResponse
	if err := h.call(ctx, http.MethodGet, "/2fa/status", token, nil, &resp); err != nil {
		return false, err
	}
	return resp.IsEnabled, nil
}

func (h *HTTPClient) EnableTwoFactor(ctx context.Context, token string) (*EnableTwoFactorResponse, error) {
	var resp EnableTwoFactorResponse
	if err := h.call(ctx, http.MethodPost, "/2fa/enable", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) DisableTwoFactor(ctx context.Context, token string) error {
	return h.call(ctx, http.MethodPost, "/2fa/disable", token, nil, nil)
}

func (h *HTTPClient) VerifyTwoFactor(ctx context.Context, token string, req VerifyTwoFactorRequest) (*AuthResponse, error) {
	data, err := h.do(ctx, http.MethodPost, "/2fa/verify", token, req)
	if err != nil {
		return nil, err
	}
	var resp AuthResponse
	if len(bytes.TrimSpace(data)) == 0 {
		return &resp, nil
	}
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *HTTPClient) GetProfile(ctx context.Context, token string) (*models.Profile, error) {
	var p models.Profile
	if err := h.call(ctx, http.MethodGet, "/user/profile", token, nil, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: profile without _id", ErrUnexpectedResponse)
	}
	return &p, nil
}

func (h *HTTPClient) UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) error {
	return h.call(ctx, http.MethodPut, "/user/profile", token, upd, nil)
}

func (h *HTTPClient) UpdateName(ctx context.Context, token string, req UpdateNameRequest) error {
	return h.call(ctx, http.MethodPut, "/user/updateNameProfile", token, req, nil)
}

func (h *HTTPClient) GetCart(ctx context.Context, token string) (*models.Cart, error) {
	var c models.Cart
	if err := h.call(ctx, http.MethodGet, "/cart", token, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (h *HTTPClient) SetCartItem(ctx context.Context, token string, item models.CartItem) error {
	return h.call(ctx, http.MethodPost, "/cart", token, item, nil)
}

func (h *HTTPClient) CartCount(ctx context.Context, token string) (int, error) {
	var resp CartCountResponse
	if err := h.call(ctx, http.MethodGet, "/cart/count", token, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// IsTransport reports whether err is a network-class failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
