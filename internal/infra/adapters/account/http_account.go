// File: internal/infra/adapters/account/http_account.go
package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
)

var _ adapter.AccountService = (*HTTPAccountService)(nil)

// Messages some hosted backends return when the client is not configured.
var unconfiguredMarkers = []string{"Invalid API key", "supabaseUrl"}

// HTTPAccountService talks to an external account-and-billing REST service.
type HTTPAccountService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPAccountService(baseURL, apiKey string, timeout time.Duration) (*HTTPAccountService, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid account base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAccountService{
		baseURL: strings.TrimRight(u.String(), "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPAccountService) Name() string { return "http" }

type wireUser struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	AvatarURL        string    `json:"avatar_url"`
	Subject          string    `json:"subject"`
	SubscriptionPlan string    `json:"subscription_plan"`
	Progress         int       `json:"progress"`
	CreatedAt        time.Time `json:"created_at"`
}

func (w wireUser) toModel() (*model.User, error) {
	u := &model.User{
		ID:               w.ID,
		Email:            w.Email,
		Username:         w.Username,
		AvatarURL:        w.AvatarURL,
		Subject:          model.Subject(w.Subject),
		SubscriptionPlan: model.PlanTier(w.SubscriptionPlan),
		CreatedAt:        w.CreatedAt,
	}
	if u.ID == "" || !u.Subject.Valid() || !u.SubscriptionPlan.Valid() {
		return nil, adapter.NewAccountError(adapter.KindGeneric, "malformed user record", nil)
	}
	u.SetProgress(w.Progress)
	return u, nil
}

func (s *HTTPAccountService) CreateAccount(ctx context.Context, acc adapter.NewAccount) (*model.User, error) {
	body := map[string]any{
		"email":             acc.Email,
		"password":          acc.Password,
		"username":          acc.Username,
		"subject":           string(acc.Subject),
		"subscription_plan": string(acc.Plan),
	}
	var out wireUser
	if err := s.do(ctx, http.MethodPost, "/accounts", body, &out); err != nil {
		return nil, err
	}
	return out.toModel()
}

func (s *HTTPAccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	body := map[string]any{"email": email, "password": password}
	var out wireUser
	if err := s.do(ctx, http.MethodPost, "/sessions", body, &out); err != nil {
		// a 401 on sign-in is a rejected password, not a bad api key
		var ae *adapter.AccountError
		if errors.As(err, &ae) && ae.Kind == adapter.KindServiceUnavailable && errors.Is(ae.Err, errStatusUnauthorized) {
			return nil, adapter.NewAccountError(adapter.KindInvalidCredentials, ae.Message, nil)
		}
		return nil, err
	}
	return out.toModel()
}

func (s *HTTPAccountService) GetUser(ctx context.Context, id string) (*model.User, error) {
	var out wireUser
	if err := s.do(ctx, http.MethodGet, "/accounts/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.toModel()
}

func (s *HTTPAccountService) UpdateUser(ctx context.Context, id string, upd adapter.ProfileUpdate) (*model.User, error) {
	body := map[string]any{}
	if upd.Username != "" {
		body["username"] = upd.Username
	}
	if upd.Email != "" {
		body["email"] = upd.Email
	}
	if upd.Subject != "" {
		body["subject"] = string(upd.Subject)
	}
	if upd.AvatarURL != "" {
		body["avatar_url"] = upd.AvatarURL
	}
	var out wireUser
	if err := s.do(ctx, http.MethodPatch, "/accounts/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return out.toModel()
}

var errStatusUnauthorized = errors.New("status 401")

func (s *HTTPAccountService) do(ctx context.Context, method, path string, in, out any) error {
	var rdr io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return adapter.NewAccountError(adapter.KindGeneric, "", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, rdr)
	if err != nil {
		return adapter.NewAccountError(adapter.KindGeneric, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return classifyTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode, errorMessage(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return adapter.NewAccountError(adapter.KindGeneric, "unexpected response from account service", err)
	}
	return nil
}

// errorMessage pulls the human message out of the common error envelopes.
func errorMessage(raw []byte) string {
	var env struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(raw, &env) == nil {
		for _, m := range []string{env.Message, env.Msg, env.ErrorDescription, env.Error} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

func classifyTransport(err error) error {
	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return adapter.NewAccountError(adapter.KindServiceUnavailable, "", err)
	case errors.As(err, &nerr):
		return adapter.NewAccountError(adapter.KindServiceUnavailable, "", err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return adapter.NewAccountError(adapter.KindServiceUnavailable, "", err)
	}
	return adapter.NewAccountError(adapter.KindGeneric, err.Error(), err)
}

func classifyStatus(code int, msg string) error {
	for _, m := range unconfiguredMarkers {
		if strings.Contains(msg, m) {
			return adapter.NewAccountError(adapter.KindServiceUnavailable, msg, nil)
		}
	}
	switch {
	case code == http.StatusUnauthorized:
		return adapter.NewAccountError(adapter.KindServiceUnavailable, msg, errStatusUnauthorized)
	case code == http.StatusForbidden:
		return adapter.NewAccountError(adapter.KindServiceUnavailable, msg, fmt.Errorf("status %d", code))
	case code == http.StatusNotFound:
		return adapter.NewAccountError(adapter.KindNotFound, msg, nil)
	case code == http.StatusConflict:
		return adapter.NewAccountError(adapter.KindConflict, msg, nil)
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		return adapter.NewAccountError(adapter.KindServiceUnavailable, msg, fmt.Errorf("status %d", code))
	default:
		return adapter.NewAccountError(adapter.KindGeneric, msg, fmt.Errorf("status %d", code))
	}
}
