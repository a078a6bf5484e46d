package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
)

// signupView is the wire form of a wizard session. The password is never echoed.
type signupView struct {
	ID             string               `json:"id"`
	Step           int                  `json:"step"`
	Stage          model.SignupStage    `json:"stage"`
	Email          string               `json:"email"`
	Username       string               `json:"username"`
	PasswordSet    bool                 `json:"password_set"`
	Subject        model.Subject        `json:"subject,omitempty"`
	Plan           model.PlanTier       `json:"plan,omitempty"`
	PaymentVisible bool                 `json:"payment_visible"`
	Submitting     bool                 `json:"submitting"`
	Method         model.PaymentMethod  `json:"method,omitempty"`
	UserID         string               `json:"user_id,omitempty"`
	LastFailure    *model.SignupFailure `json:"last_failure,omitempty"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func newSignupView(s *model.SignupSession) *signupView {
	if s == nil {
		return nil
	}
	return &signupView{
		ID:             s.ID,
		Step:           s.Step,
		Stage:          s.Stage,
		Email:          s.Form.Email,
		Username:       s.Form.Username,
		PasswordSet:    s.Form.Password != "",
		Subject:        s.Form.Subject,
		Plan:           s.Form.Plan,
		PaymentVisible: s.PaymentVisible,
		Submitting:     s.Submitting,
		Method:         s.Method,
		UserID:         s.UserID,
		LastFailure:    s.LastFailure,
		UpdatedAt:      s.UpdatedAt,
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}

// clientKey identifies the caller for rate limiting. RealIP has already
// rewritten RemoteAddr from proxy headers.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func (s *Server) handleSignupStart(w http.ResponseWriter, r *http.Request) {
	sess, err := s.signup.Start(r.Context(), clientKey(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSignupView(sess))
}

func (s *Server) handleSignupGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.signup.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSignupView(sess))
}

func (s *Server) handleSignupCredentials(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.signup.SetCredentials(r.Context(), chi.URLParam(r, "id"), req.Email, req.Password, req.Username)
	s.respondSignup(w, r, sess, err)
}

func (s *Server) handleSignupSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject model.Subject `json:"subject"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.signup.SelectSubject(r.Context(), chi.URLParam(r, "id"), req.Subject)
	s.respondSignup(w, r, sess, err)
}

func (s *Server) handleSignupPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan model.PlanTier `json:"plan"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.signup.SelectPlan(r.Context(), chi.URLParam(r, "id"), req.Plan)
	s.respondSignup(w, r, sess, err)
}

func (s *Server) handleSignupAdvance(w http.ResponseWriter, r *http.Request) {
	sess, err := s.signup.Advance(r.Context(), chi.URLParam(r, "id"))
	s.respondSignup(w, r, sess, err)
}

func (s *Server) handleSignupCancelPayment(w http.ResponseWriter, r *http.Request) {
	sess, err := s.signup.CancelPayment(r.Context(), chi.URLParam(r, "id"))
	s.respondSignup(w, r, sess, err)
}

func (s *Server) respondSignup(w http.ResponseWriter, r *http.Request, sess *model.SignupSession, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSignupView(sess))
}

type signupResponse struct {
	Message   string      `json:"message"`
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Redirect  string      `json:"redirect"`
	State     *signupView `json:"state"`
}

func (s *Server) handleSignupPay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method model.PaymentMethod `json:"method"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.signup.Pay(r.Context(), chi.URLParam(r, "id"), req.Method)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setSessionCookie(w, s.opts.Cookie, res.Auth.Token, res.Auth.ExpiresAt)
	writeJSON(w, http.StatusCreated, signupResponse{
		Message:   s.tr.T("signup.created"),
		User:      res.User,
		Token:     res.Auth.Token,
		ExpiresAt: res.Auth.ExpiresAt,
		Redirect:  "/dashboard",
		State:     newSignupView(res.Session),
	})
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.plans.List()})
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.plans.Subjects()})
}
