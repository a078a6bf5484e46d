package api

import (
	"net/http"
	"time"

	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/usecase"
)

type authResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, issued, err := s.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setSessionCookie(w, s.opts.Cookie, issued.Token, issued.ExpiresAt)
	writeJSON(w, http.StatusOK, authResponse{User: u, Token: issued.Token, ExpiresAt: issued.ExpiresAt})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.SignOut(r.Context(), PrincipalFrom(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	clearSessionCookie(w, s.opts.Cookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": s.tr.T("auth.signed_out")})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.accounts.Me(r.Context(), PrincipalFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.accounts.Dashboard(r.Context(), PrincipalFrom(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string        `json:"username"`
		Email     string        `json:"email"`
		Subject   model.Subject `json:"subject"`
		AvatarURL string        `json:"avatar_url"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.accounts.UpdateSettings(r.Context(), PrincipalFrom(r.Context()).UserID, usecase.SettingsInput{
		Username:  req.Username,
		Email:     req.Email,
		Subject:   req.Subject,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": s.tr.T("settings.updated"), "user": u})
}
