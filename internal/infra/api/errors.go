package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/infra/logging"
	"tutor-onboarding/internal/usecase"
)

type errorBody struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Step    int         `json:"step,omitempty"`
	Field   string      `json:"field,omitempty"`
	State   *signupView `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError is the single place where errors become HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *model.ValidationError
		serr *usecase.SubmissionError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error: "validation", Message: s.tr.T(verr.MsgKey), Step: verr.Step, Field: verr.Field,
		})
		return
	case errors.As(err, &serr):
		writeJSON(w, accountStatus(serr.Kind), errorBody{
			Error: string(serr.Kind), Message: serr.Message, State: newSignupView(serr.Session),
		})
		return
	}

	status, code, msgKey := http.StatusInternalServerError, "internal", ""
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		status, code, msgKey = http.StatusNotFound, "session_expired", "signup.expired"
	case errors.Is(err, domain.ErrSubmissionInFlight):
		status, code, msgKey = http.StatusConflict, "in_progress", "signup.in_progress"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code, msgKey = http.StatusConflict, "invalid_action", "signup.invalid_action"
	case errors.Is(err, domain.ErrRateLimited):
		status, code, msgKey = http.StatusTooManyRequests, "rate_limited", "signup.rate_limited"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, code, msgKey = http.StatusUnauthorized, "invalid_credentials", "auth.invalid_credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "bad_request"
	default:
		var aerr *adapter.AccountError
		if errors.As(err, &aerr) {
			status, code = accountStatus(aerr.Kind), string(aerr.Kind)
			msgKey = accountMsgKey(aerr.Kind)
		}
	}

	msg := http.StatusText(status)
	if msgKey != "" {
		msg = s.tr.T(msgKey)
	}
	if status >= http.StatusInternalServerError {
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func accountStatus(kind adapter.AccountErrorKind) int {
	switch kind {
	case adapter.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case adapter.KindConflict:
		return http.StatusConflict
	case adapter.KindInvalidCredentials:
		return http.StatusUnauthorized
	case adapter.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func accountMsgKey(kind adapter.AccountErrorKind) string {
	switch kind {
	case adapter.KindServiceUnavailable:
		return "signup.service_unavailable"
	case adapter.KindConflict:
		return "signup.conflict"
	case adapter.KindInvalidCredentials:
		return "auth.invalid_credentials"
	default:
		return "account.failed"
	}
}
