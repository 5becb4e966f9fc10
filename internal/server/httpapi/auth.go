package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/bakerykit/internal/server/services"
)

// forgotPasswordMessage is returned whether or not the email is registered.
const forgotPasswordMessage = "If the email is registered, a reset code has been sent"

func sessionResponse(s *services.Session) authResponse {
	return authResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UserID:       s.UserID,
		Role:         s.Role,
	}
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.users.Register(r.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "user_id", u.ID)
	writeMessage(w, http.StatusCreated, "User registered")
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if res.ChallengeID != "" {
		writeJSON(w, http.StatusOK, authResponse{TwoFactorRequired: true, ChallengeID: res.ChallengeID})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(res.Session))
}

func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeMessage(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	session, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

// setPassword only lets a signed-in user change their own password.
func (s *HTTPServer) setPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	claims := claimsFromContext(r.Context())
	if req.UserID != "" && req.UserID != claims.UserID {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return
	}

	if err := s.users.SetPassword(r.Context(), claims.UserID, req.Phone, req.NewPassword); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password set")
}

func (s *HTTPServer) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.users.ForgotPassword(r.Context(), req.Email); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, forgotPasswordMessage)
}

func (s *HTTPServer) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.users.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated")
}

// verifyTwoFactor answers a login challenge when challengeId is present and
// otherwise confirms enrolment for the bearer of the access token.
func (s *HTTPServer) verifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req verifyTwoFactorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		writeMessage(w, http.StatusBadRequest, "Code is required")
		return
	}

	if req.ChallengeID != "" {
		session, err := s.users.VerifyLogin(r.Context(), req.ChallengeID, req.Code)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse(session))
		return
	}

	claims, ok := s.authenticate(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.users.ConfirmTwoFactor(r.Context(), claims.UserID, req.Code); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{UserID: claims.UserID, Role: claims.Role})
}

func (s *HTTPServer) twoFactorStatus(w http.ResponseWriter, r *http.Request) {
	enabled, err := s.users.TwoFactorStatus(r.Context(), claimsFromContext(r.Context()).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, twoFactorStatusResponse{IsEnabled: enabled})
}

func (s *HTTPServer) enableTwoFactor(w http.ResponseWriter, r *http.Request) {
	setup, err := s.users.EnableTwoFactor(r.Context(), claimsFromContext(r.Context()).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enableTwoFactorResponse{Secret: setup.Secret, OtpAuthURL: setup.OtpAuthURL})
}

func (s *HTTPServer) disableTwoFactor(w http.ResponseWriter, r *http.Request) {
	if err := s.users.DisableTwoFactor(r.Context(), claimsFromContext(r.Context()).UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Two-factor authentication disabled")
}
