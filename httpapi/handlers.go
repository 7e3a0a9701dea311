package httpapi

import (
	"errors"
	"net/http"

	"github.com/otpgate/otpgate"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	switch {
	case !validUsername(req.Username):
		writeMessage(w, http.StatusBadRequest, "Invalid username")
		return
	case !validName(req.Name):
		writeMessage(w, http.StatusBadRequest, "Invalid name")
		return
	case !validEmail(req.Email):
		writeMessage(w, http.StatusBadRequest, "Invalid email address")
		return
	case !validPassword(req.Password, true):
		writeMessage(w, http.StatusBadRequest, "Password does not meet the requirements")
		return
	}

	err := s.engine.Signup(r.Context(), otpgate.SignupRequest{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		writeMessage(w, http.StatusCreated, "User successfully registered")
	case errors.Is(err, otpgate.ErrUsernameTaken):
		writeMessage(w, http.StatusBadRequest, "This username is already registered")
	case errors.Is(err, otpgate.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "This email is already registered")
	default:
		writeServerError(w)
	}
}

func (s *Server) handleSignupVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !validEmail(req.Email) || req.OTP == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid OTP")
		return
	}

	user, pair, err := s.engine.ConfirmSignup(r.Context(), req.Email, req.OTP)
	if err != nil {
		// Absent, expired, and mismatched all collapse to one message so
		// the endpoint never confirms whether a challenge exists.
		switch {
		case errors.Is(err, otpgate.ErrChallengeExpired),
			errors.Is(err, otpgate.ErrChallengeMismatch),
			errors.Is(err, otpgate.ErrUserNotFound):
			writeMessage(w, http.StatusBadRequest, "Invalid OTP")
		default:
			writeServerError(w)
		}
		return
	}

	s.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Email address has been successfully verified and logged in",
		"user":    user.Profile(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !validEmail(req.Email) || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	err := s.engine.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "OTP sent to your email.")
	case errors.Is(err, otpgate.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, otpgate.ErrAccountUnverified):
		writeMessage(w, http.StatusBadRequest, "User not verified")
	case errors.Is(err, otpgate.ErrWrongAccountType):
		writeMessage(w, http.StatusBadRequest, "Please use the appropriate login method")
	default:
		writeFlowError(w, err)
	}
}

func (s *Server) handleLoginVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !validEmail(req.Email) || req.OTP == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid OTP")
		return
	}

	user, pair, err := s.engine.ConfirmLogin(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, otpgate.ErrChallengeExpired),
			errors.Is(err, otpgate.ErrInvalidCredentials):
			writeMessage(w, http.StatusBadRequest, "OTP expired or invalid")
		case errors.Is(err, otpgate.ErrChallengeMismatch):
			writeMessage(w, http.StatusBadRequest, "Invalid OTP")
		default:
			writeServerError(w)
		}
		return
	}

	s.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user.Profile(),
	})
}

func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Type  string `json:"type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		writeMessage(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	err := s.engine.ResendOTP(r.Context(), req.Type, req.Email)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "OTP sent to your email.")
	case errors.Is(err, otpgate.ErrInvalidPurpose):
		writeMessage(w, http.StatusBadRequest, "Invalid type.")
	case errors.Is(err, otpgate.ErrChallengePending):
		writeMessage(w, http.StatusBadRequest, "OTP already sent. Please wait for 3 minutes or use the current OTP.")
	default:
		writeServerError(w)
	}
}

func (s *Server) handleForgotPart1(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		writeMessage(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	stage1, err := s.engine.StartPasswordReset(r.Context(), req.Email)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"message":   "OTP sent",
			"part1Hash": stage1,
		})
	case errors.Is(err, otpgate.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, otpgate.ErrWrongAccountType):
		writeMessage(w, http.StatusBadRequest, "Please use the appropriate login method")
	default:
		writeFlowError(w, err)
	}
}

func (s *Server) handleForgotPart2(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Part1Hash string `json:"part1Hash"`
		OTP       string `json:"otp"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Part1Hash == "" {
		writeMessage(w, http.StatusUnauthorized, "Invalid part1Hash")
		return
	}

	stage2, err := s.engine.ConfirmPasswordResetOTP(r.Context(), req.Part1Hash, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, otpgate.ErrInvalidProgressToken),
			errors.Is(err, otpgate.ErrForeignToken):
			writeMessage(w, http.StatusUnauthorized, "Invalid part1Hash")
		case errors.Is(err, otpgate.ErrChallengeExpired),
			errors.Is(err, otpgate.ErrChallengeMismatch):
			writeMessage(w, http.StatusUnauthorized, "Invalid OTP.")
		default:
			writeServerError(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "OTP verified",
		"part2Hash": stage2,
	})
}

func (s *Server) handleForgotPart3(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Part2Hash   string `json:"part2Hash"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Part2Hash == "" {
		writeMessage(w, http.StatusUnauthorized, "Invalid part2Hash")
		return
	}
	if !validPassword(req.NewPassword, false) {
		writeMessage(w, http.StatusBadRequest, "Password does not meet the requirements")
		return
	}

	err := s.engine.CompletePasswordReset(r.Context(), req.Part2Hash, req.NewPassword)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "Password updated")
	case errors.Is(err, otpgate.ErrForeignToken):
		writeMessage(w, http.StatusUnauthorized, "Invalid token.")
	case errors.Is(err, otpgate.ErrInvalidProgressToken):
		writeMessage(w, http.StatusUnauthorized, "Invalid part2Hash")
	case errors.Is(err, otpgate.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found.")
	default:
		writeServerError(w)
	}
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeMessage(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	access, err := s.engine.RefreshAccess(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, otpgate.ErrInvalidRefreshToken) {
			writeMessage(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		writeServerError(w)
		return
	}

	s.setAccessCookie(w, access)
	writeMessage(w, http.StatusOK, "Access token refreshed")
}

func (s *Server) handleSignout(w http.ResponseWriter, _ *http.Request) {
	s.clearSessionCookies(w)
	writeMessage(w, http.StatusOK, "Signout successful")
}
