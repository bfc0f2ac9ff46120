package http

import (
	"net/http"

	"github.com/viralforge/brandhub/internal/application"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "register", err)
		return
	}
	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "register", err)
		return
	}
	writeAuthResult(w, http.StatusCreated, "User registered successfully", res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	req.IPAddress = h.clientIP(r)
	req.UserAgent = r.UserAgent()

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeAuthResult(w, http.StatusOK, "Login successful", res)
}

func writeAuthResult(w http.ResponseWriter, statusCode int, message string, res application.AuthResult) {
	writeJSON(w, statusCode, map[string]any{
		"message":         message,
		"status":          "success",
		"access_token":    res.AccessToken,
		"refresh_token":   res.RefreshToken,
		"isAuthenticated": true,
		"user":            res.Account,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		writeMissingBearerError(r.Context(), w, "logout")
		return
	}
	if err := h.service.Logout(r.Context(), raw); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

type refreshRequest struct {
	RefreshToken      string `json:"refresh_token"`
	RefreshTokenCamel string `json:"refreshToken"`
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "refresh", err)
		return
	}
	token := req.RefreshToken
	if token == "" {
		token = req.RefreshTokenCamel
	}
	pair, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		writeMappedError(r.Context(), w, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "forgot_password", err)
		return
	}
	if err := h.service.InitiatePasswordReset(r.Context(), req.Email); err != nil {
		writeMappedError(r.Context(), w, "forgot_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset email sent")
}

type resetPasswordRequest struct {
	Token              string `json:"token"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "reset_password", err)
		return
	}
	if req.NewPassword != req.ConfirmNewPassword {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	err := h.service.ResetPassword(r.Context(), application.ResetPasswordRequest{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "reset_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset successful")
}

type changePasswordRequest struct {
	Email              string `json:"email"`
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "change_password", err)
		return
	}
	if req.NewPassword != req.ConfirmNewPassword {
		writeError(w, http.StatusBadRequest, "New passwords do not match")
		return
	}
	err := h.service.ChangePassword(r.Context(), application.ChangePasswordRequest{
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "change_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password changed successfully")
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req application.VerifyEmailRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "verify_otp", err)
		return
	}
	if err := h.service.VerifyEmail(r.Context(), req); err != nil {
		writeMappedError(r.Context(), w, "verify_otp", err)
		return
	}
	writeMessage(w, http.StatusOK, "Email verified successfully")
}

func (h *Handler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "resend_verification", err)
		return
	}
	if err := h.service.ResendVerificationCode(r.Context(), req.Email); err != nil {
		writeMappedError(r.Context(), w, "resend_verification", err)
		return
	}
	writeMessage(w, http.StatusOK, "Verification code sent successfully")
}

func (h *Handler) checkSession(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	user, err := h.service.CheckSession(r.Context(), actor.AccountID)
	if err != nil {
		writeMappedError(r.Context(), w, "check_session", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) loginHistory(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	limit := parseIntDefault(r.URL.Query().Get("limit"), 0)
	history, err := h.service.GetLoginHistory(r.Context(), actor.AccountID, limit)
	if err != nil {
		writeMappedError(r.Context(), w, "login_history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	users, err := h.service.ListUsers(r.Context(), actorFromContext(r.Context()), application.ListUsersRequest{
		Role:   query.Get("role"),
		Search: query.Get("search"),
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_users", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   users,
	})
}
