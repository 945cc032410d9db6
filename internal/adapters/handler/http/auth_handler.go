package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/examdesk/examdesk/internal/core/domain"
	"github.com/examdesk/examdesk/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	userService ports.UserService
}

func NewAuthHandler(authService ports.AuthService, userService ports.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	StudentID  string `json:"studentId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type authResponse struct {
	Success      bool            `json:"success"`
	Token        string          `json:"token,omitempty"`
	RefreshToken string          `json:"refreshToken,omitempty"`
	ExpiresAt    *time.Time      `json:"expiresAt,omitempty"`
	User         *domain.Account `json:"user,omitempty"`
	Message      string          `json:"message"`
}

// Login godoc
// @Summary      Authenticates a user with email and password
// @Description  Returns an access/refresh token pair and sets the session cookie used for browser navigation.
// @Tags         auth
// @Accept       json
// @Success      200
// @Failure      401
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			// Generic message: do not disclose which factor failed.
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("login failed for %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "An error occurred during login")
		return
	}

	log.Printf("user %s logged in", result.User.Email)
	h.setSessionCookie(w, result.AccessToken, result.ExpiresAt)
	writeAuthResult(w, result, "Login successful")
}

// Register godoc
// @Summary      Registers a new account
// @Description  Creates the account and logs it in, returning the same response shape as login.
// @Tags         auth
// @Accept       json
// @Success      200
// @Failure      400
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	result, err := h.authService.Register(r.Context(), ports.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
		StudentID:  req.StudentID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			writeError(w, http.StatusBadRequest, "User with this email already exists")
			return
		}
		if errors.Is(err, domain.ErrInvalidRole) {
			writeError(w, http.StatusBadRequest, "Role must be Admin, Instructor or Student")
			return
		}
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "Invalid request data")
			return
		}
		log.Printf("registration failed for %s: %v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "An error occurred during registration")
		return
	}

	log.Printf("new user registered: %s (role %s)", result.User.Email, result.User.Role)
	h.setSessionCookie(w, result.AccessToken, result.ExpiresAt)
	writeAuthResult(w, result, "Registration successful")
}

// Refresh godoc
// @Summary      Redeems a refresh token for a new token pair
// @Description  Rotation is single-use: the presented refresh token is invalidated and a new one is issued.
// @Tags         auth
// @Accept       json
// @Success      200
// @Failure      401
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data")
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenNotFound):
			writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		case errors.Is(err, domain.ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, "Refresh token has expired")
		case errors.Is(err, domain.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, "User not found")
		default:
			log.Printf("token refresh failed: %v", err)
			writeError(w, http.StatusInternalServerError, "An error occurred during token refresh")
		}
		return
	}

	h.setSessionCookie(w, result.AccessToken, result.ExpiresAt)
	writeAuthResult(w, result, "Token refreshed successfully")
}

// Logout godoc
// @Summary      Logs the authenticated user out
// @Description  Revokes the refresh token (absence is not an error) and clears the session cookie.
// @Tags         auth
// @Accept       json
// @Success      200
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
			log.Printf("logout revoke failed: %v", err)
		}
	}

	if claims, ok := ClaimsFromContext(r.Context()); ok {
		log.Printf("user %d logged out", claims.UserID)
	}

	h.expireSessionCookie(w)
	writeJSON(w, http.StatusOK, authResponse{Success: true, Message: "Logout successful"})
}

// Me godoc
// @Summary      Returns the authenticated user's profile
// @Tags         auth
// @Success      200
// @Failure      401
// @Failure      404
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("failed to fetch user %d: %v", claims.UserID, err)
		writeError(w, http.StatusInternalServerError, "An error occurred while getting user information")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ChangePassword godoc
// @Summary      Changes the authenticated user's password
// @Tags         auth
// @Accept       json
// @Success      200
// @Failure      400
// @Router       /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Current and new password are required")
		return
	}

	err := h.authService.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrWrongPassword) {
			writeError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusBadRequest, "Unable to change password")
			return
		}
		log.Printf("password change failed for user %d: %v", claims.UserID, err)
		writeError(w, http.StatusInternalServerError, "An error occurred while changing password")
		return
	}

	log.Printf("user %d changed password", claims.UserID)
	writeJSON(w, http.StatusOK, authResponse{Success: true, Message: "Password changed successfully"})
}

// Dashboard is the browser-facing landing route. It authenticates through
// the session cookie and forwards the user to their role's area.
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	switch claims.Role {
	case domain.RoleAdmin:
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	case domain.RoleInstructor:
		http.Redirect(w, r, "/instructor", http.StatusSeeOther)
	case domain.RoleStudent:
		http.Redirect(w, r, "/student", http.StatusSeeOther)
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) expireSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func writeAuthResult(w http.ResponseWriter, result *ports.AuthResult, message string) {
	expiresAt := result.ExpiresAt
	writeJSON(w, http.StatusOK, authResponse{
		Success:      true,
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    &expiresAt,
		User:         result.User,
		Message:      message,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, authResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
