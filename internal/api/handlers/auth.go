package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/asingh/agri-rental-website/internal/api/middleware"
	"github.com/asingh/agri-rental-website/internal/config"
	"github.com/asingh/agri-rental-website/internal/domain"
	"github.com/asingh/agri-rental-website/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

type authRequest struct {
	Action   string `json:"action"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type authMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    userResponse `json:"user"`
	Token   string       `json:"token"`
}

type userResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Handle is the single auth entry point; the request body selects the
// action (signup, login, logout).
func (h *AuthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Action {
	case "signup":
		h.signup(w, r, req)
	case "login":
		h.login(w, r, req)
	case "logout":
		h.logout(w, r)
	case "":
		writeAuthError(w, http.StatusBadRequest, "Action is required")
	default:
		writeAuthError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.Name == "" || req.Phone == "" || req.Password == "" {
		writeAuthError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	_, err := h.authService.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicatePhone):
			writeAuthError(w, http.StatusConflict, "Phone number already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			writeAuthError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("ERROR [AuthHandler.signup] %v", err)
			writeAuthError(w, http.StatusInternalServerError, "Database error occurred")
		}
		return
	}

	writeJSON(w, http.StatusOK, authMessage{Success: true, Message: "Account created successfully"})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, req authRequest) {
	if req.Phone == "" || req.Password == "" {
		writeAuthError(w, http.StatusBadRequest, "Phone and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Phone:     req.Phone,
		Password:  req.Password,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeAuthError(w, http.StatusUnauthorized, "Invalid phone or password")
		case errors.Is(err, domain.ErrAccountDeactivated):
			writeAuthError(w, http.StatusForbidden, "Account is deactivated")
		case errors.Is(err, domain.ErrInvalidInput):
			writeAuthError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("ERROR [AuthHandler.login] %v", err)
			writeAuthError(w, http.StatusInternalServerError, "Database error occurred")
		}
		return
	}

	middleware.SetSessionCookie(w, result.Token, h.cfg.SessionTTL)

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		User: userResponse{
			ID:    result.User.ID,
			Name:  result.User.Name,
			Phone: result.User.Phone,
		},
		Token: result.Token,
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	if err := h.authService.Logout(r.Context(), token); err != nil {
		// Logged only; logout always succeeds from the client's view.
		log.Printf("ERROR [AuthHandler.logout] %v", err)
	}

	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, authMessage{Success: true, Message: "Logged out successfully"})
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, authMessage{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR [handlers.writeJSON] %v", err)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
