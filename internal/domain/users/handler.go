package users

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"birthday-reminders/internal/middleware"
	"birthday-reminders/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /signup, /signin, /signout y /me.
// limiter puede ser nil.
func RegisterRoutes(r chi.Router, svc *Service, verifier auth.AuthVerifier, sessions *middleware.SessionManager, limiter func(http.Handler) http.Handler) {
	r.Group(func(gr chi.Router) {
		if limiter != nil {
			gr.Use(limiter)
		}
		gr.Post("/signup", signUpHandler(svc, verifier, sessions))
		gr.Post("/signin", signInHandler(svc, verifier, sessions))
	})

	r.Post("/signout", signOutHandler(sessions))
	r.With(middleware.RequireUser).Get("/me", meHandler(svc))
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    *userResponse `json:"user,omitempty"`
}

// signUpHandler godoc
// @Summary Registrar usuario
// @Description Crea el perfil local a partir de un ID token del proveedor de identidad y abre sesión.
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer <id token>"
// @Success 201 {object} sessionResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {string} string "user already exists"
// @Failure 429 {string} string "too many requests"
// @Router /signup [post]
func signUpHandler(svc *Service, verifier auth.AuthVerifier, sessions *middleware.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.BearerClaims(r.Context(), verifier, r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := svc.SignUp(r.Context(), claims)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if !startSession(w, r, sessions, claims) {
			return
		}

		writeJSON(w, http.StatusCreated, sessionResponse{
			Success: true,
			Message: "Account created successfully",
			User:    toUserResponse(u),
		})
	}
}

// signInHandler godoc
// @Summary Iniciar sesión
// @Description Verifica el ID token, exige perfil existente y abre sesión (cookie).
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer <id token>"
// @Success 200 {object} sessionResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "user not found"
// @Failure 429 {string} string "too many requests"
// @Router /signin [post]
func signInHandler(svc *Service, verifier auth.AuthVerifier, sessions *middleware.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.BearerClaims(r.Context(), verifier, r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := svc.SignIn(r.Context(), claims)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if !startSession(w, r, sessions, claims) {
			return
		}

		writeJSON(w, http.StatusOK, sessionResponse{
			Success: true,
			Message: "Signed in successfully",
			User:    toUserResponse(u),
		})
	}
}

// signOutHandler godoc
// @Summary Cerrar sesión
// @Tags users
// @Produce json
// @Success 200 {object} sessionResponse
// @Router /signout [post]
func signOutHandler(sessions *middleware.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions != nil {
			if err := sessions.Clear(w, r); err != nil {
				slog.ErrorContext(r.Context(), "could not clear session", slog.Any("error", err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
		}

		writeJSON(w, http.StatusOK, sessionResponse{
			Success: true,
			Message: "Signed out successfully",
		})
	}
}

// meHandler godoc
// @Summary Perfil del usuario actual
// @Tags users
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 200 {object} userResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "user not found"
// @Router /me [get]
func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		u, err := svc.Get(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func startSession(w http.ResponseWriter, r *http.Request, sessions *middleware.SessionManager, claims auth.Claims) bool {
	if sessions == nil {
		return true
	}
	if err := sessions.Save(w, r, claims); err != nil {
		slog.ErrorContext(r.Context(), "could not start session", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return false
	}
	return true
}

func toUserResponse(u User) *userResponse {
	return &userResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		slog.ErrorContext(r.Context(), "users handler failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON duplicado a propósito (igual que en birthdays) hasta que haya un tercer módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
