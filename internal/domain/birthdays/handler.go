package birthdays

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"birthday-reminders/internal/middleware"
	"birthday-reminders/internal/ports/images"

	"github.com/go-chi/chi/v5"
)

// maxRequestBytes: la imagen en base64 más margen para el resto de los campos.
var maxRequestBytes = int64(base64.StdEncoding.EncodedLen(images.MaxImageBytes)) + 64<<10

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/birthdays", func(br chi.Router) {
		br.Use(middleware.RequireUser)

		br.Get("/", listUpcomingHandler(svc))
		br.Post("/", createBirthdayHandler(svc))
		br.Get("/today", listTodayHandler(svc))

		br.Get("/{birthdayID}", getBirthdayHandler(svc))
		br.Put("/{birthdayID}", updateBirthdayHandler(svc))
		br.Patch("/{birthdayID}", updateBirthdayHandler(svc))
		br.Delete("/{birthdayID}", deleteBirthdayHandler(svc))
	})
}

type createBirthdayRequest struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	BirthDate    string `json:"bdate"` // YYYY-MM-DD
	Image        string `json:"image"` // base64 o data URL, opcional
	Memo         string `json:"memo"`
}

type updateBirthdayRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name         *string `json:"name"`
	Relationship *string `json:"relationship"`
	BirthDate    *string `json:"bdate"`
	Image        *string `json:"image"`
	Memo         *string `json:"memo"`
}

type birthdayResponse struct {
	ID           string    `json:"id"`
	OwnerUserID  string    `json:"owner_user_id"`
	Name         string    `json:"name"`
	Relationship string    `json:"relationship"`
	BirthDate    string    `json:"bdate"`
	ImageURL     string    `json:"image_url,omitempty"`
	Memo         string    `json:"memo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type upcomingResponse struct {
	birthdayResponse
	DaysUntil int  `json:"days_until"`
	Age       *int `json:"age,omitempty"`
}

// listUpcomingHandler godoc
// @Summary Listar cumpleaños por proximidad
// @Description Devuelve los cumpleaños del usuario ordenados por días restantes. Registros con bdate inválido van al final con days_until=999999.
// @Tags birthdays
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token del proveedor de identidad"
// @Success 200 {array} upcomingResponse
// @Failure 401 {string} string "unauthorized"
// @Router /api/birthdays [get]
func listUpcomingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListUpcoming(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toUpcomingResponses(items))
	}
}

// listTodayHandler godoc
// @Summary Cumpleaños de hoy
// @Description Devuelve los cumpleaños del usuario que caen en la fecha actual, con la edad que cumplen.
// @Tags birthdays
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token del proveedor de identidad"
// @Success 200 {array} upcomingResponse
// @Failure 401 {string} string "unauthorized"
// @Router /api/birthdays/today [get]
func listTodayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		items, err := svc.ListToday(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toUpcomingResponses(items))
	}
}

// createBirthdayHandler godoc
// @Summary Crear cumpleaños
// @Description name y bdate (YYYY-MM-DD) son obligatorios. image acepta base64 o data URL y se sube al hosting de imágenes.
// @Tags birthdays
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token del proveedor de identidad"
// @Param payload body createBirthdayRequest true "Datos del cumpleaños"
// @Success 201 {object} birthdayResponse
// @Failure 400 {string} string "invalid json / name y bdate obligatorios"
// @Failure 401 {string} string "unauthorized"
// @Failure 413 {string} string "request too large"
// @Failure 502 {string} string "failed to upload image"
// @Router /api/birthdays [post]
func createBirthdayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createBirthdayRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
			writeDecodeError(w, err)
			return
		}

		b, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:         req.Name,
			Relationship: req.Relationship,
			BirthDate:    req.BirthDate,
			Image:        req.Image,
			Memo:         req.Memo,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBirthdayResponse(b))
	}
}

// getBirthdayHandler godoc
// @Summary Obtener un cumpleaños
// @Tags birthdays
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token del proveedor de identidad"
// @Param birthdayID path string true "ID del cumpleaños"
// @Success 200 {object} birthdayResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "birthday not found"
// @Router /api/birthdays/{birthdayID} [get]
func getBirthdayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		b, err := svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "birthdayID"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toBirthdayResponse(b))
	}
}

// updateBirthdayHandler godoc
// @Summary Actualizar un cumpleaños
// @Description Actualización parcial: solo cambian los campos enviados. Una image no vacía se sube y reemplaza image_url.
// @Tags birthdays
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token del proveedor de identidad"
// @Param birthdayID path string true "ID del cumpleaños"
// @Param payload body updateBirthdayRequest true "Campos a modificar"
// @Success 200 {object} birthdayResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "birthday not found"
// @Failure 413 {string} string "request too large"
// @Failure 502 {string} string "failed to upload image"
// @Router /api/birthdays/{birthdayID} [patch]
func updateBirthdayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		dec.DisallowUnknownFields()

		var req updateBirthdayRequest
		if err := dec.Decode(&req); err != nil {
			writeDecodeError(w, err)
			return
		}

		b, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "birthdayID"), UpdateInput{
			Name:         req.Name,
			Relationship: req.Relationship,
			BirthDate:    req.BirthDate,
			Image:        req.Image,
			Memo:         req.Memo,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toBirthdayResponse(b))
	}
}

// deleteBirthdayHandler godoc
// @Summary Eliminar un cumpleaños
// @Tags birthdays
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token del proveedor de identidad"
// @Param birthdayID path string true "ID del cumpleaños"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "birthday not found"
// @Router /api/birthdays/{birthdayID} [delete]
func deleteBirthdayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "birthdayID")); err != nil {
			writeError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func toBirthdayResponse(b Birthday) birthdayResponse {
	return birthdayResponse{
		ID:           b.ID,
		OwnerUserID:  b.OwnerUserID,
		Name:         b.Name,
		Relationship: b.Relationship,
		BirthDate:    b.BirthDate,
		ImageURL:     b.ImageURL,
		Memo:         b.Memo,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toUpcomingResponses(items []Upcoming) []upcomingResponse {
	out := make([]upcomingResponse, 0, len(items))
	for _, u := range items {
		out = append(out, upcomingResponse{
			birthdayResponse: toBirthdayResponse(u.Birthday),
			DaysUntil:        u.DaysUntil,
			Age:              u.Age,
		})
	}
	return out
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "birthday not found", http.StatusNotFound)
	case errors.Is(err, ErrImageUpload):
		slog.WarnContext(r.Context(), "image upload failed", slog.Any("error", err))
		http.Error(w, "failed to upload image", http.StatusBadGateway)
	default:
		slog.ErrorContext(r.Context(), "birthdays handler failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "invalid json", http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
