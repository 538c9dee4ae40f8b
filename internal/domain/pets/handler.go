package pets

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-adoption-platform/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// ApplicationGuard expone lo mínimo que pets necesita saber del módulo de
// solicitudes para proteger el delete. Se define aquí para evitar ciclos de
// imports (applications ya importa pets).
type ApplicationGuard interface {
	HasApprovedForPet(ctx context.Context, petID string) (bool, error)
}

func RegisterRoutes(r chi.Router, svc *Service, guard ApplicationGuard) {
	// Catálogo público
	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))
	})

	// Gestión admin
	r.Route("/admin/pets", func(pr chi.Router) {
		pr.Get("/", adminListPetsHandler(svc))
		pr.Post("/", createPetHandler(svc))
		pr.Put("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc, guard))
	})
}

type createPetRequest struct {
	Name         string   `json:"name"`
	Species      string   `json:"species"`
	Breed        string   `json:"breed"`
	AgeMonths    int      `json:"age_months"`
	Gender       string   `json:"gender"`
	Size         string   `json:"size"`
	Description  string   `json:"description"`
	HealthStatus string   `json:"health_status"`
	Vaccination  string   `json:"vaccination_status"`
	Location     string   `json:"location"`
	Photos       []string `json:"photos"`
}

type updatePetRequest struct {
	// Punteros para update parcial: nil = no tocar.
	Name         *string   `json:"name"`
	Species      *string   `json:"species"`
	Breed        *string   `json:"breed"`
	AgeMonths    *int      `json:"age_months"`
	Gender       *string   `json:"gender"`
	Size         *string   `json:"size"`
	Description  *string   `json:"description"`
	HealthStatus *string   `json:"health_status"`
	Vaccination  *string   `json:"vaccination_status"`
	Location     *string   `json:"location"`
	Photos       *[]string `json:"photos"`
	Status       *string   `json:"status"`
}

type petResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Species      string    `json:"species"`
	Breed        string    `json:"breed"`
	AgeMonths    int       `json:"age_months"`
	Gender       string    `json:"gender"`
	Size         string    `json:"size"`
	Description  string    `json:"description"`
	HealthStatus string    `json:"health_status"`
	Vaccination  string    `json:"vaccination_status"`
	Location     string    `json:"location"`
	Photos       []string  `json:"photos"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type petListResponse struct {
	Items []petResponse `json:"items"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int           `json:"total"`
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	// Catálogo público: solo mascotas disponibles.
	return func(w http.ResponseWriter, r *http.Request) {
		f := filterFromQuery(r)
		f.Status = StatusAvailable

		items, total, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toListResponse(items, f, total))
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func adminListPetsHandler(svc *Service) http.HandlerFunc {
	// Igual que el listado público pero sin forzar status (y con filtro opcional).
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		f := filterFromQuery(r)
		f.Status = Status(strings.TrimSpace(r.URL.Query().Get("status")))

		items, total, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toListResponse(items, f, total))
	}
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Name:         req.Name,
			Species:      req.Species,
			Breed:        req.Breed,
			AgeMonths:    req.AgeMonths,
			Gender:       req.Gender,
			Size:         req.Size,
			Description:  req.Description,
			HealthStatus: req.HealthStatus,
			Vaccination:  req.Vaccination,
			Location:     req.Location,
			Photos:       req.Photos,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req updatePetRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), UpdateInput{
			Name:         req.Name,
			Species:      req.Species,
			Breed:        req.Breed,
			AgeMonths:    req.AgeMonths,
			Gender:       req.Gender,
			Size:         req.Size,
			Description:  req.Description,
			HealthStatus: req.HealthStatus,
			Vaccination:  req.Vaccination,
			Location:     req.Location,
			Photos:       req.Photos,
			Status:       req.Status,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "pet not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func deletePetHandler(svc *Service, guard ApplicationGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		petID := chi.URLParam(r, "petID")

		// No se borra una mascota con adopción aprobada en curso.
		if guard != nil {
			has, err := guard.HasApprovedForPet(r.Context(), petID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			if has {
				http.Error(w, ErrHasApproved.Error(), http.StatusBadRequest)
				return
			}
		}

		if err := svc.Delete(r.Context(), petID); err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "pet deleted"})
	}
}

func filterFromQuery(r *http.Request) ListFilter {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return ListFilter{
		Species:  Species(strings.TrimSpace(q.Get("species"))),
		Gender:   Gender(strings.TrimSpace(q.Get("gender"))),
		Size:     Size(strings.TrimSpace(q.Get("size"))),
		Location: strings.TrimSpace(q.Get("location")),
		AgeRange: AgeRange(strings.TrimSpace(q.Get("age"))),
		Query:    strings.TrimSpace(q.Get("q")),
		Page:     page,
		Limit:    limit,
	}
}

func toListResponse(items []Pet, f ListFilter, total int) petListResponse {
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	return petListResponse{
		Items: out,
		Page:  f.Page,
		Limit: f.Limit,
		Total: total,
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:           p.ID,
		Name:         p.Name,
		Species:      string(p.Species),
		Breed:        p.Breed,
		AgeMonths:    p.AgeMonths,
		Gender:       string(p.Gender),
		Size:         string(p.Size),
		Description:  p.Description,
		HealthStatus: p.HealthStatus,
		Vaccination:  string(p.Vaccination),
		Location:     p.Location,
		Photos:       p.Photos,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if !claims.IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
