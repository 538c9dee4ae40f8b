package favorites

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pet-adoption-platform/internal/domain/pets"
	"pet-adoption-platform/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	r.Route("/favorites", func(fr chi.Router) {
		fr.Post("/", addFavoriteHandler(svc, petsSvc))
		fr.Get("/", listFavoritesHandler(svc, petsSvc))
		fr.Delete("/{petID}", removeFavoriteHandler(svc))
	})
}

type addFavoriteRequest struct {
	PetID string `json:"pet_id"`
}

type favoriteResponse struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet_id"`
	CreatedAt time.Time `json:"created_at"`

	// Snapshot de la mascota para render directo de la lista.
	PetName    string `json:"pet_name"`
	PetSpecies string `json:"pet_species"`
	PetStatus  string `json:"pet_status"`
	PetPhoto   string `json:"pet_photo,omitempty"`
}

func addFavoriteHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req addFavoriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := petsSvc.GetByID(r.Context(), req.PetID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		f, err := svc.Add(r.Context(), claims.UserID, p.ID)
		if err != nil {
			switch err {
			case ErrDuplicate, ErrLimitReached, ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toFavoriteResponse(f, p))
	}
}

func removeFavoriteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Remove(r.Context(), claims.UserID, chi.URLParam(r, "petID")); err != nil {
			http.Error(w, "favorite not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "favorite removed"})
	}
}

func listFavoritesHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]favoriteResponse, 0, len(items))
		for _, f := range items {
			p, err := petsSvc.GetByID(r.Context(), f.PetID)
			if err != nil {
				// tolera favoritos huérfanos (mascota borrada)
				continue
			}
			out = append(out, toFavoriteResponse(f, p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toFavoriteResponse(f Favorite, p pets.Pet) favoriteResponse {
	photo := ""
	if len(p.Photos) > 0 {
		photo = p.Photos[0]
	}
	return favoriteResponse{
		ID:         f.ID,
		PetID:      f.PetID,
		CreatedAt:  f.CreatedAt,
		PetName:    p.Name,
		PetSpecies: string(p.Species),
		PetStatus:  string(p.Status),
		PetPhoto:   photo,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
