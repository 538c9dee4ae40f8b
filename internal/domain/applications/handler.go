package applications

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
	// Solicitante
	r.Route("/applications", func(ar chi.Router) {
		ar.Post("/", submitHandler(svc, petsSvc))
		ar.Get("/", listMineHandler(svc))
		ar.Get("/{applicationID}", getHandler(svc))
		ar.Post("/{applicationID}/withdraw", withdrawHandler(svc))
	})

	// Revisión admin
	r.Route("/admin/applications", func(ar chi.Router) {
		ar.Get("/", adminListHandler(svc))
		ar.Get("/{applicationID}", adminGetHandler(svc))
		ar.Post("/{applicationID}/review", reviewHandler(svc))
	})
}

type submitRequest struct {
	PetID string `json:"pet_id"`

	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`

	HousingType      string `json:"housing_type"`
	LivingSituation  string `json:"living_situation"`
	HouseholdMembers int    `json:"household_members"`
	Occupation       string `json:"occupation"`
	MonthlyIncome    string `json:"monthly_income"`
	HasYard          bool   `json:"has_yard"`

	HasPetExperience   bool   `json:"has_pet_experience"`
	PreviousPetType    string `json:"previous_pet_type"`
	YearsOfExperience  int    `json:"years_of_experience"`
	PreviousPetOutcome string `json:"previous_pet_outcome"`
	HasCurrentPets     bool   `json:"has_current_pets"`
	CurrentPetsInfo    string `json:"current_pets_info"`

	Motivation string `json:"motivation"`
}

type reviewRequest struct {
	Action        string `json:"action"`
	ReviewerNotes string `json:"reviewer_notes"`
}

type applicationResponse struct {
	ID     string `json:"id"`
	PetID  string `json:"pet_id"`
	UserID string `json:"user_id"`

	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`

	HousingType      string `json:"housing_type"`
	LivingSituation  string `json:"living_situation"`
	HouseholdMembers int    `json:"household_members"`
	Occupation       string `json:"occupation,omitempty"`
	MonthlyIncome    string `json:"monthly_income,omitempty"`
	HasYard          bool   `json:"has_yard"`

	HasPetExperience   bool   `json:"has_pet_experience"`
	PreviousPetType    string `json:"previous_pet_type,omitempty"`
	YearsOfExperience  int    `json:"years_of_experience,omitempty"`
	PreviousPetOutcome string `json:"previous_pet_outcome,omitempty"`
	HasCurrentPets     bool   `json:"has_current_pets"`
	CurrentPetsInfo    string `json:"current_pets_info,omitempty"`

	Motivation string `json:"motivation"`

	Status        string     `json:"status"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewerNotes string     `json:"reviewer_notes,omitempty"`
}

type reviewResponse struct {
	Message      string              `json:"message"`
	Application  applicationResponse `json:"application"`
	AutoRejected int                 `json:"auto_rejected,omitempty"`
}

func submitHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		// La mascota tiene que existir y seguir disponible.
		p, err := petsSvc.GetByID(r.Context(), req.PetID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if p.Status != pets.StatusAvailable {
			http.Error(w, "pet is no longer accepting applications", http.StatusBadRequest)
			return
		}

		a, err := svc.Submit(r.Context(), claims.UserID, SubmitInput{
			PetID:              req.PetID,
			FullName:           req.FullName,
			Email:              req.Email,
			Phone:              req.Phone,
			Address:            req.Address,
			HousingType:        req.HousingType,
			LivingSituation:    req.LivingSituation,
			HouseholdMembers:   req.HouseholdMembers,
			Occupation:         req.Occupation,
			MonthlyIncome:      req.MonthlyIncome,
			HasYard:            req.HasYard,
			HasPetExperience:   req.HasPetExperience,
			PreviousPetType:    req.PreviousPetType,
			YearsOfExperience:  req.YearsOfExperience,
			PreviousPetOutcome: req.PreviousPetOutcome,
			HasCurrentPets:     req.HasCurrentPets,
			CurrentPetsInfo:    req.CurrentPetsInfo,
			Motivation:         req.Motivation,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput, ErrDuplicate, ErrApprovedPending:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toApplicationResponse(a))
	}
}

func listMineHandler(svc *Service) http.HandlerFunc {
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

		out := make([]applicationResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toApplicationResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	// Dueño de la solicitud o admin.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "applicationID"))
		if err != nil {
			http.Error(w, "application not found", http.StatusNotFound)
			return
		}

		if a.UserID != claims.UserID && !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

func withdrawHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.Withdraw(r.Context(), chi.URLParam(r, "applicationID"), claims.UserID)
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "application not found", http.StatusNotFound)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrInvalidState:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

func adminListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		f := ListFilter{
			Status: Status(strings.TrimSpace(r.URL.Query().Get("status"))),
			PetID:  strings.TrimSpace(r.URL.Query().Get("pet_id")),
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]applicationResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toApplicationResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminGetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "applicationID"))
		if err != nil {
			http.Error(w, "application not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

func reviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.Review(r.Context(), chi.URLParam(r, "applicationID"), ReviewInput{
			Decision:      req.Action,
			ReviewerNotes: req.ReviewerNotes,
		})
		if err != nil {
			switch {
			case err == ErrNotFound:
				http.Error(w, "application not found", http.StatusNotFound)
			case err == ErrInvalidInput:
				http.Error(w, "unknown action", http.StatusBadRequest)
			case err == ErrInvalidState:
				// Mensaje accionable: el admin refresca y ve el estado real.
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				// Nada quedó aplicado; el caller puede reintentar.
				http.Error(w, "review failed, no changes were applied", http.StatusInternalServerError)
			}
			return
		}

		msg := "application rejected"
		if Decision(strings.TrimSpace(req.Action)) == DecisionApprove {
			msg = "application approved"
		}

		writeJSON(w, http.StatusOK, reviewResponse{
			Message:      msg,
			Application:  toApplicationResponse(out.Application),
			AutoRejected: len(out.AutoRejected),
		})
	}
}

func toApplicationResponse(a Application) applicationResponse {
	return applicationResponse{
		ID:     a.ID,
		PetID:  a.PetID,
		UserID: a.UserID,

		FullName: a.FullName,
		Email:    a.Email,
		Phone:    a.Phone,
		Address:  a.Address,

		HousingType:      string(a.HousingType),
		LivingSituation:  string(a.LivingSituation),
		HouseholdMembers: a.HouseholdMembers,
		Occupation:       a.Occupation,
		MonthlyIncome:    a.MonthlyIncome,
		HasYard:          a.HasYard,

		HasPetExperience:   a.HasPetExperience,
		PreviousPetType:    a.PreviousPetType,
		YearsOfExperience:  a.YearsOfExperience,
		PreviousPetOutcome: a.PreviousPetOutcome,
		HasCurrentPets:     a.HasCurrentPets,
		CurrentPetsInfo:    a.CurrentPetsInfo,

		Motivation: a.Motivation,

		Status:        string(a.Status),
		SubmittedAt:   a.SubmittedAt,
		ReviewedAt:    a.ReviewedAt,
		ReviewerNotes: a.ReviewerNotes,
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
