package applications

import "time"

// Status define el ciclo de vida de una solicitud de adopción.
//
//	pending --approve--> approved   (terminal)
//	pending --reject---> rejected   (terminal)
//	pending --auto-reject (hermana aprobada)--> rejected (terminal)
//	pending --withdraw-> withdrawn  (terminal, lo inicia el solicitante)
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// AutoRejectNote es la nota fija generada por el sistema cuando una solicitud
// hermana se rechaza como efecto de aprobar otra. Distingue el auto-rechazo de
// un rechazo explícito del admin.
const AutoRejectNote = "another application for this pet has been approved"

type HousingType string

const (
	HousingOwn  HousingType = "own"
	HousingRent HousingType = "rent"
)

type LivingSituation string

const (
	LivingHouse     LivingSituation = "house"
	LivingApartment LivingSituation = "apartment"
	LivingOther     LivingSituation = "other"
)

// Application representa una solicitud de adopción. Los campos del formulario
// son inmutables una vez creada; solo el bloque de revisión cambia, y
// exactamente una vez.
type Application struct {
	ID     string
	PetID  string
	UserID string

	FullName string
	Email    string
	Phone    string
	Address  string

	HousingType      HousingType
	LivingSituation  LivingSituation
	HouseholdMembers int
	Occupation       string
	MonthlyIncome    string
	HasYard          bool

	HasPetExperience   bool
	PreviousPetType    string
	YearsOfExperience  int
	PreviousPetOutcome string
	HasCurrentPets     bool
	CurrentPetsInfo    string

	Motivation string

	Status        Status
	SubmittedAt   time.Time
	ReviewedAt    *time.Time
	ReviewerNotes string
}
