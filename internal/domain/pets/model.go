package pets

import "time"

// Status define el ciclo de vida de adopción de una mascota.
// available = acepta solicitudes nuevas; pending = hay una solicitud
// aprobada esperando completarse; adopted = terminal.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusAdopted   Status = "adopted"
)

// Species define las especies soportadas.
type Species string

const (
	SpeciesDog    Species = "dog"
	SpeciesCat    Species = "cat"
	SpeciesRabbit Species = "rabbit"
	SpeciesBird   Species = "bird"
	SpeciesOther  Species = "other"
)

// Gender define el sexo de la mascota.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Size define el porte.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// VaccinationStatus define el avance del esquema de vacunas.
type VaccinationStatus string

const (
	VaccinationNone     VaccinationStatus = "none"
	VaccinationPartial  VaccinationStatus = "partial"
	VaccinationComplete VaccinationStatus = "complete"
)

// Pet representa una mascota publicada en el catálogo de adopción.
type Pet struct {
	ID string

	Name      string
	Species   Species
	Breed     string
	AgeMonths int
	Gender    Gender
	Size      Size

	Description  string
	HealthStatus string
	Vaccination  VaccinationStatus
	Location     string
	Photos       []string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
