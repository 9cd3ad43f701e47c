package propiedad

import "time"

// Propiedad es el inmueble administrado por el portal. PropietarioID e
// InquilinoID son opcionales: una propiedad puede estar sin dueño asignado
// o sin alquilar.
type Propiedad struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Titulo        string `json:"title"`
	Codigo        string `gorm:"unique" json:"propertyCode"`
	Direccion     string `json:"address"`
	PropietarioID *uint  `json:"ownerId,omitempty"`
	InquilinoID   *uint  `json:"tenantId,omitempty"`
}

func (Propiedad) TableName() string { return "propiedades" }
