package mantenimiento

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmoportal/api-portal/internal/propiedad"
	"gorm.io/gorm"
)

// Estados del ticket de mantenimiento.
const (
	EstadoAbierto   = "ABIERTO"
	EstadoResuelto  = "RESUELTO"
	EstadoCancelado = "CANCELADO"
)

func EstadoValido(e string) bool {
	switch e {
	case EstadoAbierto, EstadoResuelto, EstadoCancelado:
		return true
	}
	return false
}

// Mantenimiento es un reporte sobre una propiedad. Nace siempre ABIERTO.
type Mantenimiento struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	PropiedadID uint                `gorm:"index" json:"propertyId"`
	Propiedad   propiedad.Propiedad `gorm:"foreignKey:PropiedadID" json:"property,omitempty"`

	SolicitanteID uint    `gorm:"index" json:"requesterId"`
	Resumen       string  `json:"summary"`
	Descripcion   *string `json:"description,omitempty"`
	Estado        string  `gorm:"type:varchar(20);default:'ABIERTO'" json:"status"`
}

func (Mantenimiento) TableName() string { return "mantenimientos" }

func (m *Mantenimiento) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
