package pago

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmoportal/api-portal/internal/propiedad"
	"gorm.io/gorm"
)

// Estados del ciclo de vida de un pago.
const (
	EstadoPendiente = "PENDING"
	EstadoEnProceso = "PROCESSING"
	EstadoPagado    = "PAID"
	EstadoVencido   = "LATE"
	EstadoCancelado = "CANCELLED"
)

func EstadoValido(e string) bool {
	switch e {
	case EstadoPendiente, EstadoEnProceso, EstadoPagado, EstadoVencido, EstadoCancelado:
		return true
	}
	return false
}

// Pago es una orden de pago sobre una propiedad. InquilinoID puede estar
// vacío: el pago existe sin asignar y no dispara notificación al inquilino.
type Pago struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	PropiedadID uint                `gorm:"index" json:"propertyId"`
	Propiedad   propiedad.Propiedad `gorm:"foreignKey:PropiedadID" json:"property,omitempty"`

	InquilinoID      *uint      `gorm:"index" json:"tenantId,omitempty"`
	Monto            float64    `json:"amount"`
	FechaPago        *time.Time `json:"paymentDate,omitempty"`
	FechaVencimiento time.Time  `json:"dueDate"`
	Estado           string     `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	MetodoPago       *string    `json:"paymentMethod,omitempty"`
	Referencia       *string    `json:"reference,omitempty"`
	Notas            *string    `json:"notes,omitempty"`
	ComprobanteURL   *string    `json:"receiptUrl,omitempty"`
	CreadoPorID      uint       `json:"createdById"`
}

func (Pago) TableName() string { return "pagos" }

func (p *Pago) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
