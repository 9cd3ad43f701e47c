package notificacion

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipos de evento que generan notificaciones.
const (
	TipoMantenimientoCreado     = "MAINTENANCE_CREATED"
	TipoMantenimientoEstado     = "MAINTENANCE_STATUS_CHANGED"
	TipoDocumentacionSubida     = "DOCUMENTATION_UPLOADED"
	TipoOrdenDePagoCreada       = "PAYMENT_ORDER_CREATED"
	TipoPagoRecibido            = "PAYMENT_RECEIVED"
	TipoEstadoDePagoActualizado = "PAYMENT_STATUS_CHANGED"
)

// Tipo de entidad relacionada. La referencia es débil: la entidad puede
// borrarse después sin invalidar la notificación.
const (
	RelacionMantenimiento = "MAINTENANCE"
	RelacionDocumentacion = "DOCUMENTATION"
	RelacionPago          = "PAYMENT"
)

// Notificacion es una fila del buzón por usuario. Inmutable salvo el
// flag Leida; nunca se borra desde la aplicación.
type Notificacion struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	UsuarioID       uint    `gorm:"index" json:"userId"`
	Tipo            string  `gorm:"type:varchar(40)" json:"type"`
	Titulo          string  `json:"title"`
	Mensaje         string  `json:"message"`
	RelacionadoID   *string `json:"relatedId,omitempty"`
	TipoRelacionado *string `gorm:"type:varchar(20)" json:"relatedType,omitempty"`
	Leida           bool    `gorm:"default:false;index" json:"read"`
}

func (Notificacion) TableName() string { return "notificaciones" }

func (n *Notificacion) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
