package usuario

import (
	"time"

	"github.com/inmoportal/api-portal/internal/permisos"
)

const (
	EstadoPendiente = "PENDING"
	EstadoAprobado  = "APPROVED"
	EstadoRechazado = "REJECTED"
)

// Usuario es la cuenta del portal. El rol decide el alcance de cada
// operación; el estado controla si la cuenta ya fue aprobada por un admin.
type Usuario struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Nombre     string       `json:"name"`
	Email      string       `gorm:"unique" json:"email"`
	Contrasena string       `json:"-"`
	Telefono   string       `json:"phone,omitempty"`
	Avatar     string       `json:"avatar,omitempty"`
	Rol        permisos.Rol `gorm:"type:varchar(20);default:'INQUILINO'" json:"role"`
	Estado     string       `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
}

func (Usuario) TableName() string { return "usuarios" }
