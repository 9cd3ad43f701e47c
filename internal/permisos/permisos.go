package permisos

import "errors"

// Rol es el rol de un usuario autenticado dentro del portal.
type Rol string

const (
	RolAdmin       Rol = "ADMIN"
	RolPropietario Rol = "PROPIETARIO"
	RolInquilino   Rol = "INQUILINO"
	RolInvitado    Rol = "INVITADO"
)

// Actor identifica a quien ejecuta una operación.
type Actor struct {
	ID  uint
	Rol Rol
}

var (
	// ErrProhibido indica que el rol o la titularidad del actor no
	// satisfacen la regla de acceso.
	ErrProhibido = errors.New("acceso denegado")
	// ErrPagoBloqueado indica que el inquilino intentó editar un pago
	// en estado PROCESSING o PAID.
	ErrPagoBloqueado = errors.New("no se puede editar el pago en este estado")
	// ErrTransicionInvalida indica un cambio de estado no contemplado
	// en la tabla de transiciones.
	ErrTransicionInvalida = errors.New("transición de estado no permitida")
)

// AccesoPago evalúa la puerta de titularidad sobre un pago antes de
// aplicar cualquier cambio de campo. Para el inquilino asignado aplica
// además el bloqueo por estado: con el pago en PROCESSING o PAID toda
// mutación suya falla, sin importar el campo.
func AccesoPago(actor Actor, propietarioID, inquilinoID *uint, estado string) error {
	switch actor.Rol {
	case RolAdmin:
		return nil
	case RolPropietario:
		if propietarioID == nil || *propietarioID != actor.ID {
			return ErrProhibido
		}
		return nil
	case RolInquilino:
		if inquilinoID == nil || *inquilinoID != actor.ID {
			return ErrProhibido
		}
		if estado == "PROCESSING" || estado == "PAID" {
			return ErrPagoBloqueado
		}
		return nil
	default:
		return ErrProhibido
	}
}

// transicionesPago es la tabla estado × rol → estados siguientes.
// ADMIN y PROPIETARIO conservan la escritura genérica del estado;
// el inquilino solo provoca PENDING → PROCESSING al subir comprobante.
// TODO: confirmar con producto si LATE debe ser terminal; hoy admite
// volver a cualquier estado vía admin/propietario.
var transicionesPago = map[Rol]map[string][]string{
	RolAdmin: {
		"PENDING":    {"PROCESSING", "PAID", "LATE", "CANCELLED"},
		"PROCESSING": {"PENDING", "PAID", "LATE", "CANCELLED"},
		"PAID":       {"PENDING", "PROCESSING", "LATE", "CANCELLED"},
		"LATE":       {"PENDING", "PROCESSING", "PAID", "CANCELLED"},
		"CANCELLED":  {"PENDING", "PROCESSING", "PAID", "LATE"},
	},
	RolPropietario: {
		"PENDING":    {"PROCESSING", "PAID", "LATE", "CANCELLED"},
		"PROCESSING": {"PENDING", "PAID", "LATE", "CANCELLED"},
		"PAID":       {"PENDING", "PROCESSING", "LATE", "CANCELLED"},
		"LATE":       {"PENDING", "PROCESSING", "PAID", "CANCELLED"},
		"CANCELLED":  {"PENDING", "PROCESSING", "PAID", "LATE"},
	},
	RolInquilino: {
		"PENDING": {"PROCESSING"},
	},
}

// TransicionPagoPermitida consulta la tabla de transiciones de pagos.
// Un estado igual al actual siempre es válido (actualización sin cambio).
func TransicionPagoPermitida(rol Rol, desde, hacia string) bool {
	if desde == hacia {
		return true
	}
	for _, e := range transicionesPago[rol][desde] {
		if e == hacia {
			return true
		}
	}
	return false
}

// AccesoMantenimiento evalúa quién puede mutar un mantenimiento.
// El admin edita libremente, incluso reabriendo tickets cerrados. El
// solicitante solo puede cancelar su propio ticket mientras siga ABIERTO.
// nuevoEstado vacío significa edición de campos sin cambio de estado.
func AccesoMantenimiento(actor Actor, solicitanteID uint, estado, nuevoEstado string) error {
	if actor.Rol == RolAdmin {
		return nil
	}
	if actor.ID != solicitanteID {
		return ErrProhibido
	}
	if estado != "ABIERTO" {
		return ErrProhibido
	}
	if nuevoEstado != "" && nuevoEstado != "CANCELADO" {
		return ErrProhibido
	}
	return nil
}

// AccesoDocumentacion evalúa quién puede subir documentación a una
// propiedad: admin en cualquiera, propietario en las suyas, inquilino en
// la que tiene alquilada.
func AccesoDocumentacion(actor Actor, propietarioID, inquilinoID *uint) error {
	switch actor.Rol {
	case RolAdmin:
		return nil
	case RolPropietario:
		if propietarioID == nil || *propietarioID != actor.ID {
			return ErrProhibido
		}
		return nil
	case RolInquilino:
		if inquilinoID == nil || *inquilinoID != actor.ID {
			return ErrProhibido
		}
		return nil
	default:
		return ErrProhibido
	}
}
