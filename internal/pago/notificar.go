package pago

import (
	"fmt"

	"github.com/inmoportal/api-portal/internal/notificacion"
	"github.com/inmoportal/api-portal/internal/permisos"
	"github.com/inmoportal/api-portal/internal/propiedad"
)

// notificarOrdenCreada avisa al inquilino asignado, si existe y no es
// quien creó el pago.
func (h *Handler) notificarOrdenCreada(p *Pago, prop *propiedad.Propiedad, actor permisos.Actor) {
	if p.InquilinoID == nil || *p.InquilinoID == actor.ID {
		return
	}
	h.Notificador.Notificar([]uint{*p.InquilinoID}, notificacion.Evento{
		Tipo:   notificacion.TipoOrdenDePagoCreada,
		Titulo: "Nueva Orden de Pago",
		Mensaje: fmt.Sprintf("Tienes un nuevo pago pendiente para %s por $%.2f. Vence el %s",
			prop.Titulo, p.Monto, p.FechaVencimiento.Format("02/01/2006")),
		RelacionadoID:   p.ID,
		TipoRelacionado: notificacion.RelacionPago,
	})
}

// notificarCambioEstado avisa al inquilino y al dueño, excluyendo a quien
// hizo el cambio. El mensaje varía según el estado resultante.
func (h *Handler) notificarCambioEstado(p *Pago, prop *propiedad.Propiedad, estadoAnterior string, actor permisos.Actor) {
	var destinos []uint
	if p.InquilinoID != nil && *p.InquilinoID != actor.ID {
		destinos = append(destinos, *p.InquilinoID)
	}
	if prop.PropietarioID != nil && *prop.PropietarioID != actor.ID {
		destinos = append(destinos, *prop.PropietarioID)
	}
	if len(destinos) == 0 {
		return
	}

	titulo := "Estado de Pago Actualizado"
	mensaje := fmt.Sprintf("El pago de $%.2f para %s ha cambiado de estado: %s -> %s",
		p.Monto, prop.Titulo, estadoAnterior, p.Estado)
	switch p.Estado {
	case EstadoEnProceso:
		titulo = "Comprobante Subido"
		mensaje = fmt.Sprintf("Se ha subido un comprobante para el pago de %s. El estado es ahora: En Proceso.", prop.Titulo)
	case EstadoVencido:
		titulo = "Pago Vencido"
		mensaje = fmt.Sprintf("El pago de %s ha vencido.", prop.Titulo)
	}

	h.Notificador.Notificar(destinos, notificacion.Evento{
		Tipo:            notificacion.TipoEstadoDePagoActualizado,
		Titulo:          titulo,
		Mensaje:         mensaje,
		RelacionadoID:   p.ID,
		TipoRelacionado: notificacion.RelacionPago,
	})
}
