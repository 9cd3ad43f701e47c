package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificacionesEnviadas cuenta las escrituras de notificación que
	// llegaron a la base, etiquetadas por tipo de evento.
	NotificacionesEnviadas = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_notificaciones_enviadas_total",
			Help: "Notificaciones persistidas por tipo de evento",
		},
		[]string{"tipo"},
	)

	// NotificacionesFallidas cuenta los destinatarios cuya escritura
	// falló. La operación disparadora nunca se entera de estos fallos;
	// este contador y el log son la única evidencia.
	NotificacionesFallidas = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_notificaciones_fallidas_total",
			Help: "Escrituras de notificación fallidas por tipo de evento",
		},
		[]string{"tipo"},
	)
)
