package notificacion

import (
	"sync"

	"github.com/inmoportal/api-portal/internal/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Evento es el contenido común que recibe cada destinatario del fan-out.
type Evento struct {
	Tipo            string
	Titulo          string
	Mensaje         string
	RelacionadoID   string
	TipoRelacionado string
}

// Service escribe el fan-out de notificaciones. Es un efecto secundario:
// ninguna falla de entrega debe llegar al llamador, por eso Notificar no
// devuelve error. Las fallas quedan en el log y en los contadores.
type Service struct {
	DB         *gorm.DB
	Repository Repository
	Log        *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{
		DB:         db,
		Repository: NewRepository(),
		Log:        log,
	}
}

// Notificar escribe una fila por destinatario distinto. Deduplica la
// lista, descarta ids en cero y no hace nada si queda vacía. Las
// escrituras salen en paralelo; una falla parcial no aborta las demás.
func (s *Service) Notificar(usuarioIDs []uint, ev Evento) {
	vistos := make(map[uint]bool, len(usuarioIDs))
	destinos := make([]uint, 0, len(usuarioIDs))
	for _, id := range usuarioIDs {
		if id == 0 || vistos[id] {
			continue
		}
		vistos[id] = true
		destinos = append(destinos, id)
	}
	if len(destinos) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, usuarioID := range destinos {
		wg.Add(1)
		go func(usuarioID uint) {
			defer wg.Done()
			n := Notificacion{
				UsuarioID: usuarioID,
				Tipo:      ev.Tipo,
				Titulo:    ev.Titulo,
				Mensaje:   ev.Mensaje,
			}
			if ev.RelacionadoID != "" {
				rid := ev.RelacionadoID
				rtipo := ev.TipoRelacionado
				n.RelacionadoID = &rid
				n.TipoRelacionado = &rtipo
			}
			if err := s.Repository.Crear(s.DB, &n); err != nil {
				metrics.NotificacionesFallidas.WithLabelValues(ev.Tipo).Inc()
				s.Log.Error("fallo al escribir notificación",
					zap.Uint("usuarioId", usuarioID),
					zap.String("tipo", ev.Tipo),
					zap.Error(err))
				return
			}
			metrics.NotificacionesEnviadas.WithLabelValues(ev.Tipo).Inc()
		}(usuarioID)
	}
	wg.Wait()
}
