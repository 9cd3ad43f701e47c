package mantenimiento

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/inmoportal/api-portal/internal/auth"
	"github.com/inmoportal/api-portal/internal/notificacion"
	"github.com/inmoportal/api-portal/internal/permisos"
	"github.com/inmoportal/api-portal/internal/propiedad"
	"github.com/inmoportal/api-portal/internal/usuario"
	"gorm.io/gorm"
)

// Handler encapsula DB, repository y el servicio de notificaciones.
type Handler struct {
	DB          *gorm.DB
	Repository  Repository
	Propiedades propiedad.Repository
	Usuarios    usuario.Repository
	Notificador *notificacion.Service
}

func NewHandler(db *gorm.DB, notificador *notificacion.Service) *Handler {
	return &Handler{
		DB:          db,
		Repository:  NewRepository(),
		Propiedades: propiedad.NewRepository(),
		Usuarios:    usuario.NewRepository(),
		Notificador: notificador,
	}
}

type crearMantenimientoDTO struct {
	PropiedadID uint    `json:"propertyId"`
	Resumen     string  `json:"summary"`
	Descripcion *string `json:"description"`
}

type actualizarMantenimientoDTO struct {
	Estado      *string `json:"status"`
	Resumen     *string `json:"summary"`
	Descripcion *string `json:"description"`
}

// Crear trata POST /api/maintenance. Cualquier usuario aprobado puede
// reportar; el estado arranca ABIERTO sin importar lo que venga en el
// payload.
func (h *Handler) Crear(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	var dto crearMantenimientoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if dto.PropiedadID == 0 || strings.TrimSpace(dto.Resumen) == "" {
		http.Error(w, "Propiedad y resumen son obligatorios", http.StatusBadRequest)
		return
	}

	prop, err := h.Propiedades.BuscarPorID(h.DB, dto.PropiedadID)
	if err != nil {
		http.Error(w, "Propiedad no encontrada", http.StatusNotFound)
		return
	}

	m := Mantenimiento{
		PropiedadID:   dto.PropiedadID,
		SolicitanteID: actor.ID,
		Resumen:       dto.Resumen,
		Descripcion:   dto.Descripcion,
		Estado:        EstadoAbierto,
	}
	if err := h.Repository.Salvar(h.DB, &m); err != nil {
		http.Error(w, "Error al guardar el mantenimiento", http.StatusInternalServerError)
		return
	}
	m.Propiedad = *prop

	h.notificarCreacion(&m, prop)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(m)
}

// Listar trata GET /api/maintenance con filtros y paginación.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.ActorDesdeContexto(r); !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	f := Filtros{Estado: q.Get("status"), Page: 1, Limit: 10}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		f.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		f.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("propertyId")); err == nil {
		id := uint(v)
		f.PropiedadID = &id
	}
	if v, err := strconv.Atoi(q.Get("ownerId")); err == nil {
		id := uint(v)
		f.PropietarioID = &id
	}

	list, total, err := h.Repository.Listar(h.DB, f)
	if err != nil {
		http.Error(w, "Error al listar mantenimientos", http.StatusInternalServerError)
		return
	}

	pages := int(total) / f.Limit
	if int(total)%f.Limit != 0 {
		pages++
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"maintenances": list,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  f.Page,
			"limit": f.Limit,
			"pages": pages,
		},
	})
}

// BuscarPorID trata GET /api/maintenance/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	m, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		http.Error(w, "Mantenimiento no encontrado", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

// Actualizar trata PUT /api/maintenance/{id}. El admin edita libremente;
// el solicitante solo puede cancelar su ticket mientras siga abierto.
func (h *Handler) Actualizar(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]

	m, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		http.Error(w, "Mantenimiento no encontrado", http.StatusNotFound)
		return
	}

	var dto actualizarMantenimientoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	nuevoEstado := ""
	if dto.Estado != nil {
		if !EstadoValido(*dto.Estado) {
			http.Error(w, "Estado de mantenimiento inválido", http.StatusBadRequest)
			return
		}
		nuevoEstado = *dto.Estado
	}

	if err := permisos.AccesoMantenimiento(actor, m.SolicitanteID, m.Estado, nuevoEstado); err != nil {
		http.Error(w, "No tienes permiso para modificar este mantenimiento", http.StatusForbidden)
		return
	}

	estadoAnterior := m.Estado
	if nuevoEstado != "" {
		m.Estado = nuevoEstado
	}
	if dto.Resumen != nil && strings.TrimSpace(*dto.Resumen) != "" {
		m.Resumen = *dto.Resumen
	}
	if dto.Descripcion != nil {
		m.Descripcion = dto.Descripcion
	}

	if err := h.Repository.Actualizar(h.DB, m); err != nil {
		http.Error(w, "Error al actualizar el mantenimiento", http.StatusInternalServerError)
		return
	}

	// Solo el cambio de estado notifica; la edición de campos es muda.
	if m.Estado != estadoAnterior {
		h.notificarCambioEstado(m, &m.Propiedad, estadoAnterior, actor)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

// Eliminar trata DELETE /api/maintenance/{id}. Solo admin, sin fan-out.
func (h *Handler) Eliminar(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}
	if actor.Rol != permisos.RolAdmin {
		http.Error(w, "Solo administradores", http.StatusForbidden)
		return
	}
	id := mux.Vars(r)["id"]

	if _, err := h.Repository.BuscarPorID(h.DB, id); err != nil {
		http.Error(w, "Mantenimiento no encontrado", http.StatusNotFound)
		return
	}
	if err := h.Repository.Eliminar(h.DB, id); err != nil {
		http.Error(w, "Error al eliminar el mantenimiento", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// notificarCreacion avisa al dueño de la propiedad y a todos los admins,
// excluyendo siempre al solicitante.
func (h *Handler) notificarCreacion(m *Mantenimiento, prop *propiedad.Propiedad) {
	var destinos []uint
	if prop.PropietarioID != nil && *prop.PropietarioID != m.SolicitanteID {
		destinos = append(destinos, *prop.PropietarioID)
	}
	admins, err := h.Usuarios.ListarAdmins(h.DB)
	if err == nil {
		for _, a := range admins {
			if a.ID != m.SolicitanteID {
				destinos = append(destinos, a.ID)
			}
		}
	}

	h.Notificador.Notificar(destinos, notificacion.Evento{
		Tipo:   notificacion.TipoMantenimientoCreado,
		Titulo: "Nuevo Mantenimiento",
		Mensaje: fmt.Sprintf("Se ha creado un nuevo reporte de mantenimiento para %s: %s",
			prop.Titulo, m.Resumen),
		RelacionadoID:   m.ID,
		TipoRelacionado: notificacion.RelacionMantenimiento,
	})
}

// notificarCambioEstado avisa al solicitante y al dueño, sin avisar a
// quien hizo el cambio.
func (h *Handler) notificarCambioEstado(m *Mantenimiento, prop *propiedad.Propiedad, estadoAnterior string, actor permisos.Actor) {
	var destinos []uint
	if m.SolicitanteID != actor.ID {
		destinos = append(destinos, m.SolicitanteID)
	}
	if prop.PropietarioID != nil && *prop.PropietarioID != actor.ID {
		destinos = append(destinos, *prop.PropietarioID)
	}
	if len(destinos) == 0 {
		return
	}

	h.Notificador.Notificar(destinos, notificacion.Evento{
		Tipo:   notificacion.TipoMantenimientoEstado,
		Titulo: "Estado de Mantenimiento Actualizado",
		Mensaje: fmt.Sprintf("El mantenimiento %q cambió de %s a %s",
			m.Resumen, estadoAnterior, m.Estado),
		RelacionadoID:   m.ID,
		TipoRelacionado: notificacion.RelacionMantenimiento,
	})
}
