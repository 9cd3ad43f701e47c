package pago

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/inmoportal/api-portal/internal/auth"
	"github.com/inmoportal/api-portal/internal/notificacion"
	"github.com/inmoportal/api-portal/internal/permisos"
	"github.com/inmoportal/api-portal/internal/propiedad"
	"gorm.io/gorm"
)

// Handler encapsula DB, repository y el servicio de notificaciones.
type Handler struct {
	DB          *gorm.DB
	Repository  Repository
	Propiedades propiedad.Repository
	Notificador *notificacion.Service
}

func NewHandler(db *gorm.DB, notificador *notificacion.Service) *Handler {
	return &Handler{
		DB:          db,
		Repository:  NewRepository(),
		Propiedades: propiedad.NewRepository(),
		Notificador: notificador,
	}
}

// Crear trata POST /api/payments
func (h *Handler) Crear(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	var dto crearPagoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if dto.PropiedadID == 0 || dto.Monto <= 0 || strings.TrimSpace(dto.FechaVencimiento) == "" {
		http.Error(w, "Propiedad, monto y fecha de vencimiento son obligatorios", http.StatusBadRequest)
		return
	}

	prop, err := h.Propiedades.BuscarPorID(h.DB, dto.PropiedadID)
	if err != nil {
		http.Error(w, "Propiedad no encontrada", http.StatusNotFound)
		return
	}

	// Solo admin y propietario crean pagos; el propietario solo sobre
	// sus propiedades.
	switch actor.Rol {
	case permisos.RolAdmin:
	case permisos.RolPropietario:
		if prop.PropietarioID == nil || *prop.PropietarioID != actor.ID {
			http.Error(w, "Solo puedes crear pagos para tus propiedades", http.StatusForbidden)
			return
		}
	default:
		http.Error(w, "Acceso denegado", http.StatusForbidden)
		return
	}

	estado := dto.Estado
	if estado == "" {
		estado = EstadoPendiente
	}
	if !EstadoValido(estado) {
		http.Error(w, "Estado de pago inválido", http.StatusBadRequest)
		return
	}

	vencimiento, err := parseFecha(dto.FechaVencimiento)
	if err != nil {
		http.Error(w, "Fecha de vencimiento inválida", http.StatusBadRequest)
		return
	}

	p := Pago{
		PropiedadID:      dto.PropiedadID,
		InquilinoID:      dto.InquilinoID,
		Monto:            dto.Monto,
		FechaVencimiento: vencimiento,
		Estado:           estado,
		MetodoPago:       dto.MetodoPago,
		Referencia:       dto.Referencia,
		Notas:            dto.Notas,
		CreadoPorID:      actor.ID,
	}
	if dto.FechaPago != nil && strings.TrimSpace(*dto.FechaPago) != "" {
		fp, err := parseFecha(*dto.FechaPago)
		if err != nil {
			http.Error(w, "Fecha de pago inválida", http.StatusBadRequest)
			return
		}
		p.FechaPago = &fp
	}

	if err := h.Repository.Salvar(h.DB, &p); err != nil {
		http.Error(w, "Error al guardar el pago", http.StatusInternalServerError)
		return
	}
	p.Propiedad = *prop

	h.notificarOrdenCreada(&p, prop, actor)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

// Listar trata GET /api/payments con filtros y paginación.
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}
	if actor.Rol == permisos.RolInvitado {
		http.Error(w, "Acceso denegado", http.StatusForbidden)
		return
	}

	q := r.URL.Query()
	f := Filtros{Estado: q.Get("status"), Page: 1, Limit: 20}
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
	if v, err := strconv.Atoi(q.Get("tenantId")); err == nil {
		id := uint(v)
		f.InquilinoID = &id
	}
	if s := q.Get("startDate"); s != "" {
		if t, err := parseFecha(s); err == nil {
			f.Desde = &t
		}
	}
	if s := q.Get("endDate"); s != "" {
		if t, err := parseFecha(s); err == nil {
			f.Hasta = &t
		}
	}

	list, total, err := h.Repository.Listar(h.DB, actor, f)
	if err != nil {
		http.Error(w, "Error al listar pagos", http.StatusInternalServerError)
		return
	}

	pages := int(total) / f.Limit
	if int(total)%f.Limit != 0 {
		pages++
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"payments": list,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  f.Page,
			"limit": f.Limit,
			"pages": pages,
		},
	})
}

// BuscarPorID trata GET /api/payments/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]

	p, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		http.Error(w, "Pago no encontrado", http.StatusNotFound)
		return
	}

	if actor.Rol != permisos.RolAdmin {
		esDueno := actor.Rol == permisos.RolPropietario &&
			p.Propiedad.PropietarioID != nil && *p.Propiedad.PropietarioID == actor.ID
		esInquilino := actor.Rol == permisos.RolInquilino &&
			p.InquilinoID != nil && *p.InquilinoID == actor.ID
		if !esDueno && !esInquilino {
			http.Error(w, "Acceso denegado", http.StatusForbidden)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// Actualizar trata PUT /api/payments/{id}. La mutabilidad por campo
// depende del rol; el cambio de estado pasa por la tabla de transiciones
// y dispara la notificación solo si el estado final difiere del previo.
func (h *Handler) Actualizar(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]

	p, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		http.Error(w, "Pago no encontrado", http.StatusNotFound)
		return
	}

	if err := permisos.AccesoPago(actor, p.Propiedad.PropietarioID, p.InquilinoID, p.Estado); err != nil {
		if errors.Is(err, permisos.ErrPagoBloqueado) {
			http.Error(w, "No se puede editar el pago en este estado", http.StatusForbidden)
			return
		}
		http.Error(w, "Acceso denegado", http.StatusForbidden)
		return
	}

	var dto actualizarPagoDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	// El inquilino no escribe el estado; su único cambio posible es el
	// implícito al subir comprobante.
	if dto.Estado != nil && actor.Rol == permisos.RolInquilino {
		http.Error(w, "Los inquilinos no pueden cambiar el estado del pago", http.StatusForbidden)
		return
	}

	estadoAnterior := p.Estado

	// Monto y vencimiento: los pedidos del inquilino se ignoran en
	// silencio, no se rechazan.
	if dto.Monto != nil && actor.Rol != permisos.RolInquilino {
		if *dto.Monto <= 0 {
			http.Error(w, "El monto debe ser mayor a cero", http.StatusBadRequest)
			return
		}
		p.Monto = *dto.Monto
	}
	if dto.FechaVencimiento != nil && actor.Rol != permisos.RolInquilino {
		fv, err := parseFecha(*dto.FechaVencimiento)
		if err != nil {
			http.Error(w, "Fecha de vencimiento inválida", http.StatusBadRequest)
			return
		}
		p.FechaVencimiento = fv
	}
	if dto.FechaPago != nil {
		if strings.TrimSpace(*dto.FechaPago) == "" {
			p.FechaPago = nil
		} else {
			fp, err := parseFecha(*dto.FechaPago)
			if err != nil {
				http.Error(w, "Fecha de pago inválida", http.StatusBadRequest)
				return
			}
			p.FechaPago = &fp
		}
	}
	if dto.Estado != nil {
		if !EstadoValido(*dto.Estado) {
			http.Error(w, "Estado de pago inválido", http.StatusBadRequest)
			return
		}
		if !permisos.TransicionPagoPermitida(actor.Rol, estadoAnterior, *dto.Estado) {
			http.Error(w, "Transición de estado no permitida", http.StatusForbidden)
			return
		}
		p.Estado = *dto.Estado
	}
	if dto.MetodoPago != nil {
		p.MetodoPago = dto.MetodoPago
	}
	if dto.Referencia != nil {
		p.Referencia = dto.Referencia
	}
	if dto.Notas != nil {
		p.Notas = dto.Notas
	}
	if dto.ComprobanteURL != nil {
		p.ComprobanteURL = dto.ComprobanteURL
		// Al subir comprobante el inquilino fuerza PENDING → PROCESSING.
		if actor.Rol == permisos.RolInquilino && estadoAnterior == EstadoPendiente {
			p.Estado = EstadoEnProceso
		}
	}

	if err := h.Repository.Actualizar(h.DB, p); err != nil {
		http.Error(w, "Error al actualizar el pago", http.StatusInternalServerError)
		return
	}

	if p.Estado != estadoAnterior {
		h.notificarCambioEstado(p, &p.Propiedad, estadoAnterior, actor)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// SubirComprobante trata POST /api/payments/{id}/receipt. El archivo ya
// fue almacenado aguas arriba; aquí llega solo la URL.
func (h *Handler) SubirComprobante(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]

	var dto subirComprobanteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || strings.TrimSpace(dto.ComprobanteURL) == "" {
		http.Error(w, "El campo 'receiptUrl' es obligatorio", http.StatusBadRequest)
		return
	}

	p, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		http.Error(w, "Pago no encontrado", http.StatusNotFound)
		return
	}

	if err := permisos.AccesoPago(actor, p.Propiedad.PropietarioID, p.InquilinoID, p.Estado); err != nil {
		if errors.Is(err, permisos.ErrPagoBloqueado) {
			http.Error(w, "No se puede editar el pago en este estado", http.StatusForbidden)
			return
		}
		http.Error(w, "Acceso denegado", http.StatusForbidden)
		return
	}

	estadoAnterior := p.Estado
	p.ComprobanteURL = &dto.ComprobanteURL
	if actor.Rol == permisos.RolInquilino && estadoAnterior == EstadoPendiente {
		p.Estado = EstadoEnProceso
	}

	if err := h.Repository.Actualizar(h.DB, p); err != nil {
		http.Error(w, "Error al guardar el comprobante", http.StatusInternalServerError)
		return
	}

	if p.Estado != estadoAnterior {
		h.notificarCambioEstado(p, &p.Propiedad, estadoAnterior, actor)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// Eliminar trata DELETE /api/payments/{id}. Borrado físico, solo admin,
// sin notificación.
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
		http.Error(w, "Pago no encontrado", http.StatusNotFound)
		return
	}
	if err := h.Repository.Eliminar(h.DB, id); err != nil {
		http.Error(w, "Error al eliminar el pago", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Estadisticas trata GET /api/payments/stats
func (h *Handler) Estadisticas(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	stats, err := h.Repository.Estadisticas(h.DB, actor)
	if err != nil {
		http.Error(w, "Error al calcular estadísticas", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

// Proximos trata GET /api/payments/upcoming?days=
func (h *Handler) Proximos(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	dias := 7
	if v, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && v > 0 {
		dias = v
	}

	list, err := h.Repository.Proximos(h.DB, actor, dias)
	if err != nil {
		http.Error(w, "Error al listar pagos próximos", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"payments": list})
}
