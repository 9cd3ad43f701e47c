package propiedad

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/inmoportal/api-portal/internal/auth"
	"github.com/inmoportal/api-portal/internal/permisos"
	"gorm.io/gorm"
)

// Handler encapsula DB y repository
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
	}
}

type propiedadDTO struct {
	Titulo        string `json:"title"`
	Codigo        string `json:"propertyCode"`
	Direccion     string `json:"address"`
	PropietarioID *uint  `json:"ownerId"`
	InquilinoID   *uint  `json:"tenantId"`
}

// Crear trata POST /api/properties (solo admin, vía RequireAdmin)
func (h *Handler) Crear(w http.ResponseWriter, r *http.Request) {
	var dto propiedadDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(dto.Titulo) == "" || strings.TrimSpace(dto.Codigo) == "" {
		http.Error(w, "Título y código son obligatorios", http.StatusBadRequest)
		return
	}

	p := Propiedad{
		Titulo:        dto.Titulo,
		Codigo:        dto.Codigo,
		Direccion:     dto.Direccion,
		PropietarioID: dto.PropietarioID,
		InquilinoID:   dto.InquilinoID,
	}
	if err := h.Repository.Salvar(h.DB, &p); err != nil {
		http.Error(w, "Error al guardar la propiedad", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

// Listar trata GET /api/properties
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	list, err := h.Repository.ListarParaActor(h.DB, actor)
	if err != nil {
		http.Error(w, "Error al listar propiedades", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// BuscarPorID trata GET /api/properties/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	p, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Propiedad no encontrada", http.StatusNotFound)
		return
	}

	actor, _ := auth.ActorDesdeContexto(r)
	if actor.Rol != permisos.RolAdmin {
		esDueno := p.PropietarioID != nil && *p.PropietarioID == actor.ID
		esInquilino := p.InquilinoID != nil && *p.InquilinoID == actor.ID
		if !esDueno && !esInquilino {
			http.Error(w, "Acceso denegado", http.StatusForbidden)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// Actualizar trata PUT /api/properties/{id} (solo admin, vía RequireAdmin)
func (h *Handler) Actualizar(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	existing, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "Propiedad no encontrada", http.StatusNotFound)
		return
	}

	var dto propiedadDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	existing.Titulo = dto.Titulo
	existing.Codigo = dto.Codigo
	existing.Direccion = dto.Direccion
	existing.PropietarioID = dto.PropietarioID
	existing.InquilinoID = dto.InquilinoID

	if err := h.Repository.Actualizar(h.DB, existing); err != nil {
		http.Error(w, "Error al actualizar la propiedad", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(existing)
}

// Eliminar trata DELETE /api/properties/{id} (solo admin, vía RequireAdmin)
func (h *Handler) Eliminar(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if _, err := h.Repository.BuscarPorID(h.DB, uint(id)); err != nil {
		http.Error(w, "Propiedad no encontrada", http.StatusNotFound)
		return
	}
	if err := h.Repository.Eliminar(h.DB, uint(id)); err != nil {
		http.Error(w, "Error al eliminar la propiedad", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
