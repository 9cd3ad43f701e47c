package documentacion

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

type crearDocumentacionDTO struct {
	Titulo      string `json:"title"`
	PropiedadID uint   `json:"propertyId"`
	ArchivoURL  string `json:"fileUrl"`
	ContentType string `json:"contentType"`
}

// Crear trata POST /api/documentation. El archivo ya fue almacenado
// aguas arriba; aquí llegan la URL y el content type declarado.
func (h *Handler) Crear(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	var dto crearDocumentacionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(dto.Titulo) == "" || dto.PropiedadID == 0 || strings.TrimSpace(dto.ArchivoURL) == "" {
		http.Error(w, "Título, propiedad y archivo son obligatorios", http.StatusBadRequest)
		return
	}

	prop, err := h.Propiedades.BuscarPorID(h.DB, dto.PropiedadID)
	if err != nil {
		http.Error(w, "Propiedad no encontrada", http.StatusNotFound)
		return
	}

	if err := permisos.AccesoDocumentacion(actor, prop.PropietarioID, prop.InquilinoID); err != nil {
		http.Error(w, "No puedes subir documentación para esta propiedad", http.StatusForbidden)
		return
	}

	d := Documentacion{
		Titulo:      dto.Titulo,
		ArchivoURL:  dto.ArchivoURL,
		TipoArchivo: ClasificarArchivo(dto.ContentType),
		PropiedadID: dto.PropiedadID,
		SubidoPorID: actor.ID,
	}
	if err := h.Repository.Salvar(h.DB, &d); err != nil {
		http.Error(w, "Error al guardar la documentación", http.StatusInternalServerError)
		return
	}
	d.Propiedad = *prop

	h.notificarSubida(&d, prop)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(d)
}

// Listar trata GET /api/documentation
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
	f := Filtros{TipoArchivo: q.Get("fileType"), Page: 1, Limit: 10}
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

	list, total, err := h.Repository.Listar(h.DB, actor, f)
	if err != nil {
		http.Error(w, "Error al listar documentación", http.StatusInternalServerError)
		return
	}

	pages := int(total) / f.Limit
	if int(total)%f.Limit != 0 {
		pages++
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"docs": list,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  f.Page,
			"limit": f.Limit,
			"pages": pages,
		},
	})
}

// Eliminar trata DELETE /api/documentation/{id}. Admin o quien subió.
func (h *Handler) Eliminar(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]

	d, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		http.Error(w, "Documentación no encontrada", http.StatusNotFound)
		return
	}
	if actor.Rol != permisos.RolAdmin && d.SubidoPorID != actor.ID {
		http.Error(w, "Acceso denegado", http.StatusForbidden)
		return
	}

	if err := h.Repository.Eliminar(h.DB, id); err != nil {
		http.Error(w, "Error al eliminar la documentación", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// notificarSubida avisa al dueño y a todos los admins, excluyendo a
// quien subió el documento.
func (h *Handler) notificarSubida(d *Documentacion, prop *propiedad.Propiedad) {
	var destinos []uint
	if prop.PropietarioID != nil && *prop.PropietarioID != d.SubidoPorID {
		destinos = append(destinos, *prop.PropietarioID)
	}
	admins, err := h.Usuarios.ListarAdmins(h.DB)
	if err == nil {
		for _, a := range admins {
			if a.ID != d.SubidoPorID {
				destinos = append(destinos, a.ID)
			}
		}
	}

	h.Notificador.Notificar(destinos, notificacion.Evento{
		Tipo:   notificacion.TipoDocumentacionSubida,
		Titulo: "Nueva Documentación",
		Mensaje: fmt.Sprintf("Se ha subido un nuevo documento para %s: %s",
			prop.Titulo, d.Titulo),
		RelacionadoID:   d.ID,
		TipoRelacionado: notificacion.RelacionDocumentacion,
	})
}
