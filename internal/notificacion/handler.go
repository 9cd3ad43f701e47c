package notificacion

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/inmoportal/api-portal/internal/auth"
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

type paginacionDTO struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// Listar trata GET /api/notifications?page=&limit=&unreadOnly=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	soloNoLeidas := r.URL.Query().Get("unreadOnly") == "true"

	list, total, err := h.Repository.ListarPorUsuario(h.DB, actor.ID, page, limit, soloNoLeidas)
	if err != nil {
		http.Error(w, "Error al listar notificaciones", http.StatusInternalServerError)
		return
	}

	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"notifications": list,
		"pagination": paginacionDTO{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: pages,
		},
	})
}

// ContarNoLeidas trata GET /api/notifications/unread-count
func (h *Handler) ContarNoLeidas(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	count, err := h.Repository.ContarNoLeidas(h.DB, actor.ID)
	if err != nil {
		http.Error(w, "Error al contar notificaciones", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int64{"count": count})
}

// MarcarLeida trata PUT /api/notifications/{id}/read
func (h *Handler) MarcarLeida(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}
	id := mux.Vars(r)["id"]

	n, err := h.Repository.BuscarPorID(h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Notificación no encontrada", http.StatusNotFound)
			return
		}
		http.Error(w, "Error al buscar la notificación", http.StatusInternalServerError)
		return
	}
	if n.UsuarioID != actor.ID {
		http.Error(w, "Acceso denegado", http.StatusForbidden)
		return
	}

	if err := h.Repository.MarcarLeida(h.DB, id); err != nil {
		http.Error(w, "Error al marcar la notificación", http.StatusInternalServerError)
		return
	}
	n.Leida = true

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(n)
}

// MarcarTodasLeidas trata PUT /api/notifications/read-all. Idempotente.
func (h *Handler) MarcarTodasLeidas(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	if err := h.Repository.MarcarTodasLeidas(h.DB, actor.ID); err != nil {
		http.Error(w, "Error al marcar las notificaciones", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Todas las notificaciones marcadas como leídas"})
}
