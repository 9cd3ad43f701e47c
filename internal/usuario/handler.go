package usuario

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/inmoportal/api-portal/internal/auth"
	"github.com/inmoportal/api-portal/internal/permisos"
	"github.com/inmoportal/api-portal/internal/utils"
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

type registroDTO struct {
	Nombre     string `json:"name"`
	Email      string `json:"email"`
	Contrasena string `json:"password"`
	Telefono   string `json:"phone"`
	Rol        string `json:"role"`
}

type loginDTO struct {
	Email      string `json:"email"`
	Contrasena string `json:"password"`
}

// Registrar trata POST /api/auth/register. Las cuentas nuevas quedan
// pendientes hasta que un admin las apruebe; nadie se registra como admin.
func (h *Handler) Registrar(w http.ResponseWriter, r *http.Request) {
	var dto registroDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(dto.Nombre) == "" || strings.TrimSpace(dto.Email) == "" || dto.Contrasena == "" {
		http.Error(w, "Nombre, email y contraseña son obligatorios", http.StatusBadRequest)
		return
	}

	rol := permisos.Rol(dto.Rol)
	if rol != permisos.RolPropietario && rol != permisos.RolInquilino {
		rol = permisos.RolInquilino
	}

	hash, err := utils.HashContrasena(dto.Contrasena)
	if err != nil {
		http.Error(w, "Error al procesar la contraseña", http.StatusInternalServerError)
		return
	}

	u := Usuario{
		Nombre:     dto.Nombre,
		Email:      strings.ToLower(strings.TrimSpace(dto.Email)),
		Contrasena: hash,
		Telefono:   dto.Telefono,
		Rol:        rol,
		Estado:     EstadoPendiente,
	}
	if err := h.Repository.Salvar(h.DB, &u); err != nil {
		http.Error(w, "El email ya está registrado", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(u)
}

// Login trata POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto loginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	u, err := h.Repository.BuscarPorEmail(h.DB, strings.ToLower(strings.TrimSpace(dto.Email)))
	if err != nil {
		http.Error(w, "Credenciales inválidas", http.StatusUnauthorized)
		return
	}
	if !utils.VerificarContrasena(u.Contrasena, dto.Contrasena) {
		http.Error(w, "Credenciales inválidas", http.StatusUnauthorized)
		return
	}
	if u.Estado != EstadoAprobado && u.Rol != permisos.RolAdmin {
		http.Error(w, "Cuenta pendiente de aprobación", http.StatusForbidden)
		return
	}

	token, err := auth.GenerarToken(u.ID, u.Rol)
	if err != nil {
		http.Error(w, "Error al generar el token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user":  u,
	})
}

// Listar trata GET /api/admin/usuarios (solo admin, vía RequireAdmin)
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.Listar(h.DB)
	if err != nil {
		http.Error(w, "Error al listar usuarios", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Aprobar trata PUT /api/admin/usuarios/{id}/aprobar (solo admin)
func (h *Handler) Aprobar(w http.ResponseWriter, r *http.Request) {
	h.cambiarEstado(w, r, EstadoAprobado)
}

// Rechazar trata PUT /api/admin/usuarios/{id}/rechazar (solo admin)
func (h *Handler) Rechazar(w http.ResponseWriter, r *http.Request) {
	h.cambiarEstado(w, r, EstadoRechazado)
}

func (h *Handler) cambiarEstado(w http.ResponseWriter, r *http.Request, estado string) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	u, err := h.Repository.BuscarPorID(h.DB, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Usuario no encontrado", http.StatusNotFound)
			return
		}
		http.Error(w, "Error al buscar el usuario", http.StatusInternalServerError)
		return
	}

	if err := h.Repository.ActualizarEstado(h.DB, u.ID, estado); err != nil {
		http.Error(w, "Error al actualizar el usuario", http.StatusInternalServerError)
		return
	}
	u.Estado = estado

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// Perfil trata GET /api/profile
func (h *Handler) Perfil(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	u, err := h.Repository.BuscarPorID(h.DB, actor.ID)
	if err != nil {
		http.Error(w, "Usuario no encontrado", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

type perfilDTO struct {
	Nombre   *string `json:"name"`
	Telefono *string `json:"phone"`
	Avatar   *string `json:"avatar"`
}

// ActualizarPerfil trata PUT /api/profile
func (h *Handler) ActualizarPerfil(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorDesdeContexto(r)
	if !ok {
		http.Error(w, "No autenticado", http.StatusUnauthorized)
		return
	}

	u, err := h.Repository.BuscarPorID(h.DB, actor.ID)
	if err != nil {
		http.Error(w, "Usuario no encontrado", http.StatusNotFound)
		return
	}

	var dto perfilDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}
	if dto.Nombre != nil && strings.TrimSpace(*dto.Nombre) != "" {
		u.Nombre = *dto.Nombre
	}
	if dto.Telefono != nil {
		u.Telefono = *dto.Telefono
	}
	if dto.Avatar != nil {
		u.Avatar = *dto.Avatar
	}

	if err := h.Repository.Actualizar(h.DB, u); err != nil {
		http.Error(w, "Error al actualizar el perfil", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}
