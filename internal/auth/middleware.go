package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/inmoportal/api-portal/internal/permisos"
	"gorm.io/gorm"
)

type ctxKey string

const (
	CtxUsuarioID ctxKey = "usuarioID"
	CtxRol       ctxKey = "rol"
)

// ActorDesdeContexto arma el actor autenticado a partir del contexto del
// request. El segundo valor es false si el middleware no corrió.
func ActorDesdeContexto(r *http.Request) (permisos.Actor, bool) {
	id, ok := r.Context().Value(CtxUsuarioID).(uint)
	if !ok {
		return permisos.Actor{}, false
	}
	rol, ok := r.Context().Value(CtxRol).(permisos.Rol)
	if !ok {
		return permisos.Actor{}, false
	}
	return permisos.Actor{ID: id, Rol: rol}, true
}

// MiddlewareAutenticacion valida el Bearer token, verifica que la cuenta
// exista y esté aprobada (los admins pasan siempre) y deja id y rol en el
// contexto. El rol se relee de la base, no del token, para que una
// degradación de rol surta efecto sin esperar la expiración.
func MiddlewareAutenticacion(db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			h := r.Header.Get("Authorization")
			if h == "" || !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "Token ausente", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(h, "Bearer ")
			claims, err := ValidarToken(raw)
			if err != nil {
				http.Error(w, "Token inválido", http.StatusUnauthorized)
				return
			}

			var cuenta struct {
				Rol    permisos.Rol
				Estado string
			}
			res := db.Table("usuarios").
				Select("rol", "estado").
				Where("id = ?", claims.UsuarioID).
				Scan(&cuenta)
			if res.Error != nil || res.RowsAffected == 0 {
				http.Error(w, "Usuario no encontrado", http.StatusUnauthorized)
				return
			}
			if cuenta.Estado != "APPROVED" && cuenta.Rol != permisos.RolAdmin {
				http.Error(w, "Cuenta pendiente de aprobación", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUsuarioID, claims.UsuarioID)
			ctx = context.WithValue(ctx, CtxRol, cuenta.Rol)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rol, _ := r.Context().Value(CtxRol).(permisos.Rol)
		if rol != permisos.RolAdmin {
			http.Error(w, "Solo administradores", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
