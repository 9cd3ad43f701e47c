package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/inmoportal/api-portal/internal/permisos"
)

type Claims struct {
	UsuarioID uint         `json:"usuarioId"`
	Rol       permisos.Rol `json:"rol"`
	jwt.RegisteredClaims
}

func secreto() ([]byte, error) {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		return nil, fmt.Errorf("JWT_SECRET no definida")
	}
	return []byte(s), nil
}

// GenerarToken emite un JWT HS256 con validez de 24h.
func GenerarToken(usuarioID uint, rol permisos.Rol) (string, error) {
	key, err := secreto()
	if err != nil {
		return "", err
	}
	claims := &Claims{
		UsuarioID: usuarioID,
		Rol:       rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidarToken valida el token y devuelve las claims.
func ValidarToken(tokenStr string) (*Claims, error) {
	key, err := secreto()
	if err != nil {
		return nil, err
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token inválido o expirado: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("no fue posible extraer las claims")
	}
	return claims, nil
}
