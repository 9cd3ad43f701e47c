package auth

import (
	"testing"

	"github.com/inmoportal/api-portal/internal/permisos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerarYValidarToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-prueba")

	token, err := GenerarToken(42, permisos.RolPropietario)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidarToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UsuarioID)
	assert.Equal(t, permisos.RolPropietario, claims.Rol)
}

func TestValidarTokenConOtraClaveFalla(t *testing.T) {
	t.Setenv("JWT_SECRET", "clave-a")
	token, err := GenerarToken(1, permisos.RolAdmin)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "clave-b")
	_, err = ValidarToken(token)
	assert.Error(t, err)
}

func TestValidarTokenBasura(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-prueba")
	_, err := ValidarToken("no.es.un.token")
	assert.Error(t, err)
}

func TestSinSecretoFalla(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := GenerarToken(1, permisos.RolAdmin)
	assert.Error(t, err)
}
