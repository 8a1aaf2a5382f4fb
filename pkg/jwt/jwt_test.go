package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/inventario-moda/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", "STORE-07", "store", "inventario-moda-test", 60)
	require.NoError(t, err)

	userID, location, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "STORE-07", location)
	assert.Equal(t, "store", role)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", "HQ", "manager", "x", -1)
	require.NoError(t, err)
	_, _, _, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", "HQ", "manager", "x", 60)
	require.NoError(t, err)
	_, _, _, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err)
}

// Sin usuario no hay actor para auditar: el token se rechaza.
func TestParse_SinUsuario(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "", "HQ", "manager", "x", 60)
	require.NoError(t, err)
	_, _, _, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u-1", "HQ", "manager", "x", 60)
	assert.Error(t, err)
}
