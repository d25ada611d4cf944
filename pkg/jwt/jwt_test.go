package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParse_IdaYVuelta(t *testing.T) {
	id := Identity{UserID: "u-1", Username: "editor.user", Role: "editor"}
	tok, err := NewSigner("secreto", "farmacia-stock", 5*time.Minute).Sign(id)
	require.NoError(t, err)

	got, err := Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := NewSigner("secreto", "farmacia-stock", time.Minute).Sign(Identity{UserID: "u-1", Role: "viewer"})
	require.NoError(t, err)

	expired := NewSigner("secreto", "farmacia-stock", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Sign(Identity{UserID: "u-1", Role: "viewer"})
	require.NoError(t, err)

	// HS512 con el mismo secreto: la firma es válida pero el algoritmo no es el admitido.
	other, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "u-1", ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "admin",
	}).SignedString([]byte("secreto"))
	require.NoError(t, err)

	// Sin exp.
	noExp, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "u-1"},
		Role:             "admin",
	}).SignedString([]byte("secreto"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
		is     error
	}{
		{"firma con otro secreto", "otro", valid, gojwt.ErrTokenSignatureInvalid},
		{"vencido", "secreto", old, gojwt.ErrTokenExpired},
		{"algoritmo no admitido", "secreto", other, gojwt.ErrTokenSignatureInvalid},
		{"sin expiración", "secreto", noExp, gojwt.ErrTokenRequiredClaimMissing},
		{"secreto vacío", "", valid, ErrEmptySecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.secret, tt.token)
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestSign_SecretoVacio(t *testing.T) {
	_, err := NewSigner("", "x", time.Minute).Sign(Identity{UserID: "u"})
	assert.ErrorIs(t, err, ErrEmptySecret)
}
