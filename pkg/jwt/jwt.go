// Package jwt firma y valida los tokens de sesión (HS256).
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret sin secreto no se firma ni se valida nada.
var ErrEmptySecret = errors.New("jwt: secret vacío")

// Identity lo que el token dice del usuario. El rol viaja en el token para que
// RequireRole decida sin leer la base.
type Identity struct {
	UserID   string
	Username string
	Role     string // admin | editor | viewer
}

type claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Signer emite tokens con un emisor y una vida fijos.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner construye el firmador; ttl es la vida de cada token.
func NewSigner(secret, issuer string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Sign emite el token de id. El ID de usuario va en el claim estándar sub.
func (s *Signer) Sign(id Identity) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrEmptySecret
	}
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Username: id.Username,
		Role:     id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Parse valida firma, algoritmo y expiración (obligatoria) y devuelve la identidad.
// Un token vencido devuelve un error que cumple errors.Is(err, jwt.ErrTokenExpired).
func Parse(secret, token string) (Identity, error) {
	if secret == "" {
		return Identity{}, ErrEmptySecret
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: c.Subject, Username: c.Username, Role: c.Role}, nil
}
