package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Alcances de credencial. Una credencial de tienda no sirve para el área admin y viceversa.
const (
	ScopeStore = "store"
	ScopeAdmin = "admin"
)

// Claims incluye los claims estándar JWT más los campos propios de la sesión.
// RegisteredClaims.ID identifica el token para poder revocarlo en logout/refresh.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`
	StoreID string `json:"store_id,omitempty"`
	Role    string `json:"role"`
	Scope   string `json:"scope"`
}

// Subject datos del usuario que van dentro del token.
type Subject struct {
	UserID  string
	StoreID string
	Role    string
	Scope   string
}

// Generate genera un token JWT firmado para sub. Devuelve el token y su id.
func Generate(secret string, sub Subject, issuer string, expMinutes int) (string, string, error) {
	if secret == "" {
		return "", "", fmt.Errorf("jwt: secret vacío")
	}
	if sub.Scope != ScopeStore && sub.Scope != ScopeAdmin {
		return "", "", fmt.Errorf("jwt: alcance desconocido %q", sub.Scope)
	}
	now := time.Now()
	id := uuid.NewString()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    issuer,
			Subject:   sub.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:  sub.UserID,
		StoreID: sub.StoreID,
		Role:    sub.Role,
		Scope:   sub.Scope,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}
	return signed, id, nil
}

// Parse valida el token y exige el alcance indicado.
// Retorna error si el token es inválido, expirado, tiene firma incorrecta u otro alcance.
func Parse(secret, tokenString, scope string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.Scope != scope {
		return nil, fmt.Errorf("jwt: alcance %q, se esperaba %q", claims.Scope, scope)
	}
	return claims, nil
}
