package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller of a request.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (i Identity) IsRecruiter() bool {
	return i.Role == RoleRecruiter
}

// Owns reports whether the identity may act on a record addressed to email.
// Recruiters act on every candidate's records.
func (i Identity) Owns(email string) bool {
	if i.IsRecruiter() {
		return true
	}
	return i.Email != "" && strings.EqualFold(strings.TrimSpace(email), i.Email)
}

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Sign issues an HS256 token for identity valid for ttl.
func Sign(secret, issuer string, identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse validates an HS256 token and returns its identity.
func Parse(secret, issuer, token string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("%w: signing secret not configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return Identity{}, fmt.Errorf("%w: email claim missing", ErrInvalidToken)
	}
	role := claims.Role
	if role != RoleRecruiter {
		role = RoleCandidate
	}
	return Identity{Email: email, Name: claims.Name, Role: role}, nil
}
