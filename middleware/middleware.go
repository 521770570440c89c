package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"parkwatch/globals"
	"parkwatch/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

const tokenTTL = 12 * time.Hour

// JWT claims
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWT signs and verifies HS256 session tokens.
type JWT struct {
	secret []byte
	now    func() time.Time
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

func (j *JWT) Issue(email string) (string, error) {
	now := j.now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Validate parses an "Authorization: Bearer <token>" header value.
func (j *JWT) Validate(header string) (*Claims, error) {
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return nil, fmt.Errorf("invalid token format")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	if !token.Valid || claims.Email == "" {
		return nil, fmt.Errorf("unauthorized: invalid claims")
	}
	return claims, nil
}

func (j *JWT) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if header == "" {
			utils.RespondWithMessage(w, http.StatusUnauthorized, "Missing token")
			return
		}

		claims, err := j.Validate(header)
		if err != nil {
			utils.RespondWithMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserEmailKey, claims.Email)
		next(w, r.WithContext(ctx), ps)
	}
}

// EmailFromContext returns the authenticated email set by Authenticate.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(globals.UserEmailKey).(string)
	return email, ok && email != ""
}
