package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"schooldir/internal/domain"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// TokenService emite y valida el token de sesión que viaja en la cookie.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	store  SessionStore
}

type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func NewTokenService(secret string, ttl time.Duration, store SessionStore) *TokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if store == nil {
		store = NewMemorySessionStore()
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "schooldir",
		store:  store,
	}
}

// TTL devuelve la vigencia configurada; los handlers la usan para la cookie.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue firma un token HS256 con expiración embebida y registra su jti.
func (s *TokenService) Issue(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	now := time.Now().UTC()
	jti := uuid.NewString()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	if err := s.store.Store(jti, user.ID, s.ttl); err != nil {
		return "", err
	}
	return signed, nil
}

// Parse valida firma, expiración, emisor y que la sesión no esté revocada.
func (s *TokenService) Parse(tokenString string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenInvalid
	}

	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}

	ok, err := s.store.Exists(claims.ID)
	if err != nil || !ok {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// Revoke da de baja la sesión del token; un token ya inválido no es error.
func (s *TokenService) Revoke(tokenString string) error {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return err
	}
	return s.store.Revoke(claims.ID)
}

func (s *TokenService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	if strings.TrimSpace(claims.ID) == "" {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
