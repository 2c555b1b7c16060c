package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tokens signs and verifies HS256 bearer tokens. Every token carries a jti
// that must match a live session row.
type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{key: []byte(secret), ttl: ttl, now: time.Now}
}

type Issued struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

func (t *Tokens) Sign(userID string, roles []string) (Issued, error) {
	if len(t.key) == 0 {
		return Issued{}, errors.New("jwt secret is empty")
	}
	now := t.now()
	exp := now.Add(t.ttl)
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"sub":   userID,
		"roles": roles,
		"jti":   jti,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(t.key)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: s, JTI: jti, ExpiresAt: exp}, nil
}

func (t *Tokens) Verify(tokenStr string) (Claims, error) {
	tok, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(t.now))
	if err != nil || !tok.Valid {
		return Claims{}, errors.New("invalid token")
	}
	mapc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims")
	}
	sub, _ := mapc["sub"].(string)
	jti, _ := mapc["jti"].(string)
	var roles []string
	if arr, ok := mapc["roles"].([]interface{}); ok {
		for _, v := range arr {
			if s, ok := v.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	return Claims{Subject: sub, Roles: roles, JWTID: jti}, nil
}
