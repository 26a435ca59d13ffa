package server

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Session 令牌中携带的会话信息
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenIssuer HS256 会话令牌的签发与校验
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl %v: must be positive", ttl)
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue 为显示名签发新会话
func (t *TokenIssuer) Issue(name string) (string, Session, error) {
	s := Session{
		ID:        uuid.NewString(),
		Name:      name,
		ExpiresAt: t.now().Add(t.ttl).Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti":  s.ID,
		"name": s.Name,
		"iat":  t.now().Unix(),
		"exp":  s.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", Session{}, err
	}
	return signed, s, nil
}

// Verify 校验签名、算法与过期时间
func (t *TokenIssuer) Verify(raw string) (Session, error) {
	if raw == "" {
		return Session{}, ErrTokenInvalid
	}
	token, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return Session{}, ErrTokenExpired
		}
		return Session{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Session{}, ErrTokenInvalid
	}
	id, _ := claims["jti"].(string)
	name, _ := claims["name"].(string)
	exp, _ := claims["exp"].(float64)
	if id == "" || name == "" {
		return Session{}, fmt.Errorf("%w: missing claims", ErrTokenInvalid)
	}
	return Session{ID: id, Name: name, ExpiresAt: time.Unix(int64(exp), 0)}, nil
}
