package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

const (
	// Время жизни токена агента по умолчанию - 60 минут
	DefaultTokenTTL = 60 * time.Minute

	// Секрет по умолчанию, если JWT_SECRET не задан
	DefaultSecret = "default-jwt-secret-for-calculator-app"
)

// Claims - данные токена агента
type Claims struct {
	AgentID string `json:"agent_id"`
	jwt.StandardClaims
}

// Signer выпускает и проверяет токены агентов
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	if secret == "" {
		secret = DefaultSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken выпускает токен для агента agentID
func (s *Signer) GenerateToken(agentID string) (string, error) {
	now := s.now()
	claims := &Claims{
		AgentID: agentID,
		StandardClaims: jwt.StandardClaims{
			Subject:   agentID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// ValidateToken проверяет и извлекает данные из JWT токена
func (s *Signer) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		// Проверяем, не истек ли срок действия токена
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.AgentID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
