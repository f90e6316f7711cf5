package services

import (
	"fmt"
	"time"

	"ebanking/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims данные, которые кладутся в JWT оператора
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService выдает и проверяет JWT для оператора, заданного в конфигурации
type AuthService struct {
	username     string
	passwordHash []byte
	secret       []byte
	expiresIn    time.Duration
	now          func() time.Time
}

// NewAuthService создает новый экземпляр AuthService
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		username:     cfg.Auth.Username,
		passwordHash: []byte(cfg.Auth.PasswordHash),
		secret:       []byte(cfg.JWT.SecretKey),
		expiresIn:    time.Duration(cfg.JWT.ExpiresIn) * time.Hour,
		now:          time.Now,
	}
}

// SignIn проверяет учетные данные и возвращает подписанный токен
func (s *AuthService) SignIn(username, password string) (string, error) {
	if username != s.username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия токена
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
