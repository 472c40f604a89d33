package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/saasforge/authcore/config"
	"github.com/saasforge/authcore/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken     = errors.New("invalid JWT token")
	ErrExpiredToken     = errors.New("JWT token has expired")
	ErrMalformedToken   = errors.New("malformed JWT token")
	ErrInvalidSignature = errors.New("invalid JWT token signature")
	ErrTokenRevoked     = errors.New("JWT token has been revoked")
	ErrMissingKeys      = errors.New("JWT signing keys not configured")
)

type Claims struct {
	UserID   string   `json:"user_id"`
	TenantID string   `json:"tenant_id"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles,omitempty"`
	JTI      string   `json:"jti"`
	jwt.RegisteredClaims
}

// RevocationChecker reports whether a token id has been blacklisted.
type RevocationChecker interface {
	IsBlacklisted(jti string) (bool, error)
}

type Service struct {
	config     *config.Config
	logger     *logging.Service
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	revocation RevocationChecker
}

func NewService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	if cfg.JWT.PublicKeyPEM == "" {
		return nil, ErrMissingKeys
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWT.PublicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT public key: %w", err)
	}

	var privateKey *rsa.PrivateKey
	if cfg.JWT.PrivateKeyPEM != "" {
		privateKey, err = jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.JWT.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse JWT private key: %w", err)
		}
	}

	return &Service{
		config:     cfg,
		logger:     logger,
		privateKey: privateKey,
		publicKey:  publicKey,
	}, nil
}

func (s *Service) SetRevocationChecker(checker RevocationChecker) {
	s.revocation = checker
}

func (s *Service) GetAccessExpirySeconds() int {
	return int(s.config.JWT.AccessExpiry.Seconds())
}

// GenerateAccessToken issues an RS256-signed access token carrying the
// caller's identity claims and a random token id.
func (s *Service) GenerateAccessToken(userID, tenantID, email string, roles []string) (string, error) {
	if s.privateKey == nil {
		return "", ErrMissingKeys
	}

	now := time.Now()
	jti := uuid.New().String()
	claims := Claims{
		UserID:   userID,
		TenantID: tenantID,
		Email:    email,
		Roles:    roles,
		JTI:      jti,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.JWT.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.JWT.AccessExpiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tokenString, err := token.SignedString(s.privateKey)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sign access token", zap.Error(err))
		}
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies signature, temporal claims, and revocation status.
// Validation failures are deliberately indistinct beyond the sentinel errors
// here; handlers collapse them into a uniform denial.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() == "none" {
			return nil, errors.New("'none' algorithm is not allowed")
		}

		if token.Method.Alg() != "RS256" {
			return nil, fmt.Errorf("unexpected algorithm: expected RS256, got %s", token.Method.Alg())
		}

		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", token.Header["alg"])
		}

		return s.publicKey, nil
	})

	if err != nil {
		if s.logger != nil {
			s.logger.Warn("token validation failed", zap.Error(err))
		}

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if s.revocation != nil && claims.JTI != "" {
		revoked, err := s.revocation.IsBlacklisted(claims.JTI)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("failed to check token revocation status", zap.Error(err))
			}
			return nil, fmt.Errorf("revocation check failed: %w", err)
		}
		if revoked {
			if s.logger != nil {
				s.logger.Warn("token validation failed - token has been revoked",
					zap.String("jti", claims.JTI))
			}
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}
