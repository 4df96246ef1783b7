package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sternwerk/internal/credentials"
	"sternwerk/internal/models"
	"sternwerk/internal/repository"
)

var (
	ErrPairingCodeInvalid = errors.New("pairing code invalid or expired")
	ErrTokenInvalid       = errors.New("device token invalid")
)

// deviceClaims is the JWT payload carried by a paired child device
type deviceClaims struct {
	ChildID string `json:"childId"`
	jwt.RegisteredClaims
}

// ChildAuthService pairs child devices with a profile. A parent requests a
// short-lived readable code, the child app exchanges it once for a long-lived
// signed token scoped to that child.
type ChildAuthService struct {
	pairingRepo   *repository.PairingRepository
	childRepo     *repository.ChildRepository
	tokenSecret   []byte
	tokenDuration time.Duration
	codeTTL       time.Duration
}

// NewChildAuthService creates a new child auth service
func NewChildAuthService(pairingRepo *repository.PairingRepository, childRepo *repository.ChildRepository, tokenSecret string, tokenDuration, codeTTL time.Duration) *ChildAuthService {
	return &ChildAuthService{
		pairingRepo:   pairingRepo,
		childRepo:     childRepo,
		tokenSecret:   []byte(tokenSecret),
		tokenDuration: tokenDuration,
		codeTTL:       codeTTL,
	}
}

// IssuePairingCode creates a fresh pairing code for one child
func (s *ChildAuthService) IssuePairingCode(childID string) (*models.PairingCode, error) {
	child, err := s.childRepo.GetByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	code, err := credentials.GeneratePairingCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pairing code: %w", err)
	}

	now := time.Now()
	pairing := &models.PairingCode{
		Code:      code,
		ChildID:   childID,
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}
	if err := s.pairingRepo.Create(pairing); err != nil {
		return nil, fmt.Errorf("failed to store pairing code: %w", err)
	}
	return pairing, nil
}

// ExchangePairingCode trades a valid code for a device token. Codes are
// single-use; a successful exchange consumes the code.
func (s *ChildAuthService) ExchangePairingCode(code string) (string, *models.Child, error) {
	pairing, err := s.pairingRepo.Get(code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load pairing code: %w", err)
	}
	if pairing == nil || pairing.IsExpired() {
		return "", nil, ErrPairingCodeInvalid
	}

	child, err := s.childRepo.GetByID(pairing.ChildID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return "", nil, ErrPairingCodeInvalid
	}

	if err := s.pairingRepo.Delete(code); err != nil {
		return "", nil, fmt.Errorf("failed to consume pairing code: %w", err)
	}

	token, err := s.issueToken(child.ID)
	if err != nil {
		return "", nil, err
	}
	return token, child, nil
}

// issueToken signs a device token scoped to one child
func (s *ChildAuthService) issueToken(childID string) (string, error) {
	now := time.Now()
	claims := deviceClaims{
		ChildID: childID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   childID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.tokenSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign device token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies a device token and returns the child ID it is
// scoped to
func (s *ChildAuthService) ValidateToken(tokenString string) (string, error) {
	claims := &deviceClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.tokenSecret, nil
	})
	if err != nil || !token.Valid || claims.ChildID == "" {
		return "", ErrTokenInvalid
	}
	return claims.ChildID, nil
}

// CleanupExpiredCodes removes pairing codes whose window has passed
func (s *ChildAuthService) CleanupExpiredCodes() error {
	if err := s.pairingRepo.DeleteExpired(); err != nil {
		return fmt.Errorf("failed to cleanup pairing codes: %w", err)
	}
	return nil
}
