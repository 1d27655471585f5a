package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/pagemark/pagemark-server/internal/domain"
	"github.com/pagemark/pagemark-server/internal/id"
)

const (
	tokenIssuer   = "pagemark-server"
	tokenAudience = "pagemark-client"
)

var (
	// ErrInvalidToken is returned for tokens that fail decryption or claim rules.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	// Clients react to it by logging in again.
	ErrTokenExpired = errors.New("token expired")
)

// TokenService issues and verifies PASETO v4.local access tokens.
type TokenService struct {
	key            paseto.V4SymmetricKey
	accessDuration time.Duration
	now            func() time.Time
}

// NewTokenService creates a token service from a 32-byte symmetric key.
func NewTokenService(key []byte, accessDuration time.Duration) (*TokenService, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("token key must be %d bytes, got %d", KeySize, len(key))
	}
	if accessDuration <= 0 {
		return nil, errors.New("access token duration must be positive")
	}

	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create symmetric key: %w", err)
	}

	return &TokenService{
		key:            symmetric,
		accessDuration: accessDuration,
		now:            time.Now,
	}, nil
}

// GenerateAccessToken returns an encrypted token for user and its expiry.
func (s *TokenService) GenerateAccessToken(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.accessDuration)

	tokenID, err := id.Generate("tok")
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token id: %w", err)
	}

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(user.ID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)
	token.SetJti(tokenID)
	//nolint:errcheck // Set only fails for unmarshalable values
	_ = token.Set("user_id", user.ID)
	//nolint:errcheck // Set only fails for unmarshalable values
	_ = token.Set("email", user.Email)

	return token.V4Encrypt(s.key, nil), expires, nil
}

// VerifyAccessToken decrypts tokenString and checks issuer, audience and
// validity window. An expired token yields ErrTokenExpired rather than
// ErrInvalidToken.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if err := s.checkValidity(token); err != nil {
		return nil, err
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return &claims, nil
}

// checkValidity applies the time claims against the service clock.
func (s *TokenService) checkValidity(token *paseto.Token) error {
	now := s.now()

	expires, err := token.GetExpiration()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !now.Before(expires) {
		return ErrTokenExpired
	}

	notBefore, err := token.GetNotBefore()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if now.Before(notBefore) || now.Before(issuedAt) {
		return fmt.Errorf("%w: not yet valid", ErrInvalidToken)
	}
	return nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessDuration
}
