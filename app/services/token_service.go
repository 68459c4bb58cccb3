// Package services provides technical concerns used by the business flows: tokens, captcha, throttling, session attribution and media storage
package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/dental-clinic/utils"
	"github.com/golang-jwt/jwt/v5"
)

// Token service error constants
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Token audiences. Admin and CRM tokens are signed with different secrets,
// so a token of one kind never validates as the other.
const (
	AudienceAdmin = "admin"
	AudienceCRM   = "crm"
)

// TokenService handles JWT generation and validation for admins and CRM users
type TokenService interface {
	GenerateAdminToken(adminID uint) (token string, expiresAt time.Time, err error)
	ValidateAdminToken(token string) (*AdminTokenClaims, error)
	GenerateCRMToken(crmUserID uint) (token string, expiresAt time.Time, err error)
	ValidateCRMToken(token string) (*CRMTokenClaims, error)
	TTL() time.Duration
}

// AdminTokenClaims represents claims for admin JWTs
type AdminTokenClaims struct {
	AdminID   uint      `json:"admin_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenID   string    `json:"jti"`
}

// CRMTokenClaims represents claims for CRM JWTs
type CRMTokenClaims struct {
	CRMUserID uint      `json:"crm_user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenID   string    `json:"jti"`
}

// TokenServiceImpl implements TokenService with HS256
type TokenServiceImpl struct {
	accessTokenTTL time.Duration
	signingMethod  jwt.SigningMethod
	adminSecret    []byte
	crmSecret      []byte
	issuer         string
	now            func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(accessTokenTTL time.Duration, issuer, adminSecret, crmSecret string) (TokenService, error) {
	if adminSecret == "" {
		return nil, fmt.Errorf("admin secret key is required")
	}
	if crmSecret == "" {
		return nil, fmt.Errorf("crm secret key is required")
	}
	if adminSecret == crmSecret {
		return nil, fmt.Errorf("admin and crm secret keys must differ")
	}
	if accessTokenTTL <= 0 {
		accessTokenTTL = utils.AccessTokenTTL
	}

	return &TokenServiceImpl{
		accessTokenTTL: accessTokenTTL,
		signingMethod:  jwt.SigningMethodHS256,
		adminSecret:    []byte(adminSecret),
		crmSecret:      []byte(crmSecret),
		issuer:         issuer,
		now:            utils.UTCNow,
	}, nil
}

func (s *TokenServiceImpl) TTL() time.Duration {
	return s.accessTokenTTL
}

// GenerateAdminToken issues an access token for an admin
func (s *TokenServiceImpl) GenerateAdminToken(adminID uint) (string, time.Time, error) {
	return s.issue("admin_id", adminID, AudienceAdmin, s.adminSecret)
}

// GenerateCRMToken issues an access token for a CRM user
func (s *TokenServiceImpl) GenerateCRMToken(crmUserID uint) (string, time.Time, error) {
	return s.issue("crm_user_id", crmUserID, AudienceCRM, s.crmSecret)
}

// ValidateAdminToken validates an admin JWT and returns admin-specific claims
func (s *TokenServiceImpl) ValidateAdminToken(token string) (*AdminTokenClaims, error) {
	id, iat, exp, jti, err := s.parse(token, "admin_id", AudienceAdmin, s.adminSecret)
	if err != nil {
		return nil, err
	}
	return &AdminTokenClaims{AdminID: id, IssuedAt: iat, ExpiresAt: exp, TokenID: jti}, nil
}

// ValidateCRMToken validates a CRM JWT and returns CRM-specific claims
func (s *TokenServiceImpl) ValidateCRMToken(token string) (*CRMTokenClaims, error) {
	id, iat, exp, jti, err := s.parse(token, "crm_user_id", AudienceCRM, s.crmSecret)
	if err != nil {
		return nil, err
	}
	return &CRMTokenClaims{CRMUserID: id, IssuedAt: iat, ExpiresAt: exp, TokenID: jti}, nil
}

func (s *TokenServiceImpl) issue(subjectClaim string, subjectID uint, audience string, key []byte) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTokenTTL)

	tokenID, err := generateTokenID()
	if err != nil {
		return "", time.Time{}, err
	}

	claims := jwt.MapClaims{
		subjectClaim: subjectID,
		"token_type": "access",
		"jti":        tokenID,
		"iat":        now.Unix(),
		"exp":        expiresAt.Unix(),
		"iss":        s.issuer,
		"aud":        audience,
	}

	signed, err := jwt.NewWithClaims(s.signingMethod, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, time.Unix(expiresAt.Unix(), 0).UTC(), nil
}

func (s *TokenServiceImpl) parse(token, subjectClaim, audience string, key []byte) (uint, time.Time, time.Time, string, error) {
	var zero time.Time

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	},
		jwt.WithAudience(audience),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, zero, zero, "", ErrTokenExpired
		}
		return 0, zero, zero, "", ErrTokenInvalid
	}
	if !parsedToken.Valid {
		return 0, zero, zero, "", ErrTokenInvalid
	}
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return 0, zero, zero, "", ErrTokenInvalid
	}

	subjectID, ok := claims[subjectClaim].(float64)
	if !ok || subjectID <= 0 {
		return 0, zero, zero, "", ErrTokenInvalid
	}
	tokenType, ok := claims["token_type"].(string)
	if !ok || tokenType != "access" {
		return 0, zero, zero, "", ErrTokenInvalid
	}
	tokenID, ok := claims["jti"].(string)
	if !ok {
		return 0, zero, zero, "", ErrTokenInvalid
	}
	issuedAt, ok := claims["iat"].(float64)
	if !ok {
		return 0, zero, zero, "", ErrTokenInvalid
	}
	expiresAt, ok := claims["exp"].(float64)
	if !ok {
		return 0, zero, zero, "", ErrTokenInvalid
	}

	return uint(subjectID), time.Unix(int64(issuedAt), 0).UTC(), time.Unix(int64(expiresAt), 0).UTC(), tokenID, nil
}

// generateTokenID generates a unique token ID
func generateTokenID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", bytes), nil
}
