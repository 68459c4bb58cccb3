package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/app/services"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"github.com/amirphl/dental-clinic/utils"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to passwords set by the seed and hash-password commands
const MinPasswordLength = 8

// HashPassword returns the bcrypt hash stored for admins and CRM users
func HashPassword(password string, cost int) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AdminAuthFlow authenticates content admins
type AdminAuthFlow interface {
	Captcha(ctx context.Context) (*dto.CaptchaChallengeResponse, error)
	Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	Me(ctx context.Context, adminID uint) (*dto.AdminDTO, error)
}

// AdminAuthFlowImpl implements AdminAuthFlow. A nil captcha service disables
// captcha checks; a nil throttle disables throttling.
type AdminAuthFlowImpl struct {
	adminRepo    repository.AdminRepository
	tokenService services.TokenService
	captchaSvc   services.CaptchaService
	throttle     services.LoginThrottle
	now          func() time.Time
	log          logger.Logger
}

func NewAdminAuthFlow(
	adminRepo repository.AdminRepository,
	tokenService services.TokenService,
	captchaSvc services.CaptchaService,
	throttle services.LoginThrottle,
	log logger.Logger,
) AdminAuthFlow {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminAuthFlowImpl{
		adminRepo:    adminRepo,
		tokenService: tokenService,
		captchaSvc:   captchaSvc,
		throttle:     throttle,
		now:          utils.UTCNow,
		log:          log.With("component", "admin_auth"),
	}
}

func (af *AdminAuthFlowImpl) Captcha(ctx context.Context) (*dto.CaptchaChallengeResponse, error) {
	if af.captchaSvc == nil {
		return nil, NewBusinessError("CAPTCHA_NOT_AVAILABLE", "captcha is disabled", ErrCaptchaUnavailable)
	}
	ch, err := af.captchaSvc.GenerateRotate(ctx)
	if err != nil {
		return nil, NewBusinessError("CAPTCHA_INIT_FAILED", "failed to initialize captcha", err)
	}
	return &dto.CaptchaChallengeResponse{
		ChallengeID:       ch.ID,
		MasterImageBase64: ch.MasterImageBase64,
		ThumbImageBase64:  ch.ThumbImageBase64,
		ExpiresAt:         formatTime(ch.ExpiresAt),
	}, nil
}

func (af *AdminAuthFlowImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "invalid email or password", ErrInvalidCredentials)
	}

	throttleKey := "admin:" + email
	if af.throttle != nil && !af.throttle.Allow(throttleKey) {
		af.log.Warn("admin login throttled", "email", email, "ip", metadata.ip())
		return nil, NewBusinessError("TOO_MANY_ATTEMPTS", "too many login attempts, try again later", ErrTooManyAttempts)
	}

	if af.captchaSvc != nil {
		if req.CaptchaID == nil || *req.CaptchaID == "" || req.CaptchaAngle == nil {
			return nil, NewBusinessError("CAPTCHA_REQUIRED", "captcha_id and captcha_angle are required", ErrCaptchaRequired)
		}
		if !af.captchaSvc.VerifyRotate(ctx, *req.CaptchaID, *req.CaptchaAngle) {
			return nil, NewBusinessError("CAPTCHA_INVALID", "captcha validation failed", ErrInvalidCaptcha)
		}
	}

	admin, err := af.adminRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "failed to lookup admin", err)
	}
	if admin == nil {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "invalid email or password", ErrAdminNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "invalid email or password", ErrIncorrectPassword)
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, NewBusinessError("ADMIN_INACTIVE", "admin account is inactive", ErrAdminInactive)
	}

	token, expiresAt, err := af.tokenService.GenerateAdminToken(admin.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "failed to generate token", err)
	}

	if af.throttle != nil {
		af.throttle.Reset(throttleKey)
	}
	now := af.now()
	if err := af.adminRepo.UpdateLastLogin(detach(ctx), admin.ID, now); err != nil {
		af.log.Error("failed to stamp admin last login", "admin_id", admin.ID, "error", err)
	} else {
		admin.LastLoginAt = &now
	}
	af.log.Info("admin logged in", "admin_id", admin.ID, "ip", metadata.ip())

	return &dto.AdminLoginResponse{
		Admin:   ToAdminDTO(admin),
		Session: newSessionDTO(token, expiresAt, now),
	}, nil
}

func (af *AdminAuthFlowImpl) Me(ctx context.Context, adminID uint) (*dto.AdminDTO, error) {
	admin, err := af.adminRepo.ByID(ctx, adminID)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "failed to lookup admin", err)
	}
	if admin == nil {
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, NewBusinessError("ADMIN_INACTIVE", "admin account is inactive", ErrAdminInactive)
	}
	out := ToAdminDTO(admin)
	return &out, nil
}

// CRMAuthFlow authenticates call-center operators of the lead dashboard
type CRMAuthFlow interface {
	Login(ctx context.Context, req *dto.CRMLoginRequest, metadata *ClientMetadata) (*dto.CRMLoginResponse, error)
	Me(ctx context.Context, crmUserID uint) (*dto.CRMUserDTO, error)
}

// CRMAuthFlowImpl implements CRMAuthFlow
type CRMAuthFlowImpl struct {
	crmUserRepo  repository.CRMUserRepository
	tokenService services.TokenService
	throttle     services.LoginThrottle
	now          func() time.Time
	log          logger.Logger
}

func NewCRMAuthFlow(
	crmUserRepo repository.CRMUserRepository,
	tokenService services.TokenService,
	throttle services.LoginThrottle,
	log logger.Logger,
) CRMAuthFlow {
	if log == nil {
		log = logger.Nop()
	}
	return &CRMAuthFlowImpl{
		crmUserRepo:  crmUserRepo,
		tokenService: tokenService,
		throttle:     throttle,
		now:          utils.UTCNow,
		log:          log.With("component", "crm_auth"),
	}
}

func (cf *CRMAuthFlowImpl) Login(ctx context.Context, req *dto.CRMLoginRequest, metadata *ClientMetadata) (*dto.CRMLoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "invalid username or password", ErrInvalidCredentials)
	}

	throttleKey := "crm:" + username
	if cf.throttle != nil && !cf.throttle.Allow(throttleKey) {
		cf.log.Warn("crm login throttled", "username", username, "ip", metadata.ip())
		return nil, NewBusinessError("TOO_MANY_ATTEMPTS", "too many login attempts, try again later", ErrTooManyAttempts)
	}

	user, err := cf.crmUserRepo.ByUsername(ctx, username)
	if err != nil {
		return nil, NewBusinessError("CRM_USER_LOOKUP_FAILED", "failed to lookup crm user", err)
	}
	if user == nil {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "invalid username or password", ErrCRMUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("INVALID_CREDENTIALS", "invalid username or password", ErrIncorrectPassword)
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, NewBusinessError("CRM_USER_INACTIVE", "crm account is inactive", ErrCRMUserInactive)
	}

	token, expiresAt, err := cf.tokenService.GenerateCRMToken(user.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "failed to generate token", err)
	}

	if cf.throttle != nil {
		cf.throttle.Reset(throttleKey)
	}
	now := cf.now()
	if err := cf.crmUserRepo.UpdateLastLogin(detach(ctx), user.ID, now); err != nil {
		cf.log.Error("failed to stamp crm last login", "crm_user_id", user.ID, "error", err)
	}
	cf.log.Info("crm user logged in", "crm_user_id", user.ID, "ip", metadata.ip())

	return &dto.CRMLoginResponse{
		User:    ToCRMUserDTO(user),
		Session: newSessionDTO(token, expiresAt, now),
	}, nil
}

func (cf *CRMAuthFlowImpl) Me(ctx context.Context, crmUserID uint) (*dto.CRMUserDTO, error) {
	user, err := cf.crmUserRepo.ByID(ctx, crmUserID)
	if err != nil {
		return nil, NewBusinessError("CRM_USER_LOOKUP_FAILED", "failed to lookup crm user", err)
	}
	if user == nil {
		return nil, NewBusinessError("CRM_USER_NOT_FOUND", "crm user not found", ErrCRMUserNotFound)
	}
	out := ToCRMUserDTO(user)
	return &out, nil
}

func newSessionDTO(token string, expiresAt, now time.Time) dto.SessionDTO {
	return dto.SessionDTO{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(expiresAt.Sub(now).Seconds()),
		ExpiresAt:   formatTime(expiresAt),
	}
}

// ToAdminDTO converts an admin to its API view
func ToAdminDTO(a *models.Admin) dto.AdminDTO {
	return dto.AdminDTO{
		ID:          a.ID,
		UUID:        a.UUID.String(),
		Email:       a.Email,
		FullName:    a.FullName,
		IsActive:    utils.IsTrue(a.IsActive),
		LastLoginAt: formatTimePtr(a.LastLoginAt),
		CreatedAt:   formatTime(a.CreatedAt),
	}
}

// ToCRMUserDTO converts a CRM user to its API view
func ToCRMUserDTO(u *models.CRMUser) dto.CRMUserDTO {
	return dto.CRMUserDTO{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		IsActive:    utils.IsTrue(u.IsActive),
	}
}
