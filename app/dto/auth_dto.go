package dto

// AdminLoginRequest carries admin credentials. The captcha fields are
// required only when captcha verification is enabled.
type AdminLoginRequest struct {
	Email        string   `json:"email" validate:"required,email,max=255"`
	Password     string   `json:"password" validate:"required,min=1,max=100"`
	CaptchaID    *string  `json:"captcha_id,omitempty" validate:"omitempty,max=64"`
	CaptchaAngle *float64 `json:"captcha_angle,omitempty"`
}

type CRMLoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=100"`
}

type AdminDTO struct {
	ID          uint    `json:"id" example:"1"`
	UUID        string  `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Email       string  `json:"email" example:"admin@clinic.uz"`
	FullName    *string `json:"full_name,omitempty" example:"Clinic Admin"`
	IsActive    bool    `json:"is_active" example:"true"`
	LastLoginAt *string `json:"last_login_at,omitempty" example:"2026-01-15T10:30:00Z"`
	CreatedAt   string  `json:"created_at" example:"2026-01-15T10:30:00Z"`
}

type CRMUserDTO struct {
	ID          uint    `json:"id" example:"1"`
	Username    string  `json:"username" example:"operator"`
	DisplayName *string `json:"display_name,omitempty" example:"Call center"`
	IsActive    bool    `json:"is_active" example:"true"`
}

type SessionDTO struct {
	AccessToken string `json:"access_token" example:"jwt"`
	TokenType   string `json:"token_type" example:"Bearer"`
	ExpiresIn   int    `json:"expires_in" example:"86400"`
	ExpiresAt   string `json:"expires_at" example:"2026-01-16T10:30:00Z"`
}

type AdminLoginResponse struct {
	Admin   AdminDTO   `json:"admin"`
	Session SessionDTO `json:"session"`
}

type CRMLoginResponse struct {
	User    CRMUserDTO `json:"user"`
	Session SessionDTO `json:"session"`
}

type CaptchaChallengeResponse struct {
	ChallengeID       string `json:"challenge_id"`
	MasterImageBase64 string `json:"master_image_base64"`
	ThumbImageBase64  string `json:"thumb_image_base64"`
	ExpiresAt         string `json:"expires_at"`
}
