// Package businessflow contains the use cases of the clinic site: campaign attribution, leads, dashboards, settings, content and authentication
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Campaign and attribution errors
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrInvalidCampaignCode    = errors.New("invalid campaign code")
	ErrCampaignCodeExists     = errors.New("campaign code already exists")
	ErrCampaignNameRequired   = errors.New("campaign name is required")
	ErrCampaignExpiryConflict = errors.New("expiry_date and clear_expiry cannot be combined")

	// Lead errors
	ErrLeadNotFound      = errors.New("consultation form not found")
	ErrInvalidLeadStatus = errors.New("invalid lead status")
	ErrEmptyLeadUpdate   = errors.New("nothing to update")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrFullNameRequired  = errors.New("full name is required")

	// Settings errors
	ErrSettingNotFound     = errors.New("setting not found")
	ErrSettingKeyRequired  = errors.New("setting key is required")
	ErrSettingValueInvalid = errors.New("setting value is not valid JSON")
	ErrSettingTypeMismatch = errors.New("setting value has the wrong type")
	ErrPresetNotFound      = errors.New("settings preset not found")
	ErrPresetNameExists    = errors.New("settings preset name already exists")
	ErrPresetNameRequired  = errors.New("settings preset name is required")

	// Content errors
	ErrContentNotFound    = errors.New("content item not found")
	ErrReorderIDsRequired = errors.New("ids are required")
	ErrReorderUnknownID   = errors.New("ids contain an unknown item")
	ErrContentConflict    = errors.New("content item conflicts with an existing one")

	// Appointment errors
	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrInvalidAppointmentStatus = errors.New("invalid appointment status")

	// Auth errors
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminInactive      = errors.New("admin account is inactive")
	ErrCRMUserNotFound    = errors.New("crm user not found")
	ErrCRMUserInactive    = errors.New("crm account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCaptchaRequired    = errors.New("captcha is required")
	ErrInvalidCaptcha     = errors.New("invalid captcha")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrCaptchaUnavailable = errors.New("captcha is disabled")
	ErrPasswordTooShort   = errors.New("password is too short")

	// Upload errors
	ErrFileRequired        = errors.New("file is required")
	ErrFileTooLarge        = errors.New("file is too large")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileContentMismatch = errors.New("file content does not match its extension")

	// Listing errors
	ErrInvalidPage           = errors.New("page must be greater than 0")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrInvalidDate           = errors.New("invalid date, expected YYYY-MM-DD or RFC3339")
	ErrStartDateAfterEndDate = errors.New("start date must be before end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// AsBusinessError extracts the outermost BusinessError from err.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsInvalidCampaignCode(err error) bool {
	return errors.Is(err, ErrInvalidCampaignCode)
}

func IsCampaignCodeExists(err error) bool {
	return errors.Is(err, ErrCampaignCodeExists)
}

func IsLeadNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound)
}

func IsInvalidLeadStatus(err error) bool {
	return errors.Is(err, ErrInvalidLeadStatus)
}

func IsEmptyLeadUpdate(err error) bool {
	return errors.Is(err, ErrEmptyLeadUpdate)
}

func IsInvalidPhone(err error) bool {
	return errors.Is(err, ErrInvalidPhone)
}

func IsSettingNotFound(err error) bool {
	return errors.Is(err, ErrSettingNotFound)
}

func IsSettingTypeMismatch(err error) bool {
	return errors.Is(err, ErrSettingTypeMismatch)
}

func IsPresetNotFound(err error) bool {
	return errors.Is(err, ErrPresetNotFound)
}

func IsPresetNameExists(err error) bool {
	return errors.Is(err, ErrPresetNameExists)
}

func IsContentNotFound(err error) bool {
	return errors.Is(err, ErrContentNotFound)
}

func IsAppointmentNotFound(err error) bool {
	return errors.Is(err, ErrAppointmentNotFound)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrIncorrectPassword) ||
		errors.Is(err, ErrAdminNotFound) ||
		errors.Is(err, ErrCRMUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive) || errors.Is(err, ErrCRMUserInactive)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha) || errors.Is(err, ErrCaptchaRequired)
}

func IsTooManyAttempts(err error) bool {
	return errors.Is(err, ErrTooManyAttempts)
}

func IsFileTooLarge(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}

func IsUnsupportedFileType(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType) || errors.Is(err, ErrFileContentMismatch)
}

var (
	validationErrors = []error{
		ErrInvalidCampaignCode, ErrCampaignNameRequired, ErrCampaignExpiryConflict,
		ErrInvalidLeadStatus, ErrEmptyLeadUpdate, ErrInvalidPhone, ErrFullNameRequired,
		ErrSettingKeyRequired, ErrSettingValueInvalid, ErrSettingTypeMismatch, ErrPresetNameRequired,
		ErrReorderIDsRequired, ErrReorderUnknownID,
		ErrInvalidAppointmentStatus,
		ErrCaptchaRequired, ErrInvalidCaptcha, ErrPasswordTooShort,
		ErrFileRequired, ErrFileTooLarge, ErrUnsupportedFileType, ErrFileContentMismatch,
		ErrInvalidPage, ErrInvalidPageSize, ErrInvalidDate, ErrStartDateAfterEndDate,
	}
	notFoundErrors = []error{
		ErrCampaignNotFound, ErrLeadNotFound, ErrSettingNotFound, ErrPresetNotFound,
		ErrContentNotFound, ErrAppointmentNotFound, ErrCaptchaUnavailable,
	}
	conflictErrors = []error{
		ErrCampaignCodeExists, ErrPresetNameExists, ErrContentConflict,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidationError reports errors caused by the request content
func IsValidationError(err error) bool {
	return isAny(err, validationErrors)
}

// IsNotFound reports errors about a missing resource
func IsNotFound(err error) bool {
	return isAny(err, notFoundErrors)
}

// IsConflict reports errors about a uniqueness violation
func IsConflict(err error) bool {
	return isAny(err, conflictErrors)
}

// IsUnauthorized reports failed logins and unknown accounts
func IsUnauthorized(err error) bool {
	return IsInvalidCredentials(err) || IsAccountInactive(err)
}
