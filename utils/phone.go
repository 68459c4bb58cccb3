package utils

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// NormalizePhone parses a user supplied phone number and returns it in E.164
// form. Numbers without a country code are interpreted in region.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidPhoneNumber
	}
	if region == "" {
		region = DefaultPhoneRegion
	}

	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", ErrInvalidPhoneNumber
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", ErrInvalidPhoneNumber
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
