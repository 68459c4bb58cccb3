package testing

import (
	"fmt"
	"time"

	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain password of every fixture account
const TestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAdmin creates an active admin whose password is TestPassword
func (tf *TestFixtures) CreateTestAdmin() (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.Admin{
		Email:        gofakeit.Email(),
		PasswordHash: string(hash),
		FullName:     utils.ToPtr(gofakeit.Name()),
		IsActive:     utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}

// CreateTestCRMUser creates an active CRM user whose password is TestPassword
func (tf *TestFixtures) CreateTestCRMUser() (*models.CRMUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.CRMUser{
		Username:     gofakeit.Username() + gofakeit.DigitN(4),
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test crm user: %w", err)
	}
	return user, nil
}

// CreateTestCampaign creates a campaign link with the given code, activity flag and expiry
func (tf *TestFixtures) CreateTestCampaign(code string, active bool, expiry *time.Time, clicks int64) (*models.CampaignLink, error) {
	campaign := &models.CampaignLink{
		CampaignName: gofakeit.Company(),
		UniqueCode:   code,
		IsActive:     utils.ToPtr(active),
		ExpiryDate:   expiry,
		ClickCount:   clicks,
	}
	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign %s: %w", code, err)
	}
	return campaign, nil
}

// CreateTestLead creates a consultation form with a random Uzbek mobile number
func (tf *TestFixtures) CreateTestLead(source string, status models.LeadStatus, createdAt time.Time) (*models.ConsultationForm, error) {
	lead := &models.ConsultationForm{
		FullName:         gofakeit.Name(),
		Phone:            "+99890" + gofakeit.DigitN(7),
		Source:           source,
		TimeSpentSeconds: gofakeit.Number(5, 900),
		LeadStatus:       status,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
	if err := tf.DB.DB.Create(lead).Error; err != nil {
		return nil, fmt.Errorf("failed to create test lead: %w", err)
	}
	return lead, nil
}

// CreateTestSetting creates a setting with a raw JSON value
func (tf *TestFixtures) CreateTestSetting(key, rawJSON string) (*models.Setting, error) {
	setting := &models.Setting{Key: key, Value: []byte(rawJSON)}
	if err := tf.DB.DB.Create(setting).Error; err != nil {
		return nil, fmt.Errorf("failed to create test setting %s: %w", key, err)
	}
	return setting, nil
}

// CreateTestFAQ creates a FAQ entry with the given order and visibility
func (tf *TestFixtures) CreateTestFAQ(order int, active bool) (*models.FAQ, error) {
	faq := &models.FAQ{
		Question:     gofakeit.Question(),
		Answer:       gofakeit.Sentence(12),
		DisplayOrder: order,
		IsActive:     utils.ToPtr(active),
	}
	if err := tf.DB.DB.Create(faq).Error; err != nil {
		return nil, fmt.Errorf("failed to create test faq: %w", err)
	}
	return faq, nil
}
