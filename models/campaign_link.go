// Package models contains domain entities for the clinic site, its CRM and campaign tracking
package models

import (
	"time"

	"github.com/amirphl/dental-clinic/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignLink is a tagged marketing link. Its UniqueCode travels in public
// URLs as ?source=<code> and is copied onto leads as their source.
type CampaignLink struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_campaign_links_uuid" json:"uuid"`
	CampaignName string     `gorm:"type:varchar(255);not null" json:"campaign_name"`
	UniqueCode   string     `gorm:"type:varchar(64);not null;uniqueIndex:uk_campaign_links_unique_code" json:"unique_code"`
	Description  *string    `gorm:"type:text" json:"description,omitempty"`
	IsActive     *bool      `gorm:"not null;default:true;index:idx_campaign_links_is_active" json:"is_active"`
	ExpiryDate   *time.Time `gorm:"index:idx_campaign_links_expiry_date" json:"expiry_date,omitempty"`
	ClickCount   int64      `gorm:"not null;default:0" json:"click_count"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_campaign_links_created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (CampaignLink) TableName() string { return "campaign_links" }

// BeforeCreate ensures UUID and timestamps are set.
func (c *CampaignLink) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.IsActive == nil {
		c.IsActive = utils.ToPtr(true)
	}
	now := utils.UTCNow()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	return nil
}

// IsExpiredAt reports whether the expiry date has passed at now.
func (c *CampaignLink) IsExpiredAt(now time.Time) bool {
	return utils.IsExpiredAt(c.ExpiryDate, now)
}

// IsAttributableAt reports whether a visit at now may be attributed to the campaign.
func (c *CampaignLink) IsAttributableAt(now time.Time) bool {
	return utils.IsTrue(c.IsActive) && !c.IsExpiredAt(now)
}

// CampaignLinkFilter represents filter criteria for campaign link queries
type CampaignLinkFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	UniqueCode    *string    `json:"unique_code,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
	Search        *string    `json:"search,omitempty"`
	ExpiredBefore *time.Time `json:"expired_before,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
