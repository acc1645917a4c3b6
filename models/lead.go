package models

import (
	"time"

	"gorm.io/datatypes"
)

// Lead is an inquiry captured by an ad-platform lead form
type Lead struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	LeadgenID    string         `gorm:"uniqueIndex;not null" json:"leadgenId"`
	FormID       string         `gorm:"index" json:"formId"`
	PageID       string         `json:"pageId"`
	AdID         string         `json:"adId"`
	CampaignName string         `json:"campaignName"`
	FieldData    datatypes.JSON `json:"fieldData"`
	CreatedTime  time.Time      `json:"createdTime"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// TableName specifies the table name for the Lead model
func (Lead) TableName() string {
	return "leads"
}
