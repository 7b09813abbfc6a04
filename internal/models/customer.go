package models

import (
	"time"

	"gorm.io/gorm"
)

// CustomerStatus 联系人状态
type CustomerStatus string

const (
	CustomerStatusPending   CustomerStatus = "pending"
	CustomerStatusContacted CustomerStatus = "contacted"
	CustomerStatusSuccess   CustomerStatus = "success"
	CustomerStatusFailed    CustomerStatus = "failed"
)

// Customer 外呼联系人（线索）记录
type Customer struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"-" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	Name        string         `json:"name" gorm:"size:200"`
	Phone       string         `json:"phone" gorm:"size:64;index"`
	Status      CustomerStatus `json:"status" gorm:"size:20;index"`
	LastContact string         `json:"lastContact" gorm:"size:10"`
	Notes       string         `json:"notes,omitempty" gorm:"type:text"`
	CampaignID  string         `json:"campaignId,omitempty" gorm:"size:36;index"`
	ImportTime  string         `json:"importTime" gorm:"size:40"`
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.ID)
	if c.Status == "" {
		c.Status = CustomerStatusPending
	}
	if c.ImportTime == "" {
		c.ImportTime = time.Now().Format(time.RFC3339)
	}
	return nil
}
