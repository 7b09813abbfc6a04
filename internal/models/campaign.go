package models

import (
	"time"

	"gorm.io/gorm"
)

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusPending   CampaignStatus = "pending"
	CampaignStatusAborted   CampaignStatus = "aborted"
	CampaignStatusPaused    CampaignStatus = "paused"
)

// Campaign 外呼活动记录
type Campaign struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"-" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	Name     string         `json:"name" gorm:"size:200"`
	ClientID string         `json:"clientId" gorm:"size:36;index"`
	Status   CampaignStatus `json:"status" gorm:"size:20;index"`

	StartDate string `json:"startDate" gorm:"size:10"`
	EndDate   string `json:"endDate" gorm:"size:10"`
	Goals     string `json:"goals,omitempty" gorm:"type:text"`
	Results   string `json:"results,omitempty" gorm:"type:text"`
	Notes     string `json:"notes,omitempty" gorm:"type:text"`

	// 呼叫窗口与节流配置
	DailyCallLimit     int    `json:"dailyCallLimit" gorm:"default:0"`
	CallWindowStart    string `json:"callWindowStart" gorm:"size:10"`
	CallWindowEnd      string `json:"callWindowEnd" gorm:"size:10"`
	TimeZone           string `json:"timeZone" gorm:"size:64"`
	VoicemailDetection bool   `json:"voicemailDetection" gorm:"default:false"`
	MaxAttempts        int    `json:"maxAttempts" gorm:"default:0"`
	CallInterval       int    `json:"callInterval" gorm:"default:0"`

	// 聚合计数
	Calls           int     `json:"calls" gorm:"default:0"`
	SuccessRate     float64 `json:"successRate" gorm:"default:0"`
	TotalCallsSent  int     `json:"totalCallsSent" gorm:"default:0"`
	CallsThisMonth  int     `json:"callsThisMonth" gorm:"default:0"`
	TotalCost       float64 `json:"totalCost" gorm:"default:0"`
	CallsPickedUp   int     `json:"callsPickedUp" gorm:"default:0"`
	VoiceMailsLeft  int     `json:"voiceMailsLeft" gorm:"default:0"`
	AverageCallTime float64 `json:"averageCallTime" gorm:"default:0"`
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "campaigns"
}

func (c *Campaign) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.ID)
	if c.Status == "" {
		c.Status = CampaignStatusPending
	}
	return nil
}
