package models

import (
	"time"

	"gorm.io/gorm"
)

// ClientStatus 客户状态
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Client 客户记录，聚合计数器随每次终结的呼叫最多递增一次
type Client struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"-" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	Name      string       `json:"name" gorm:"size:200;index"`
	Phone     string       `json:"phone,omitempty" gorm:"size:64"`
	Status    ClientStatus `json:"status" gorm:"size:20;index"`
	DateAdded string       `json:"dateAdded" gorm:"size:10"`

	// 聚合计数
	ActiveCampaigns     int     `json:"activeCampaigns" gorm:"default:0"`
	TotalCalls          int     `json:"totalCalls" gorm:"default:0"`
	CallsThisMonth      int     `json:"callsThisMonth" gorm:"default:0"`
	ConnectedCalls      int     `json:"connectedCalls" gorm:"default:0"`
	Voicemails          int     `json:"voicemails" gorm:"default:0"`
	SuccessRate         float64 `json:"successRate" gorm:"default:0"`
	AverageCallDuration string  `json:"averageCallDuration" gorm:"size:20;default:'0:00'"`
	MonthlyCallDuration int     `json:"monthlyCallDuration" gorm:"default:0"`
	LastMonthlyReset    string  `json:"lastMonthlyReset" gorm:"size:10"`
}

// TableName 指定表名
func (Client) TableName() string {
	return "clients"
}

func (c *Client) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.ID)
	if c.Status == "" {
		c.Status = ClientStatusActive
	}
	if c.DateAdded == "" {
		c.DateAdded = DateOnly(time.Now())
	}
	return nil
}
