package models

import (
	"time"

	"gorm.io/gorm"
)

// CallOutcome 呼叫结果
type CallOutcome string

const (
	CallOutcomeCompleted CallOutcome = "completed"
	CallOutcomeMissed    CallOutcome = "missed"
	CallOutcomeVoicemail CallOutcome = "voicemail"
)

// CallType 呼叫方向
type CallType string

const (
	CallTypeIncoming CallType = "incoming"
	CallTypeOutgoing CallType = "outgoing"
	CallTypeMissed   CallType = "missed"
)

// CallLog 通话日志。每个终结的呼叫会话恰好创建一条记录；创建后本核心
// 不再修改它（后续编辑走普通 CRUD 路径）。
type CallLog struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"-" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	CampaignID string `json:"campaignId,omitempty" gorm:"size:36;index"`
	ClientID   string `json:"clientId" gorm:"size:36;index"`
	Name       string `json:"name,omitempty" gorm:"size:200"`
	Phone      string `json:"phone" gorm:"size:64;index"`

	// 服务商侧信息
	Status         string `json:"status" gorm:"size:32"`                      // 服务商最终状态
	ProviderCallID string `json:"providerCallId" gorm:"size:128;uniqueIndex"` // 服务商呼叫标识

	DateTime      string      `json:"dateTime" gorm:"size:40;index"`
	CallType      CallType    `json:"callType" gorm:"size:16"`
	CallStatus    CallOutcome `json:"callStatus" gorm:"size:16;index"`
	Duration      int         `json:"duration" gorm:"default:0"` // 秒
	VoicemailLeft bool        `json:"voicemailLeft" gorm:"default:false"`
	CallNotes     string      `json:"callNotes,omitempty" gorm:"type:text"`
	LastContact   string      `json:"lastContact" gorm:"size:10"`

	// 跟进信息
	FollowUpRequired bool   `json:"followUpRequired" gorm:"default:false"`
	FollowUpDate     string `json:"followUpDate,omitempty" gorm:"size:10"`

	ImportTime string `json:"importTime" gorm:"size:40"`
	AgentID    string `json:"agentId" gorm:"size:64"`
}

// TableName 指定表名
func (CallLog) TableName() string {
	return "call_logs"
}

func (l *CallLog) BeforeCreate(_ *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
