package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatLog stores completed chat turns for audit and analytics
type ChatLog struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  string    `gorm:"type:varchar(100);not null;index"`
	EmployeeId string    `gorm:"type:varchar(50);not null;index"`
	Route      string    `gorm:"type:varchar(20);not null"`
	Query      string    `gorm:"type:text;not null"`
	Answer     string    `gorm:"type:text"`
	Confidence float64   `gorm:"type:double precision"`
	LatencyMs  int64     `gorm:"type:bigint"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

func (ChatLog) TableName() string {
	return "chat_logs"
}
