package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AmbiguityRule stores admin-configured keyword rules for clarification
type AmbiguityRule struct {
	Id                    uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name                  string         `gorm:"type:varchar(200);not null"`
	Keywords              datatypes.JSON `gorm:"type:jsonb;not null"`
	CompetingTemplates    datatypes.JSON `gorm:"type:jsonb;not null"`
	ClarificationQuestion string         `gorm:"type:text;not null"`
	Options               datatypes.JSON `gorm:"type:jsonb"`
	ScoreThreshold        float64        `gorm:"type:double precision;not null;default:0.15"`
	Priority              int            `gorm:"default:0;index"`
	IsActive              bool           `gorm:"default:true;index"`
	CreatedAt             time.Time      `gorm:"autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime"`
}

func (AmbiguityRule) TableName() string {
	return "ambiguity_rules"
}
