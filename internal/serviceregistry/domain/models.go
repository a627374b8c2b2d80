package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Service is the billing unit that owns pricing objects.
type Service struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string       `json:"name" gorm:"type:varchar(256);not null"`
	Symbol    string       `json:"symbol" gorm:"type:varchar(128);not null;uniqueIndex:ux_services_symbol"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (Service) TableName() string { return "services" }
