package project

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusDrafted   = "DR"
	StatusProposed  = "PR"
	StatusActive    = "AC"
	StatusCompleted = "CO"
)

type Project struct {
	ID          int64           `gorm:"primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	FundingGoal decimal.Decimal `gorm:"column:funding_goal;type:numeric(15,2);not null"`
	Status      string          `gorm:"column:project_status;type:varchar(2);not null;default:DR"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}
