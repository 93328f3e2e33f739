package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type DealStatus string

const (
	DealStatusOpen DealStatus = "open"
	DealStatusWon  DealStatus = "won"
	DealStatusLost DealStatus = "lost"
)

// Deal is the aggregate a quote belongs to. It transitions to won exactly
// once, driven by the first accepted primary quote.
type Deal struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID      snowflake.ID `json:"org_id" gorm:"not null;index"`
	Name       string       `json:"name" gorm:"type:text;not null"`
	Status     DealStatus   `json:"status" gorm:"type:text;not null"`
	ClosedDate *time.Time   `json:"closed_date"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"not null"`
}

func (Deal) TableName() string { return "deals" }

var (
	ErrNotFound = errors.New("deal_not_found")
)
