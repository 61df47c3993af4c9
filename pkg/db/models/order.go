package models

import (
	"time"

	"github.com/supplydesk/supplydesk-backend/pkg/enums"
)

// Order is a user's order in any lifecycle state. The `basket` state is the
// open cart; a partial unique index on (user_id) WHERE state='basket' keeps
// it to one per user.
type Order struct {
	ID        uint             `gorm:"column:id;primaryKey"`
	UserID    uint             `gorm:"column:user_id;not null;index"`
	State     enums.OrderState `gorm:"column:state;not null"`
	ContactID *uint            `gorm:"column:contact_id"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Contact *Contact    `gorm:"foreignKey:ContactID"`
	Items   []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}
