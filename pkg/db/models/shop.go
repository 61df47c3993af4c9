package models

import "time"

// Shop is a supplier's storefront. At most one shop belongs to an owning
// account; ownership is nullable because shops can be seeded before their
// supplier registers.
type Shop struct {
	ID              uint       `gorm:"column:id;primaryKey"`
	Name            string     `gorm:"column:name;not null"`
	URL             *string    `gorm:"column:url"`
	UserID          *uint      `gorm:"column:user_id;uniqueIndex:ux_shops_user"`
	AcceptingOrders bool       `gorm:"column:accepting_orders;not null;default:true"`
	Categories      []Category `gorm:"many2many:shop_categories"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
