package models

// OrderItem is one position inside an order. ProductInfoID goes nil when a
// re-ingest replaces the listing; confirmed history keeps the row.
type OrderItem struct {
	ID            uint  `gorm:"column:id;primaryKey"`
	OrderID       uint  `gorm:"column:order_id;not null;uniqueIndex:ux_order_items_listing"`
	ProductInfoID *uint `gorm:"column:product_info_id;uniqueIndex:ux_order_items_listing"`
	Quantity      int   `gorm:"column:quantity;not null"`

	ProductInfo *ProductInfo `gorm:"foreignKey:ProductInfoID"`
}
