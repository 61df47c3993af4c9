package models

// ProductInfo is one shop's current listing of one product: supplier SKU,
// price and stock. The whole set for a shop is replaced on every ingest.
type ProductInfo struct {
	ID         uint   `gorm:"column:id;primaryKey"`
	ProductID  uint   `gorm:"column:product_id;not null;uniqueIndex:ux_product_infos_listing"`
	ShopID     uint   `gorm:"column:shop_id;not null;uniqueIndex:ux_product_infos_listing"`
	ExternalID uint   `gorm:"column:external_id;not null;uniqueIndex:ux_product_infos_listing"`
	Model      string `gorm:"column:model"`
	Quantity   int    `gorm:"column:quantity;not null"`
	Price      int    `gorm:"column:price;not null"`
	PriceRRC   int    `gorm:"column:price_rrc;not null"`

	Product    *Product           `gorm:"foreignKey:ProductID"`
	Shop       *Shop              `gorm:"foreignKey:ShopID"`
	Parameters []ProductParameter `gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE"`
}
