package models

// Product is a catalog entry shared across shops. The same name under a
// different category is a different product.
type Product struct {
	ID         uint   `gorm:"column:id;primaryKey"`
	Name       string `gorm:"column:name;not null;uniqueIndex:ux_products_name_category"`
	CategoryID uint   `gorm:"column:category_id;not null;uniqueIndex:ux_products_name_category"`

	Category *Category `gorm:"foreignKey:CategoryID"`
}
