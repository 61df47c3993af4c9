package models

// ProductParameter binds an attribute value to one listing. Rows die with
// their ProductInfo (cascade).
type ProductParameter struct {
	ID            uint   `gorm:"column:id;primaryKey"`
	ProductInfoID uint   `gorm:"column:product_info_id;not null;uniqueIndex:ux_product_parameters_pair"`
	ParameterID   uint   `gorm:"column:parameter_id;not null;uniqueIndex:ux_product_parameters_pair"`
	Value         string `gorm:"column:value;not null"`

	Parameter *Parameter `gorm:"foreignKey:ParameterID"`
}
