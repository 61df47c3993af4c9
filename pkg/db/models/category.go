package models

// Category groups products across shops. The primary key is the supplier-fed
// external id; the name is applied on first creation and never overwritten by
// later ingests (first write wins).
type Category struct {
	ID    uint   `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name  string `gorm:"column:name;not null"`
	Shops []Shop `gorm:"many2many:shop_categories"`
}
