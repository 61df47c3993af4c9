package models

// Parameter is a global attribute-name dictionary entry, upserted by name.
type Parameter struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;not null;uniqueIndex:ux_parameters_name"`
}
