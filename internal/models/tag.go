package models

// Tag is immutable reference data attached to recipes.
type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:200;uniqueIndex;not null"`
	Color string `json:"color" gorm:"size:7;uniqueIndex;not null;default:'#FFFFFF'"`
	Slug  string `json:"slug" gorm:"size:200;uniqueIndex;not null"`
}

// Ingredient is immutable reference data; (Name, MeasurementUnit) is unique.
type Ingredient struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit"`
}

func (Ingredient) TableName() string {
	return "ingredient"
}
