package models

type Section struct {
	ID          string `gorm:"column:id;primaryKey;size:36" json:"id"`
	FormID      string `gorm:"column:form_id;size:36;index;not null" json:"form_id"`
	Title       string `gorm:"column:title;size:255;not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Order       int    `gorm:"column:sort_order;not null;default:0" json:"order"`
}

func (Section) TableName() string {
	return "form_sections"
}
