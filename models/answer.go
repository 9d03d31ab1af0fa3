package models

type Answer struct {
	ID         string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	ResponseID string    `gorm:"column:response_id;size:36;index;not null" json:"response_id"`
	QuestionID string    `gorm:"column:question_id;size:36;index;not null" json:"question_id"`
	Value      string    `gorm:"column:value;type:text" json:"value"`
	Question   *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Answer) TableName() string {
	return "form_answers"
}
