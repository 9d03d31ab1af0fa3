package models

const (
	QuestionShortText      = "short_text"
	QuestionLongText       = "long_text"
	QuestionSingleChoice   = "single_choice"
	QuestionMultipleChoice = "multiple_choice"
	QuestionRating         = "rating"
)

// Question.Options giữ mảng lựa chọn dạng JSON (chỉ với câu hỏi chọn đáp án).
type Question struct {
	ID        string   `gorm:"column:id;primaryKey;size:36" json:"id"`
	FormID    string   `gorm:"column:form_id;size:36;index;not null" json:"form_id"`
	SectionID *string  `gorm:"column:section_id;size:36;index" json:"section_id"`
	Type      string   `gorm:"column:type;size:30;not null" json:"type"`
	Text      string   `gorm:"column:text;type:text;not null" json:"text"`
	Required  bool     `gorm:"column:required;not null;default:false" json:"required"`
	Options   *string  `gorm:"column:options;type:text" json:"-"`
	Order     int      `gorm:"column:sort_order;not null;default:0" json:"order"`
	Section   *Section `gorm:"foreignKey:SectionID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Question) TableName() string {
	return "form_questions"
}

// IsChoice báo câu hỏi có danh sách lựa chọn hay không.
func IsChoice(t string) bool {
	return t == QuestionSingleChoice || t == QuestionMultipleChoice
}

func IsText(t string) bool {
	return t == QuestionShortText || t == QuestionLongText
}

func ValidQuestionType(t string) bool {
	switch t {
	case QuestionShortText, QuestionLongText, QuestionSingleChoice, QuestionMultipleChoice, QuestionRating:
		return true
	}
	return false
}
