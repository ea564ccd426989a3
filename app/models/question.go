package models

import (
	"encoding/json"
	"time"
)

// Question is a visitor question submitted through the ask form.
type Question struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id,omitempty"`
	Name      string    `gorm:"type:varchar(150)" json:"name" validate:"required,max=150"`
	Contact   string    `gorm:"type:varchar(255)" json:"contact" validate:"required,max=255"`
	Question  string    `gorm:"type:text" json:"question" validate:"required"`
	Date      string    `gorm:"type:varchar(32)" json:"date"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// TableName specifies the table name for the Question model
func (Question) TableName() string {
	return "questions"
}

func NewQuestion(name, contact, question string, now time.Time) *Question {
	return &Question{
		Name:      name,
		Contact:   contact,
		Question:  question,
		Date:      DisplayDateTime(now),
		CreatedAt: now,
	}
}

func (q *Question) Validate() error {
	return validate.Struct(q)
}

// UnmarshalJSON tolerates questions written before they carried an id.
func (q *Question) UnmarshalJSON(data []byte) error {
	type alias Question
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(q)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := decodeRecordID(aux.ID)
	if err != nil {
		return err
	}
	q.ID = id

	return nil
}
