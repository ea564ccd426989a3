package models

import (
	"encoding/json"
	"time"
)

// News represents a news post in the feed. Comments are owned by the post and
// only ever appended to.
type News struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title     string    `gorm:"type:varchar(255)" json:"title" validate:"required"`
	Content   string    `gorm:"type:longtext" json:"content" validate:"required"`
	Image     *string   `gorm:"type:longtext" json:"image"`
	Date      string    `gorm:"type:varchar(32)" json:"date"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	Comments  []Comment `gorm:"foreignKey:NewsID;constraint:OnDelete:CASCADE" json:"comments"`
}

// TableName specifies the table name for the News model
func (News) TableName() string {
	return "news"
}

// NewNews builds a news post stamped with the given creation time. The store
// assigns the identifier.
func NewNews(title, content string, image *string, now time.Time) *News {
	return &News{
		Title:     title,
		Content:   content,
		Image:     image,
		Date:      DisplayDate(now),
		CreatedAt: now,
		Comments:  []Comment{},
	}
}

func (n *News) Validate() error {
	return validate.Struct(n)
}

// MarshalJSON writes the id twice. Browser clients of the document store
// deployment read it as "_id".
func (n News) MarshalJSON() ([]byte, error) {
	type alias News
	return json.Marshal(struct {
		alias
		DocumentID string `json:"_id"`
	}{alias: alias(n), DocumentID: n.ID})
}

// UnmarshalJSON accepts both string and numeric identifiers, under "id" or
// "_id". Older news files were written with numeric ids.
func (n *News) UnmarshalJSON(data []byte) error {
	type alias News
	aux := struct {
		ID         json.RawMessage `json:"id"`
		DocumentID json.RawMessage `json:"_id"`
		*alias
	}{alias: (*alias)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	id, err := decodeRecordID(aux.ID)
	if err != nil {
		return err
	}
	if id == "" {
		if id, err = decodeRecordID(aux.DocumentID); err != nil {
			return err
		}
	}
	n.ID = id

	return nil
}
