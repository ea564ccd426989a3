package models

import "time"

// Comment is addressed only by its position inside the parent news post.
// ID, NewsID and Position exist for the relational store and are never
// serialized.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"-" bson:"-"`
	NewsID   string `gorm:"type:varchar(64);index" json:"-" bson:"-"`
	Position int    `gorm:"index" json:"-" bson:"-"`
	Author   string `gorm:"type:varchar(150)" json:"author" bson:"author" validate:"required,max=150"`
	Text     string `gorm:"type:text" json:"text" bson:"text" validate:"required"`
	Date     string `gorm:"type:varchar(32)" json:"date" bson:"date"`
}

// TableName specifies the table name for the Comment model
func (Comment) TableName() string {
	return "news_comments"
}

func NewComment(author, text string, now time.Time) Comment {
	return Comment{
		Author: author,
		Text:   text,
		Date:   DisplayDateTime(now),
	}
}

func (c *Comment) Validate() error {
	return validate.Struct(c)
}
