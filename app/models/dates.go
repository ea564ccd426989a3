package models

import "time"

// Display layouts match the dd.mm.yyyy formatting the front-end has always
// shown. They are display strings only; CreatedAt carries the sortable time.
const (
	DisplayDateLayout     = "02.01.2006"
	DisplayDateTimeLayout = "02.01.2006, 15:04:05"
)

func DisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

func DisplayDateTime(t time.Time) string {
	return t.Format(DisplayDateTimeLayout)
}
