package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-date format used for check-in and photo dates.
const DateLayout = "2006-01-02"

// FormatDate renders t as a calendar date in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// CheckIn records whether a student did one plan entry on one day.
// (StudentID, EntryID, Date) is unique.
type CheckIn struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"studentId" json:"studentId"`
	EntryID   primitive.ObjectID `bson:"entryId" json:"entryId"`
	Done      bool               `bson:"done" json:"done"`
	Date      string             `bson:"date" json:"date"` // YYYY-MM-DD, sorts lexically
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
