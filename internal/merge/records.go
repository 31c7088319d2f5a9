package merge

import (
	"database/sql"
	"time"
)

// userRecord is a row shaped for tbl_user. IDs are carried over verbatim
// from the legacy schema.
type userRecord struct {
	ID         int64
	Username   string
	Password   string
	Privileges []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// imageRecord is a row shaped for tbl_image.
type imageRecord struct {
	UUID        string
	UserID      int64
	AspectID    string
	Name        string
	Description string
	Visibility  int16
	Labels      []string
	FileName    string
	MetadataID  sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// normalizeTime converts a nullable legacy timestamp to naive UTC for
// storage. Missing timestamps inherit the run time.
func normalizeTime(t sql.NullTime, fallback time.Time) time.Time {
	if !t.Valid {
		return fallback
	}
	return t.Time.UTC()
}
