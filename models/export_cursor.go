package models

import "time"

// ExportCursor remembers the last withdrawal sequence number shipped by a named export.
type ExportCursor struct {
	Name      string    `gorm:"primaryKey;type:varchar(64)" json:"name"`
	Seq       int64     `gorm:"not null;default:0" json:"seq"`
	UpdatedAt time.Time `json:"updated_at"`
}
