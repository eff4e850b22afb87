package model

import "time"

// Document is the metadata row for one uploaded file. The raw bytes live in
// the blob store under BlobKey; BlobLocator is the durable URL returned by
// the store at upload time.
type Document struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	OriginalFileName string    `gorm:"size:256;not null" json:"original_file_name"`
	BlobKey          string    `gorm:"size:512;not null" json:"-"`
	BlobLocator      string    `gorm:"size:1024;not null" json:"blob_locator"`
	CreatedAt        time.Time `json:"created_at"`
}
