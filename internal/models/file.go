package models

import "time"

// ProjectFile is the metadata row for an attachment whose payload lives in the upload store.
type ProjectFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProjectID    uint      `gorm:"not null;index" json:"project_id"`
	Filename     string    `gorm:"size:128;uniqueIndex;not null" json:"filename"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	FilePath     string    `gorm:"size:512;not null" json:"file_path"`
	FileType     string    `gorm:"size:128;not null" json:"file_type"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	Checksum     string    `gorm:"size:64" json:"checksum"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
