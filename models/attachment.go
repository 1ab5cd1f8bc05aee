package models

import "time"

// Attachment is a file stored for an event. The blob lives under a random
// storage key (attachments/<uuid><ext>); FileName keeps the client's original
// name as display metadata only and is never part of the storage path.
// Unlike events, attachments may be reassigned to another event.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	StorePath   string    `gorm:"column:store_path;size:512;not null" json:"store_path"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	EventID     uint      `gorm:"index;not null" json:"event_id"`
	Event       Event     `gorm:"foreignKey:EventID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
