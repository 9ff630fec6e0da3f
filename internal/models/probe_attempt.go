package models

import "time"

// ProbeAttempt is one recorded (product, country) availability attempt
// from a diagnostic run.
type ProbeAttempt struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID        string    `gorm:"index" json:"run_id"`
	ProductID    string    `gorm:"index" json:"product_id"`
	Country      string    `json:"country"`
	Outcome      string    `json:"outcome"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
	Title        string    `json:"title,omitempty"`
	ImageCount   int       `json:"image_count"`
	VariantCount int       `json:"variant_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ProbeAttempt) TableName() string {
	return "probe_attempts"
}
