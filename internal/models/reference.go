package models

import "time"

// Customer and Writer are lookup lists for the project form; projects copy the name.

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Contact   *string   `gorm:"size:255" json:"contact"`
	Company   *string   `gorm:"size:255" json:"company"`
	CreatedAt time.Time `json:"created_at"`
}

type Writer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Specialty *string   `gorm:"size:255" json:"specialty"`
	Contact   *string   `gorm:"size:255" json:"contact"`
	Rate      float64   `gorm:"type:decimal(12,2);not null;default:0" json:"rate"`
	CreatedAt time.Time `json:"created_at"`
}
