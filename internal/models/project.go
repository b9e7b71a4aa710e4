package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status is a project's position in the gig workflow.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusDelivered  Status = "Delivered"
	StatusSettled    Status = "Settled"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDelivered, StatusSettled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// DefaultProjectType is used when a project is saved without a category.
const DefaultProjectType = "Other"

// Project is a writing gig. Customer and writer are free-text names, not references.
type Project struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Title        string          `gorm:"not null" json:"title"`
	Type         string          `gorm:"size:64;not null;default:Other" json:"type"`
	CustomerName *string         `gorm:"size:255" json:"customer_name"`
	WriterName   *string         `gorm:"size:255" json:"writer_name"`
	Description  *string         `gorm:"type:text" json:"description"`
	Deadline     *datatypes.Date `json:"deadline"`
	ClientPrice  float64         `gorm:"type:decimal(12,2);not null;default:0" json:"client_price"`
	WriterPrice  float64         `gorm:"type:decimal(12,2);not null;default:0" json:"writer_price"`
	Status       Status          `gorm:"type:varchar(16);not null;default:Pending;index" json:"status"`
	CreatedBy    uint            `gorm:"not null;index" json:"created_by"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// CreatorName is filled by joined reads; it is not a column.
	CreatorName *string `gorm:"->;-:migration" json:"creator_name"`
	// Profit is derived, never stored.
	Profit float64 `gorm:"-" json:"profit"`

	Creator  *User           `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Timeline []TimelineEntry `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Files    []ProjectFile   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Notes    []ProjectNote   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ComputeProfit refreshes the derived profit field.
func (p *Project) ComputeProfit() {
	p.Profit = p.ClientPrice - p.WriterPrice
}

func (p *Project) AfterFind(tx *gorm.DB) error {
	p.ComputeProfit()
	return nil
}

func (p *Project) AfterSave(tx *gorm.DB) error {
	p.ComputeProfit()
	return nil
}

// TimelineEntry records one status transition. Rows are append-only.
type TimelineEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index:idx_timeline_project_created" json:"project_id"`
	Status    Status    `gorm:"type:varchar(16);not null" json:"status"`
	Notes     *string   `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"index:idx_timeline_project_created" json:"created_at"`
}

func (TimelineEntry) TableName() string { return "timeline" }

// ProjectNote is one message in a project's communication log. Rows are append-only.
type ProjectNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedBy uint      `gorm:"not null;index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	CreatorName *string `gorm:"->;-:migration" json:"creator_name"`
}
