package entities

import "time"

// IntakeRecord is an append-only log entry of a dose actually taken.
// TimingID is nil for as-needed intakes.
type IntakeRecord struct {
	ID           uint      `gorm:"column:record_id;primaryKey" json:"record_id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	MedicationID uint      `gorm:"index;not null" json:"medication_id"`
	TimingID     *uint     `gorm:"index" json:"timing_id"`
	TakenAt      time.Time `gorm:"index;not null" json:"taken_at"`

	User       *User             `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Medication *Medication       `gorm:"foreignKey:MedicationID;references:ID" json:"-"`
	Timing     *MedicationTiming `gorm:"foreignKey:TimingID;references:ID" json:"-"`
}

func (IntakeRecord) TableName() string { return "intake_records" }
