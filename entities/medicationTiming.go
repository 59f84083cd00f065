package entities

// MedicationTiming is one scheduled time of day for a medication.
type MedicationTiming struct {
	ID           uint      `gorm:"column:timing_id;primaryKey" json:"timing_id"`
	MedicationID uint      `gorm:"index;not null" json:"medication_id"`
	TakeTime     TimeOfDay `gorm:"not null" json:"take_time"`

	Medication *Medication `gorm:"foreignKey:MedicationID;references:ID" json:"-"`
}

func (MedicationTiming) TableName() string { return "medication_timings" }
