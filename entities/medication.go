package entities

// Medication belongs to one user and owns its scheduled timings.
type Medication struct {
	ID         uint    `gorm:"column:medication_id;primaryKey" json:"medication_id"`
	UserID     uint    `gorm:"index;not null" json:"user_id"`
	Name       string  `gorm:"index;not null" json:"name"`
	Dosage     string  `gorm:"not null" json:"dosage"`
	IsAsNeeded bool    `gorm:"not null;default:false" json:"is_as_needed"`
	Memo       *string `json:"memo"`

	Owner   *User              `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Timings []MedicationTiming `gorm:"foreignKey:MedicationID;references:ID" json:"timings"`
}

func (Medication) TableName() string { return "medications" }
