package httpHandler

import (
	"fmt"
	"strings"
	"time"

	"github.com/harumaki2000/medication-app/entities"
)

type UserCreateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type MedicationCreateRequest struct {
	Name       string               `json:"name" binding:"required"`
	Dosage     string               `json:"dosage" binding:"required"`
	IsAsNeeded bool                 `json:"is_as_needed"`
	Memo       *string              `json:"memo"`
	Timings    []entities.TimeOfDay `json:"timings" binding:"required"`
}

type IntakeRecordCreateRequest struct {
	MedicationID uint    `json:"medication_id" binding:"required"`
	TimingID     *uint   `json:"timing_id"`
	TakenAt      *string `json:"taken_at"`
}

// LoginForm follows the OAuth2 password grant: the email goes in username.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

var takenAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParsedTakenAt returns nil when taken_at was omitted. Timestamps without an
// offset are read as UTC.
func (r IntakeRecordCreateRequest) ParsedTakenAt() (*time.Time, error) {
	if r.TakenAt == nil || strings.TrimSpace(*r.TakenAt) == "" {
		return nil, nil
	}
	s := strings.TrimSpace(*r.TakenAt)
	for _, layout := range takenAtLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("invalid taken_at %q: expected an ISO 8601 timestamp", s)
}
