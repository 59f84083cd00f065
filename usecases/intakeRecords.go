package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harumaki2000/medication-app/db"
	"github.com/harumaki2000/medication-app/entities"
	"github.com/harumaki2000/medication-app/repositories"
	"github.com/sirupsen/logrus"
)

// DateLayout is the calendar-date format accepted for day filters.
const DateLayout = "2006-01-02"

type IntakeRecordUseCase struct {
	db    db.Database
	repos repositories.Manager
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewIntakeRecordUseCase(database db.Database, repos repositories.Manager, log logrus.FieldLogger) *IntakeRecordUseCase {
	return &IntakeRecordUseCase{db: database, repos: repos, log: log, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (uc *IntakeRecordUseCase) WithClock(now func() time.Time) *IntakeRecordUseCase {
	uc.now = now
	return uc
}

// LogIntake appends an intake record. Ownership of the medication is checked
// by the caller. takenAt defaults to now; it is stored in UTC at microsecond
// precision.
func (uc *IntakeRecordUseCase) LogIntake(ctx context.Context, userID, medicationID uint, timingID *uint, takenAt *time.Time) (*entities.IntakeRecord, error) {
	ts := uc.now()
	if takenAt != nil {
		ts = *takenAt
	}

	record := &entities.IntakeRecord{
		UserID:       userID,
		MedicationID: medicationID,
		TimingID:     timingID,
		TakenAt:      ts.UTC().Truncate(time.Microsecond),
	}
	if err := uc.repos.IntakeRecords(uc.db).Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create intake record: %w", err)
	}

	uc.log.WithFields(logrus.Fields{
		"user_id":       userID,
		"medication_id": medicationID,
		"record_id":     record.ID,
	}).Info("intake logged")
	return record, nil
}

// CheckTiming verifies that timingID is one of medicationID's timings.
func (uc *IntakeRecordUseCase) CheckTiming(ctx context.Context, medicationID, timingID uint) error {
	timing, err := uc.repos.Timings(uc.db).GetByID(ctx, timingID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && timing.MedicationID != medicationID) {
		return fmt.Errorf("%w: timing %d", ErrNotFound, timingID)
	}
	return err
}

// ListIntakeRecords returns the user's records; when date is set, only those
// taken within that UTC calendar day, 00:00:00.000000 to 23:59:59.999999
// inclusive.
func (uc *IntakeRecordUseCase) ListIntakeRecords(ctx context.Context, userID uint, date *time.Time) ([]entities.IntakeRecord, error) {
	repo := uc.repos.IntakeRecords(uc.db)
	if date == nil {
		return repo.GetByUserID(ctx, userID)
	}
	start, end := DayBounds(*date)
	return repo.GetByUserIDBetween(ctx, userID, start, end)
}

// ListTodayIntakeRecords is ListIntakeRecords for the current UTC date.
func (uc *IntakeRecordUseCase) ListTodayIntakeRecords(ctx context.Context, userID uint) ([]entities.IntakeRecord, error) {
	today := uc.Today()
	return uc.ListIntakeRecords(ctx, userID, &today)
}

// Today is the current UTC date at midnight.
func (uc *IntakeRecordUseCase) Today() time.Time {
	y, m, d := uc.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD as a UTC date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, s)
	}
	return d, nil
}

// DayBounds returns the first and last microsecond of d's UTC calendar day.
func DayBounds(d time.Time) (time.Time, time.Time) {
	y, m, day := d.UTC().Date()
	start := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Microsecond)
	return start, end
}
