package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/harumaki2000/medication-app/db"
	"github.com/harumaki2000/medication-app/entities"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uint) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// MedicationRepository reads are always scoped to the owning user.
type MedicationRepository interface {
	Create(ctx context.Context, medication *entities.Medication) error
	GetByIDForUser(ctx context.Context, id, userID uint) (*entities.Medication, error)
	GetByUserID(ctx context.Context, userID uint) ([]entities.Medication, error)
	Delete(ctx context.Context, id uint) error
}

type TimingRepository interface {
	CreateBatch(ctx context.Context, timings []entities.MedicationTiming) error
	GetByID(ctx context.Context, id uint) (*entities.MedicationTiming, error)
	DeleteByMedicationID(ctx context.Context, medicationID uint) error
}

// IntakeRecordRepository has no update: records are append-only.
type IntakeRecordRepository interface {
	Create(ctx context.Context, record *entities.IntakeRecord) error
	GetByUserID(ctx context.Context, userID uint) ([]entities.IntakeRecord, error)
	GetByUserIDBetween(ctx context.Context, userID uint, start, end time.Time) ([]entities.IntakeRecord, error)
	DeleteByMedicationID(ctx context.Context, medicationID uint) error
}

// Manager hands out repositories bound to a store handle, which may be a
// transaction.
type Manager interface {
	Users(d db.Database) UserRepository
	Medications(d db.Database) MedicationRepository
	Timings(d db.Database) TimingRepository
	IntakeRecords(d db.Database) IntakeRecordRepository
}

type gormManager struct{}

func NewGormManager() Manager { return gormManager{} }

func (gormManager) Users(d db.Database) UserRepository { return NewUserGormRepository(d) }

func (gormManager) Medications(d db.Database) MedicationRepository {
	return NewMedicationGormRepository(d)
}

func (gormManager) Timings(d db.Database) TimingRepository { return NewTimingGormRepository(d) }

func (gormManager) IntakeRecords(d db.Database) IntakeRecordRepository {
	return NewIntakeRecordGormRepository(d)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}

// isUniqueViolation catches drivers that don't implement gorm's error
// translation (sqlite 2067, postgres 23505).
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}
