package repositories

import (
	"context"
	"time"

	"github.com/harumaki2000/medication-app/db"
	"github.com/harumaki2000/medication-app/entities"
)

type intakeRecordGormRepository struct {
	db db.Database
}

func NewIntakeRecordGormRepository(database db.Database) IntakeRecordRepository {
	return &intakeRecordGormRepository{db: database}
}

func (r *intakeRecordGormRepository) Create(ctx context.Context, record *entities.IntakeRecord) error {
	return translate(r.db.Session(ctx).Create(record).Error)
}

func (r *intakeRecordGormRepository) GetByUserID(ctx context.Context, userID uint) ([]entities.IntakeRecord, error) {
	records := []entities.IntakeRecord{}
	err := r.db.Session(ctx).Where("user_id = ?", userID).Order("record_id ASC").Find(&records).Error
	return inUTC(records), translate(err)
}

// GetByUserIDBetween returns records with start <= taken_at <= end.
func (r *intakeRecordGormRepository) GetByUserIDBetween(ctx context.Context, userID uint, start, end time.Time) ([]entities.IntakeRecord, error) {
	records := []entities.IntakeRecord{}
	err := r.db.Session(ctx).
		Where("user_id = ? AND taken_at >= ? AND taken_at <= ?", userID, start.UTC(), end.UTC()).
		Order("record_id ASC").
		Find(&records).Error
	return inUTC(records), translate(err)
}

func (r *intakeRecordGormRepository) DeleteByMedicationID(ctx context.Context, medicationID uint) error {
	return translate(r.db.Session(ctx).Where("medication_id = ?", medicationID).Delete(&entities.IntakeRecord{}).Error)
}

// sqlite hands back a fabricated +00:00 zone; callers expect time.UTC.
func inUTC(records []entities.IntakeRecord) []entities.IntakeRecord {
	for i := range records {
		records[i].TakenAt = records[i].TakenAt.UTC()
	}
	return records
}
