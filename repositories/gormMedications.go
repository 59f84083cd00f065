package repositories

import (
	"context"

	"github.com/harumaki2000/medication-app/db"
	"github.com/harumaki2000/medication-app/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type medicationGormRepository struct {
	db db.Database
}

func NewMedicationGormRepository(database db.Database) MedicationRepository {
	return &medicationGormRepository{db: database}
}

// Create inserts the medication row only; timings are written separately.
func (r *medicationGormRepository) Create(ctx context.Context, medication *entities.Medication) error {
	return translate(r.db.Session(ctx).Omit(clause.Associations).Create(medication).Error)
}

func (r *medicationGormRepository) GetByIDForUser(ctx context.Context, id, userID uint) (*entities.Medication, error) {
	var medication entities.Medication
	err := r.db.Session(ctx).
		Preload("Timings", orderTimings).
		Where("medication_id = ? AND user_id = ?", id, userID).
		First(&medication).Error
	if err != nil {
		return nil, translate(err)
	}
	return &medication, nil
}

func (r *medicationGormRepository) GetByUserID(ctx context.Context, userID uint) ([]entities.Medication, error) {
	medications := []entities.Medication{}
	err := r.db.Session(ctx).
		Preload("Timings", orderTimings).
		Where("user_id = ?", userID).
		Order("medication_id ASC").
		Find(&medications).Error
	return medications, translate(err)
}

func (r *medicationGormRepository) Delete(ctx context.Context, id uint) error {
	return translate(r.db.Session(ctx).Where("medication_id = ?", id).Delete(&entities.Medication{}).Error)
}

func orderTimings(tx *gorm.DB) *gorm.DB {
	return tx.Order("timing_id ASC")
}
