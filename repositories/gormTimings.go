package repositories

import (
	"context"

	"github.com/harumaki2000/medication-app/db"
	"github.com/harumaki2000/medication-app/entities"
)

type timingGormRepository struct {
	db db.Database
}

func NewTimingGormRepository(database db.Database) TimingRepository {
	return &timingGormRepository{db: database}
}

// CreateBatch inserts timings in slice order, so ids follow submission order.
func (r *timingGormRepository) CreateBatch(ctx context.Context, timings []entities.MedicationTiming) error {
	if len(timings) == 0 {
		return nil
	}
	for i := range timings {
		if err := r.db.Session(ctx).Create(&timings[i]).Error; err != nil {
			return translate(err)
		}
	}
	return nil
}

func (r *timingGormRepository) GetByID(ctx context.Context, id uint) (*entities.MedicationTiming, error) {
	var timing entities.MedicationTiming
	if err := r.db.Session(ctx).Where("timing_id = ?", id).First(&timing).Error; err != nil {
		return nil, translate(err)
	}
	return &timing, nil
}

func (r *timingGormRepository) DeleteByMedicationID(ctx context.Context, medicationID uint) error {
	return translate(r.db.Session(ctx).Where("medication_id = ?", medicationID).Delete(&entities.MedicationTiming{}).Error)
}
