package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harumaki2000/medication-app/db"
	"github.com/harumaki2000/medication-app/entities"
	"github.com/harumaki2000/medication-app/repositories"
	"github.com/sirupsen/logrus"
)

// NewMedication is the input to CreateMedication.
type NewMedication struct {
	Name       string
	Dosage     string
	IsAsNeeded bool
	Memo       *string
	Timings    []entities.TimeOfDay
}

type MedicationUseCase struct {
	db    db.Database
	repos repositories.Manager
	log   logrus.FieldLogger
}

func NewMedicationUseCase(database db.Database, repos repositories.Manager, log logrus.FieldLogger) *MedicationUseCase {
	return &MedicationUseCase{db: database, repos: repos, log: log}
}

// CreateMedication writes the medication and one timing per supplied time in
// a single transaction. Timings come back in submission order.
func (uc *MedicationUseCase) CreateMedication(ctx context.Context, userID uint, in NewMedication) (*entities.Medication, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: medication name is required", ErrValidation)
	}
	if strings.TrimSpace(in.Dosage) == "" {
		return nil, fmt.Errorf("%w: dosage is required", ErrValidation)
	}

	medication := &entities.Medication{
		UserID:     userID,
		Name:       in.Name,
		Dosage:     in.Dosage,
		IsAsNeeded: in.IsAsNeeded,
		Memo:       in.Memo,
	}

	err := uc.db.WithTx(ctx, func(tx db.Database) error {
		if _, err := uc.repos.Users(tx).GetByID(ctx, userID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}

		if err := uc.repos.Medications(tx).Create(ctx, medication); err != nil {
			return fmt.Errorf("create medication: %w", err)
		}

		timings := make([]entities.MedicationTiming, len(in.Timings))
		for i, t := range in.Timings {
			timings[i] = entities.MedicationTiming{MedicationID: medication.ID, TakeTime: t}
		}
		if err := uc.repos.Timings(tx).CreateBatch(ctx, timings); err != nil {
			return fmt.Errorf("create timings: %w", err)
		}
		medication.Timings = timings
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.WithFields(logrus.Fields{
		"user_id":       userID,
		"medication_id": medication.ID,
		"timings":       len(medication.Timings),
	}).Info("medication created")
	return medication, nil
}

func (uc *MedicationUseCase) ListMedications(ctx context.Context, userID uint) ([]entities.Medication, error) {
	return uc.repos.Medications(uc.db).GetByUserID(ctx, userID)
}

// GetMedication returns the medication only if userID owns it.
func (uc *MedicationUseCase) GetMedication(ctx context.Context, medicationID, userID uint) (*entities.Medication, error) {
	medication, err := uc.repos.Medications(uc.db).GetByIDForUser(ctx, medicationID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: medication %d", ErrNotFound, medicationID)
	}
	return medication, err
}

// DeleteMedication removes an owned medication with its intake records and
// timings, children first, in one transaction. It reports false when the
// medication does not exist or belongs to someone else.
func (uc *MedicationUseCase) DeleteMedication(ctx context.Context, medicationID, userID uint) (bool, error) {
	deleted := false
	err := uc.db.WithTx(ctx, func(tx db.Database) error {
		if _, err := uc.repos.Medications(tx).GetByIDForUser(ctx, medicationID, userID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil
			}
			return err
		}

		if err := uc.repos.IntakeRecords(tx).DeleteByMedicationID(ctx, medicationID); err != nil {
			return fmt.Errorf("delete intake records: %w", err)
		}
		if err := uc.repos.Timings(tx).DeleteByMedicationID(ctx, medicationID); err != nil {
			return fmt.Errorf("delete timings: %w", err)
		}
		if err := uc.repos.Medications(tx).Delete(ctx, medicationID); err != nil {
			return fmt.Errorf("delete medication: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		uc.log.WithFields(logrus.Fields{"user_id": userID, "medication_id": medicationID}).Info("medication deleted")
	}
	return deleted, nil
}
