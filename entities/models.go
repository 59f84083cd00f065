package entities

// All lists every persisted model in dependency order, parents first.
func All() []any {
	return []any{&User{}, &Medication{}, &MedicationTiming{}, &IntakeRecord{}}
}
