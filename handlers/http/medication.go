package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harumaki2000/medication-app/usecases"
	"github.com/sirupsen/logrus"
)

type MedicationHandler struct {
	useCase *usecases.MedicationUseCase
	log     logrus.FieldLogger
}

func NewMedicationHandler(useCase *usecases.MedicationUseCase, log logrus.FieldLogger) *MedicationHandler {
	return &MedicationHandler{useCase: useCase, log: log}
}

// CreateMedication handles POST /users/:user_id/medications/
func (h *MedicationHandler) CreateMedication(c *gin.Context) {
	userID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}

	var req MedicationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}

	medication, err := h.useCase.CreateMedication(c.Request.Context(), userID, usecases.NewMedication{
		Name:       req.Name,
		Dosage:     req.Dosage,
		IsAsNeeded: req.IsAsNeeded,
		Memo:       req.Memo,
		Timings:    req.Timings,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, medication)
}

// ListMedications handles GET /users/:user_id/medications/
func (h *MedicationHandler) ListMedications(c *gin.Context) {
	userID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}

	medications, err := h.useCase.ListMedications(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, medications)
}

// DeleteMedication handles DELETE /users/:user_id/medications/:medication_id
func (h *MedicationHandler) DeleteMedication(c *gin.Context) {
	userID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}
	medicationID, ok := uintParam(c, "medication_id")
	if !ok {
		return
	}

	deleted, err := h.useCase.DeleteMedication(c.Request.Context(), medicationID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Medication not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
