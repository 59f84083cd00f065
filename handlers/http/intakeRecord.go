package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harumaki2000/medication-app/metrics"
	"github.com/harumaki2000/medication-app/usecases"
	"github.com/sirupsen/logrus"
)

type IntakeRecordHandler struct {
	intakes     *usecases.IntakeRecordUseCase
	medications *usecases.MedicationUseCase
	log         logrus.FieldLogger
}

func NewIntakeRecordHandler(intakes *usecases.IntakeRecordUseCase, medications *usecases.MedicationUseCase, log logrus.FieldLogger) *IntakeRecordHandler {
	return &IntakeRecordHandler{intakes: intakes, medications: medications, log: log}
}

// CreateIntakeRecord handles POST /users/:user_id/intake-records/
func (h *IntakeRecordHandler) CreateIntakeRecord(c *gin.Context) {
	userID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}

	var req IntakeRecordCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c, err)
		return
	}
	takenAt, err := req.ParsedTakenAt()
	if err != nil {
		respondInvalidBody(c, err)
		return
	}

	ctx := c.Request.Context()

	// the record's user must own the medication
	if _, err := h.medications.GetMedication(ctx, req.MedicationID, userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	if req.TimingID != nil {
		if err := h.intakes.CheckTiming(ctx, req.MedicationID, *req.TimingID); err != nil {
			respondError(c, h.log, err)
			return
		}
	}

	record, err := h.intakes.LogIntake(ctx, userID, req.MedicationID, req.TimingID, takenAt)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	metrics.ObserveIntakeLogged()

	c.JSON(http.StatusOK, record)
}

// ListIntakeRecords handles GET /users/:user_id/intake-records/?date=YYYY-MM-DD
// and defaults to today when date is omitted.
func (h *IntakeRecordHandler) ListIntakeRecords(c *gin.Context) {
	userID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}

	date := h.intakes.Today()
	if raw := c.Query("date"); raw != "" {
		parsed, err := usecases.ParseDate(raw)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		date = parsed
	}

	records, err := h.intakes.ListIntakeRecords(c.Request.Context(), userID, &date)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// ListTodayRecords handles GET /users/:user_id/records/today
func (h *IntakeRecordHandler) ListTodayRecords(c *gin.Context) {
	userID, ok := uintParam(c, "user_id")
	if !ok {
		return
	}

	records, err := h.intakes.ListTodayIntakeRecords(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, records)
}
