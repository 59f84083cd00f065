package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harumaki2000/medication-app/confs"
	"github.com/harumaki2000/medication-app/db/dbtest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t *testing.T
	h http.Handler
}

func newAPI(t *testing.T, requireAuth bool) *apiClient {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &confs.Config{
		SecretKey:          "test-secret",
		AccessTokenTTL:     30 * time.Minute,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		GinMode:            gin.TestMode,
		RequireAuth:        requireAuth,
	}
	return &apiClient{t: t, h: NewServer(dbtest.New(t), cfg, log).Handler()}
}

func (a *apiClient) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

func (a *apiClient) login(email, password string) *httptest.ResponseRecorder {
	a.t.Helper()
	form := url.Values{"username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type userResp struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type timingResp struct {
	TimingID     uint   `json:"timing_id"`
	MedicationID uint   `json:"medication_id"`
	TakeTime     string `json:"take_time"`
}

type medicationResp struct {
	MedicationID uint         `json:"medication_id"`
	UserID       uint         `json:"user_id"`
	Name         string       `json:"name"`
	Dosage       string       `json:"dosage"`
	IsAsNeeded   bool         `json:"is_as_needed"`
	Memo         *string      `json:"memo"`
	Timings      []timingResp `json:"timings"`
}

type recordResp struct {
	RecordID     uint      `json:"record_id"`
	UserID       uint      `json:"user_id"`
	MedicationID uint      `json:"medication_id"`
	TimingID     *uint     `json:"timing_id"`
	TakenAt      time.Time `json:"taken_at"`
}

func (a *apiClient) register(email, username string) userResp {
	a.t.Helper()
	w := a.do(http.MethodPost, "/users/", gin.H{"email": email, "username": username, "password": "pw123"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[userResp](a.t, w)
}

func (a *apiClient) createAspirin(userID uint, headers ...string) medicationResp {
	a.t.Helper()
	w := a.do(http.MethodPost, fmt.Sprintf("/users/%d/medications/", userID), gin.H{
		"name": "Aspirin", "dosage": "100mg", "is_as_needed": false, "timings": []string{"08:00", "20:00"},
	}, headers...)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[medicationResp](a.t, w)
}

func TestEndToEnd_RegisterMedicateAndListToday(t *testing.T) {
	api := newAPI(t, false)

	alice := api.register("alice@example.com", "alice")
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.Equal(t, "alice", alice.Username)

	med := api.createAspirin(alice.UserID)
	require.Len(t, med.Timings, 2)
	assert.Equal(t, "08:00:00", med.Timings[0].TakeTime)
	assert.Equal(t, "20:00:00", med.Timings[1].TakeTime)
	assert.Nil(t, med.Memo)

	w := api.do(http.MethodPost, fmt.Sprintf("/users/%d/intake-records/", alice.UserID), gin.H{
		"medication_id": med.MedicationID, "timing_id": med.Timings[0].TimingID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec := decode[recordResp](t, w)
	assert.WithinDuration(t, time.Now(), rec.TakenAt, 5*time.Second)

	w = api.do(http.MethodGet, fmt.Sprintf("/users/%d/records/today", alice.UserID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	today := decode[[]recordResp](t, w)
	require.Len(t, today, 1)
	assert.Equal(t, med.MedicationID, today[0].MedicationID)
	require.NotNil(t, today[0].TimingID)
	assert.Equal(t, med.Timings[0].TimingID, *today[0].TimingID)

	w = api.do(http.MethodGet, fmt.Sprintf("/users/%d/intake-records/", alice.UserID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]recordResp](t, w), 1)

	w = api.do(http.MethodGet, fmt.Sprintf("/users/%d/medications/", alice.UserID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	meds := decode[[]medicationResp](t, w)
	require.Len(t, meds, 1)
	assert.Len(t, meds[0].Timings, 2)
}

func TestRegister_ConflictAndValidation(t *testing.T) {
	api := newAPI(t, false)
	api.register("alice@example.com", "alice")

	w := api.do(http.MethodPost, "/users/", gin.H{"email": "alice@example.com", "username": "x", "password": "p"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["detail"], "already registered")

	w = api.do(http.MethodPost, "/users/", gin.H{"email": "x@example.com", "username": "alice", "password": "p"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/users/", gin.H{"email": "not-an-email", "username": "bob", "password": "p"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, "/users/", gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, "/users/", gin.H{"email": "bob@example.com", "username": "bob", "password": strings.Repeat("p", 73)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["detail"], "72 bytes")
}

func TestUsersOptions(t *testing.T) {
	api := newAPI(t, false)
	w := api.do(http.MethodOptions, "/users/", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORS_AllowedOriginPreflight(t *testing.T) {
	api := newAPI(t, false)

	w := api.do(http.MethodOptions, "/users/1/medications/", nil,
		"Origin", "http://localhost:5173",
		"Access-Control-Request-Method", "POST",
	)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	w = api.do(http.MethodGet, "/", nil, "Origin", "http://evil.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreateMedication_Errors(t *testing.T) {
	api := newAPI(t, false)
	alice := api.register("alice@example.com", "alice")

	w := api.do(http.MethodPost, "/users/999/medications/", gin.H{"name": "A", "dosage": "1", "timings": []string{}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, fmt.Sprintf("/users/%d/medications/", alice.UserID),
		gin.H{"name": "A", "dosage": "1", "timings": []string{"25:99"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, fmt.Sprintf("/users/%d/medications/", alice.UserID),
		gin.H{"dosage": "1", "timings": []string{"08:00"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodGet, "/users/abc/medications/", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLogIntake_OwnershipAndTiming(t *testing.T) {
	api := newAPI(t, false)
	alice := api.register("alice@example.com", "alice")
	bob := api.register("bob@example.com", "bob")
	aliceMed := api.createAspirin(alice.UserID)
	bobMed := api.createAspirin(bob.UserID)

	w := api.do(http.MethodPost, fmt.Sprintf("/users/%d/intake-records/", alice.UserID),
		gin.H{"medication_id": bobMed.MedicationID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, fmt.Sprintf("/users/%d/intake-records/", alice.UserID),
		gin.H{"medication_id": aliceMed.MedicationID, "timing_id": bobMed.Timings[0].TimingID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPost, fmt.Sprintf("/users/%d/intake-records/", alice.UserID),
		gin.H{"medication_id": aliceMed.MedicationID, "taken_at": "yesterday-ish"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodPost, fmt.Sprintf("/users/%d/intake-records/", alice.UserID),
		gin.H{"medication_id": aliceMed.MedicationID, "taken_at": "2026-10-01T07:45:00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec := decode[recordResp](t, w)
	assert.True(t, rec.TakenAt.Equal(time.Date(2026, 10, 1, 7, 45, 0, 0, time.UTC)))
	assert.Nil(t, rec.TimingID)
}

func TestListIntakeRecords_DateFilter(t *testing.T) {
	api := newAPI(t, false)
	alice := api.register("alice@example.com", "alice")
	med := api.createAspirin(alice.UserID)

	for _, ts := range []string{"2026-10-01T00:00:00Z", "2026-10-01T23:59:59Z", "2026-10-02T00:00:00Z"} {
		w := api.do(http.MethodPost, fmt.Sprintf("/users/%d/intake-records/", alice.UserID),
			gin.H{"medication_id": med.MedicationID, "taken_at": ts})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := api.do(http.MethodGet, fmt.Sprintf("/users/%d/intake-records/?date=2026-10-01", alice.UserID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]recordResp](t, w), 2)

	w = api.do(http.MethodGet, fmt.Sprintf("/users/%d/intake-records/?date=2026-10-02", alice.UserID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]recordResp](t, w), 1)

	w = api.do(http.MethodGet, fmt.Sprintf("/users/%d/intake-records/?date=01-10-2026", alice.UserID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["detail"], "YYYY-MM-DD")
}

func TestDeleteMedication(t *testing.T) {
	api := newAPI(t, false)
	alice := api.register("alice@example.com", "alice")
	bob := api.register("bob@example.com", "bob")
	med := api.createAspirin(alice.UserID)

	w := api.do(http.MethodPost, fmt.Sprintf("/users/%d/intake-records/", alice.UserID),
		gin.H{"medication_id": med.MedicationID, "timing_id": med.Timings[1].TimingID})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodDelete, fmt.Sprintf("/users/%d/medications/%d", bob.UserID, med.MedicationID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodDelete, fmt.Sprintf("/users/%d/medications/%d", alice.UserID, med.MedicationID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = api.do(http.MethodDelete, fmt.Sprintf("/users/%d/medications/%d", alice.UserID, med.MedicationID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, fmt.Sprintf("/users/%d/medications/", alice.UserID), nil)
	assert.Empty(t, decode[[]medicationResp](t, w))

	w = api.do(http.MethodGet, fmt.Sprintf("/users/%d/records/today", alice.UserID), nil)
	assert.Empty(t, decode[[]recordResp](t, w))
}

func TestLogin(t *testing.T) {
	api := newAPI(t, false)
	alice := api.register("alice@example.com", "alice")

	w := api.login("alice@example.com", "pw123")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
	assert.EqualValues(t, alice.UserID, body["user_id"])

	wrongPw := api.login("alice@example.com", "nope")
	unknown := api.login("ghost@example.com", "pw123")
	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	assert.Equal(t, "Bearer", wrongPw.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "Bearer", unknown.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader("username=alice%40example.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	api.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRequireAuth(t *testing.T) {
	api := newAPI(t, true)
	alice := api.register("alice@example.com", "alice")
	bob := api.register("bob@example.com", "bob")

	w := api.do(http.MethodGet, fmt.Sprintf("/users/%d/medications/", alice.UserID), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodGet, fmt.Sprintf("/users/%d/medications/", alice.UserID), nil, "Authorization", "Bearer junk")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := decode[map[string]any](t, api.login("alice@example.com", "pw123"))["access_token"].(string)
	auth := []string{"Authorization", "Bearer " + token}

	api.createAspirin(alice.UserID, auth...)

	w = api.do(http.MethodGet, fmt.Sprintf("/users/%d/medications/", alice.UserID), nil, auth...)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]medicationResp](t, w), 1)

	w = api.do(http.MethodGet, fmt.Sprintf("/users/%d/medications/", bob.UserID), nil, auth...)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRootHealthAndMetrics(t *testing.T) {
	api := newAPI(t, false)

	w := api.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "API is running!", decode[map[string]string](t, w)["message"])

	w = api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "medication_app_http_requests_total")
}
