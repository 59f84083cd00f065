package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type medication struct {
	MedicationID uint     `json:"medication_id"`
	Name         string   `json:"name"`
	Dosage       string   `json:"dosage"`
	IsAsNeeded   bool     `json:"is_as_needed"`
	Memo         *string  `json:"memo"`
	Timings      []timing `json:"timings"`
}

type timing struct {
	TimingID uint   `json:"timing_id"`
	TakeTime string `json:"take_time"`
}

type intakeRecord struct {
	RecordID     uint      `json:"record_id"`
	MedicationID uint      `json:"medication_id"`
	TimingID     *uint     `json:"timing_id"`
	TakenAt      time.Time `json:"taken_at"`
}

type session struct {
	token  string
	userID uint
}

// apiClient talks to the medication API on behalf of one signed-in user.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *apiClient) login(ctx context.Context, email, password string) (session, error) {
	form := url.Values{"username": {email}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return session{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		AccessToken string `json:"access_token"`
		UserID      uint   `json:"user_id"`
	}
	if err := a.do(req, &out); err != nil {
		return session{}, err
	}
	return session{token: out.AccessToken, userID: out.UserID}, nil
}

func (a *apiClient) register(ctx context.Context, email, username, password string) error {
	body, err := json.Marshal(map[string]string{"email": email, "username": username, "password": password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/users/", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		UserID uint `json:"user_id"`
	}
	return a.do(req, &out)
}

func (a *apiClient) medications(ctx context.Context, s session) ([]medication, error) {
	var out []medication
	err := a.get(ctx, s, fmt.Sprintf("/users/%d/medications/", s.userID), &out)
	return out, err
}

func (a *apiClient) todayRecords(ctx context.Context, s session) ([]intakeRecord, error) {
	var out []intakeRecord
	err := a.get(ctx, s, fmt.Sprintf("/users/%d/records/today", s.userID), &out)
	return out, err
}

func (a *apiClient) logIntake(ctx context.Context, s session, medicationID uint, timingID *uint) (intakeRecord, error) {
	body, err := json.Marshal(map[string]any{"medication_id": medicationID, "timing_id": timingID})
	if err != nil {
		return intakeRecord{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/users/%d/intake-records/", a.baseURL, s.userID), strings.NewReader(string(body)))
	if err != nil {
		return intakeRecord{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	var out intakeRecord
	err = a.do(req, &out)
	return out, err
}

// newMedication is the body of a create request; timings are "HH:MM" strings.
type newMedication struct {
	Name       string   `json:"name"`
	Dosage     string   `json:"dosage"`
	IsAsNeeded bool     `json:"is_as_needed"`
	Memo       *string  `json:"memo"`
	Timings    []string `json:"timings"`
}

func (a *apiClient) createMedication(ctx context.Context, s session, med newMedication) (medication, error) {
	body, err := json.Marshal(med)
	if err != nil {
		return medication{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/users/%d/medications/", a.baseURL, s.userID), strings.NewReader(string(body)))
	if err != nil {
		return medication{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	var out medication
	err = a.do(req, &out)
	return out, err
}

func (a *apiClient) deleteMedication(ctx context.Context, s session, medicationID uint) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/users/%d/medications/%d", a.baseURL, s.userID, medicationID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	return a.do(req, nil)
}

func (a *apiClient) get(ctx context.Context, s session, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	return a.do(req, out)
}

func (a *apiClient) do(req *http.Request, out any) error {
	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("API not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Detail != "" {
			return fmt.Errorf("%s (%d)", apiErr.Detail, resp.StatusCode)
		}
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
