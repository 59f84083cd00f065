package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:8000"

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

type step int

const (
	stepMenu step = iota
	stepEnteringEmail
	stepEnteringUsername
	stepEnteringPassword
	stepLoggingIn
	stepLoading
	stepDashboard
	stepLogging
	stepMedName
	stepMedDosage
	stepMedTimings
	stepSaving
	stepConfirmDelete
)

var menuItems = []string{"Log in", "Create account"}

// textSteps take typed input into currentInput.
var textSteps = map[step]bool{
	stepEnteringEmail:    true,
	stepEnteringUsername: true,
	stepEnteringPassword: true,
	stepMedName:          true,
	stepMedDosage:        true,
	stepMedTimings:       true,
}

// doseRow is one line of the dashboard: a scheduled timing, or an
// unscheduled dose for as-needed medications.
type doseRow struct {
	med    medication
	timing *timing
	taken  int
}

func (r doseRow) timingID() *uint {
	if r.timing == nil {
		return nil
	}
	id := r.timing.TimingID
	return &id
}

// buildRows lays out every dose the user can log today and counts the
// records already logged against each of them.
func buildRows(meds []medication, today []intakeRecord) []doseRow {
	var rows []doseRow
	for _, med := range meds {
		for i := range med.Timings {
			rows = append(rows, doseRow{med: med, timing: &med.Timings[i]})
		}
		if med.IsAsNeeded || len(med.Timings) == 0 {
			rows = append(rows, doseRow{med: med})
		}
	}

	for i := range rows {
		for _, rec := range today {
			if rec.MedicationID != rows[i].med.MedicationID {
				continue
			}
			switch {
			case rows[i].timing == nil && rec.TimingID == nil:
				rows[i].taken++
			case rows[i].timing != nil && rec.TimingID != nil && *rec.TimingID == rows[i].timing.TimingID:
				rows[i].taken++
			}
		}
	}
	return rows
}

type model struct {
	api          *apiClient
	step         step
	menuCursor   int
	registering  bool
	email        string
	username     string
	session      session
	rows         []doseRow
	cursor       int
	draft        newMedication
	currentInput string
	message      string
	quitting     bool
}

type loginSuccessMsg struct{ session session }
type dashboardMsg struct {
	meds  []medication
	today []intakeRecord
}
type intakeLoggedMsg struct{ row doseRow }
type medicationSavedMsg struct{ med medication }
type medicationDeletedMsg struct{ name string }
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func initialModel(api *apiClient) model {
	return model{api: api, step: stepMenu}
}

func (m model) Init() tea.Cmd {
	return nil
}

func loginUser(api *apiClient, email, password string) tea.Cmd {
	return func() tea.Msg {
		s, err := api.login(context.Background(), email, password)
		if err != nil {
			return errMsg{err}
		}
		return loginSuccessMsg{session: s}
	}
}

func registerUser(api *apiClient, email, username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := api.register(ctx, email, username, password); err != nil {
			return errMsg{fmt.Errorf("creating account: %w", err)}
		}
		s, err := api.login(ctx, email, password)
		if err != nil {
			return errMsg{err}
		}
		return loginSuccessMsg{session: s}
	}
}

func loadDashboard(api *apiClient, s session) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		meds, err := api.medications(ctx, s)
		if err != nil {
			return errMsg{fmt.Errorf("loading medications: %w", err)}
		}
		today, err := api.todayRecords(ctx, s)
		if err != nil {
			return errMsg{fmt.Errorf("loading today's records: %w", err)}
		}
		return dashboardMsg{meds: meds, today: today}
	}
}

func logIntake(api *apiClient, s session, row doseRow) tea.Cmd {
	return func() tea.Msg {
		if _, err := api.logIntake(context.Background(), s, row.med.MedicationID, row.timingID()); err != nil {
			return errMsg{fmt.Errorf("logging intake: %w", err)}
		}
		return intakeLoggedMsg{row: row}
	}
}

func saveMedication(api *apiClient, s session, draft newMedication) tea.Cmd {
	return func() tea.Msg {
		med, err := api.createMedication(context.Background(), s, draft)
		if err != nil {
			return errMsg{fmt.Errorf("saving medication: %w", err)}
		}
		return medicationSavedMsg{med: med}
	}
}

func deleteMedication(api *apiClient, s session, med medication) tea.Cmd {
	return func() tea.Msg {
		if err := api.deleteMedication(context.Background(), s, med.MedicationID); err != nil {
			return errMsg{fmt.Errorf("deleting medication: %w", err)}
		}
		return medicationDeletedMsg{name: med.Name}
	}
}

// parseTimings splits "08:00, 20:00" into its entries. An empty list means
// the medication is taken as needed.
func parseTimings(input string) []string {
	timings := []string{}
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			timings = append(timings, part)
		}
	}
	return timings
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.step == stepConfirmDelete {
			return m.confirmDelete(msg)
		}

		switch msg.Type {
		case tea.KeyEsc:
			switch m.step {
			case stepMedName, stepMedDosage, stepMedTimings:
				m.currentInput = ""
				m.step = stepDashboard
			case stepEnteringEmail, stepEnteringUsername, stepEnteringPassword:
				m.currentInput = ""
				m.step = stepMenu
			}

		case tea.KeyUp:
			m.moveCursor(-1)

		case tea.KeyDown:
			m.moveCursor(1)

		case tea.KeyBackspace:
			if len(m.currentInput) > 0 {
				m.currentInput = m.currentInput[:len(m.currentInput)-1]
			}

		case tea.KeySpace:
			if textSteps[m.step] {
				m.currentInput += " "
			}

		case tea.KeyRunes:
			if textSteps[m.step] {
				m.currentInput += string(msg.Runes)
				break
			}
			return m.command(msg.String())

		case tea.KeyEnter:
			return m.submit()
		}

	case loginSuccessMsg:
		m.session = msg.session
		m.step = stepLoading
		m.message = successStyle.Render("✓ Logged in as " + m.email)
		return m, loadDashboard(m.api, m.session)

	case dashboardMsg:
		m.rows = buildRows(msg.meds, msg.today)
		if m.cursor >= len(m.rows) {
			m.cursor = max(len(m.rows)-1, 0)
		}
		m.step = stepDashboard

	case intakeLoggedMsg:
		m.message = successStyle.Render(fmt.Sprintf("✓ %s logged at %s", msg.row.med.Name, time.Now().Format("15:04")))
		m.step = stepLoading
		return m, loadDashboard(m.api, m.session)

	case medicationSavedMsg:
		m.message = successStyle.Render("✓ Added " + msg.med.Name)
		m.step = stepLoading
		return m, loadDashboard(m.api, m.session)

	case medicationDeletedMsg:
		m.message = successStyle.Render("✓ Deleted " + msg.name)
		m.step = stepLoading
		return m, loadDashboard(m.api, m.session)

	case errMsg:
		m.message = errorStyle.Render("✗ " + msg.err.Error())
		switch m.step {
		case stepLoggingIn:
			m.step = stepMenu
		case stepLoading, stepLogging, stepSaving:
			m.step = stepDashboard
		}
	}

	return m, nil
}

func (m *model) moveCursor(delta int) {
	switch m.step {
	case stepMenu:
		m.menuCursor = min(max(m.menuCursor+delta, 0), len(menuItems)-1)
	case stepDashboard:
		m.cursor = min(max(m.cursor+delta, 0), max(len(m.rows)-1, 0))
	}
}

// command handles single-key shortcuts outside text entry.
func (m model) command(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "k":
		m.moveCursor(-1)
	case "j":
		m.moveCursor(1)
	}
	if m.step != stepDashboard {
		return m, nil
	}

	switch key {
	case "r":
		m.step = stepLoading
		return m, loadDashboard(m.api, m.session)
	case "a":
		m.draft = newMedication{}
		m.message = ""
		m.step = stepMedName
	case "d":
		if len(m.rows) > 0 {
			m.message = ""
			m.step = stepConfirmDelete
		}
	}
	return m, nil
}

func (m model) confirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "y" {
		m.step = stepDashboard
		return m, nil
	}
	med := m.rows[m.cursor].med
	m.step = stepSaving
	m.message = fmt.Sprintf("Deleting %s...", med.Name)
	return m, deleteMedication(m.api, m.session, med)
}

func (m model) submit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.currentInput)

	switch m.step {
	case stepMenu:
		m.registering = m.menuCursor == 1
		m.message = ""
		m.step = stepEnteringEmail

	case stepEnteringEmail:
		if input != "" {
			m.email = input
			m.currentInput = ""
			m.step = stepEnteringPassword
			if m.registering {
				m.step = stepEnteringUsername
			}
		}

	case stepEnteringUsername:
		if input != "" {
			m.username = input
			m.currentInput = ""
			m.step = stepEnteringPassword
		}

	case stepEnteringPassword:
		if m.currentInput != "" {
			password := m.currentInput
			m.currentInput = ""
			m.step = stepLoggingIn
			if m.registering {
				m.message = "Creating account..."
				return m, registerUser(m.api, m.email, m.username, password)
			}
			m.message = "Logging in..."
			return m, loginUser(m.api, m.email, password)
		}

	case stepDashboard:
		if len(m.rows) > 0 {
			row := m.rows[m.cursor]
			m.step = stepLogging
			m.message = fmt.Sprintf("Logging %s...", row.med.Name)
			return m, logIntake(m.api, m.session, row)
		}

	case stepMedName:
		if input != "" {
			m.draft.Name = input
			m.currentInput = ""
			m.step = stepMedDosage
		}

	case stepMedDosage:
		if input != "" {
			m.draft.Dosage = input
			m.currentInput = ""
			m.step = stepMedTimings
		}

	case stepMedTimings:
		m.draft.Timings = parseTimings(input)
		m.draft.IsAsNeeded = len(m.draft.Timings) == 0
		m.currentInput = ""
		m.step = stepSaving
		m.message = fmt.Sprintf("Saving %s...", m.draft.Name)
		return m, saveMedication(m.api, m.session, m.draft)
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("💊 Medication Tracker\n\n"))

	switch m.step {
	case stepMenu:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		for i, item := range menuItems {
			cursor := " "
			style := normalStyle
			if m.menuCursor == i {
				cursor = ">"
				style = selectedStyle
			}
			s.WriteString(fmt.Sprintf("%s %s\n", cursor, style.Render(item)))
		}
		s.WriteString("\nUse ↑/↓, Enter to choose, q to quit\n")

	case stepEnteringEmail:
		writePrompt(&s, "Enter your email:", m.currentInput)

	case stepEnteringUsername:
		writePrompt(&s, "Choose a username:", m.currentInput)

	case stepEnteringPassword:
		writePrompt(&s, "Enter your password:", strings.Repeat("•", len(m.currentInput)))

	case stepLoggingIn:
		s.WriteString(m.message + "\n")

	case stepMedName:
		writePrompt(&s, "Medication name:", m.currentInput)

	case stepMedDosage:
		writePrompt(&s, "Dosage (e.g. 100mg):", m.currentInput)

	case stepMedTimings:
		writePrompt(&s, "Times to take it, comma separated (blank = as needed):", m.currentInput)

	case stepConfirmDelete:
		med := m.rows[m.cursor].med
		s.WriteString(errorStyle.Render(fmt.Sprintf("Delete %s and all of its records? (y/N)", med.Name)) + "\n")

	case stepLoading, stepLogging, stepSaving, stepDashboard:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		// records/today is keyed by the UTC date
		s.WriteString(promptStyle.Render(fmt.Sprintf("Today, %s (UTC)\n\n", time.Now().UTC().Format("Mon 2 Jan"))))

		if len(m.rows) == 0 {
			s.WriteString(mutedStyle.Render("No medications registered yet.") + "\n")
		}
		for i, row := range m.rows {
			cursor := " "
			style := normalStyle
			if m.cursor == i {
				cursor = ">"
				style = selectedStyle
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n", cursor, style.Render(rowLabel(row)), rowStatus(row)))
		}

		if m.step == stepDashboard {
			s.WriteString("\nUse ↑/↓, Enter to log a dose, a to add, d to delete, r to refresh, q to quit\n")
		} else {
			s.WriteString(mutedStyle.Render("\nWorking...") + "\n")
		}
	}

	return s.String()
}

func writePrompt(s *strings.Builder, prompt, input string) {
	s.WriteString(promptStyle.Render(prompt + "\n"))
	s.WriteString(inputStyle.Render("> " + input))
	s.WriteString("\n\nPress Enter, Esc to go back\n")
}

func rowLabel(row doseRow) string {
	when := "as needed"
	if row.timing != nil {
		when = strings.TrimSuffix(row.timing.TakeTime, ":00")
	}
	return fmt.Sprintf("%-8s %s %s", when, row.med.Name, mutedStyle.Render(row.med.Dosage))
}

func rowStatus(row doseRow) string {
	switch {
	case row.taken == 0:
		return ""
	case row.timing == nil:
		return successStyle.Render(fmt.Sprintf("✓ taken %d× today", row.taken))
	default:
		return successStyle.Render("✓ taken")
	}
}

func main() {
	apiURL := os.Getenv("MEDTRACK_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	cmd := &cobra.Command{
		Use:          "medtrack",
		Short:        "Manage medications and log today's doses from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(initialModel(newAPIClient(apiURL)))
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", apiURL, "Base URL of the medication API (env MEDTRACK_API_URL)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
