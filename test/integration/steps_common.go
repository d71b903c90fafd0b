package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	"github.com/ssshoffice/office-in-go/pkg/server/store"
	gormstore "github.com/ssshoffice/office-in-go/pkg/server/store/gorm"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte

	subjectIDs    map[string]string // login id -> subject id
	accessTokens  map[string]string // login id -> access token
	refreshTokens map[string]string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:            tc,
		subjectIDs:    make(map[string]string),
		accessTokens:  make(map[string]string),
		refreshTokens: make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.ResetData()
	})

	// Background steps
	sc.Step(`^the office server is running$`, s.theOfficeServerIsRunning)
	sc.Step(`^a user "([^"]*)" with password "([^"]*)" and permissions "([^"]*)"$`, s.aUserWithPasswordAndPermissions)

	// Session steps
	sc.Step(`^"([^"]*)" logs in with password "([^"]*)"$`, s.logsInWithPassword)
	sc.Step(`^"([^"]*)" refreshes the token pair$`, s.refreshesTheTokenPair)
	sc.Step(`^I should receive an access and a refresh token$`, s.iShouldReceiveATokenPair)

	// Attendance steps
	sc.Step(`^"([^"]*)" has an open work session on "([^"]*)"$`, s.hasAnOpenWorkSessionOn)
	sc.Step(`^"([^"]*)" clocks in$`, s.clocksIn)
	sc.Step(`^"([^"]*)" clocks out with detail "([^"]*)"$`, s.clocksOutWithDetail)
	sc.Step(`^"([^"]*)" lists today's members$`, s.listsTodaysMembers)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should report auto-closed date "([^"]*)"$`, s.theResponseShouldReportAutoClosedDate)
	sc.Step(`^the response should list member "([^"]*)"$`, s.theResponseShouldListMember)
	sc.Step(`^the work session of "([^"]*)" on "([^"]*)" should be closed at "([^"]*)"$`, s.theWorkSessionShouldBeClosedAt)
	sc.Step(`^today's work session of "([^"]*)" should be closed$`, s.todaysWorkSessionShouldBeClosed)
	sc.Step(`^today's work session of "([^"]*)" should have detail "([^"]*)"$`, s.todaysWorkSessionShouldHaveDetail)
}

func (s *StepsContext) theOfficeServerIsRunning() error {
	resp, err := s.tc.HTTPClient.Get(s.tc.ServerURL + "/health")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (s *StepsContext) aUserWithPasswordAndPermissions(loginID, password, codes string) error {
	hashed, err := s.tc.Codec.Hash(password)
	if err != nil {
		return err
	}

	subject := &store.Subject{
		ID:              uuid.NewString(),
		LoginID:         loginID,
		DisplayName:     "member " + loginID,
		HashedPassword:  hashed,
		PermissionCodes: strings.Split(codes, ","),
	}
	if err := gormstore.NewUsersStore(s.tc.DB).Create(subject); err != nil {
		return err
	}
	s.subjectIDs[loginID] = subject.ID
	return nil
}

func (s *StepsContext) logsInWithPassword(loginID, password string) error {
	req, err := http.NewRequest("POST", s.tc.ServerURL+"/login", nil)
	if err != nil {
		return err
	}
	cred := base64.StdEncoding.EncodeToString([]byte(loginID + ":" + password))
	req.Header.Set("Authorization", "Basic "+cred)

	if err := s.send(req); err != nil {
		return err
	}

	if s.response.StatusCode == http.StatusOK {
		var pair struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.Unmarshal(s.responseBody, &pair); err != nil {
			return err
		}
		s.accessTokens[loginID] = pair.AccessToken
		s.refreshTokens[loginID] = pair.RefreshToken
	}
	return nil
}

func (s *StepsContext) refreshesTheTokenPair(loginID string) error {
	refresh, ok := s.refreshTokens[loginID]
	if !ok {
		return fmt.Errorf("no refresh token stored for %q", loginID)
	}

	req, err := http.NewRequest("POST", s.tc.ServerURL+"/refresh", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+refresh)

	if err := s.send(req); err != nil {
		return err
	}

	if s.response.StatusCode == http.StatusOK {
		var pair struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.Unmarshal(s.responseBody, &pair); err != nil {
			return err
		}
		s.accessTokens[loginID] = pair.AccessToken
		s.refreshTokens[loginID] = pair.RefreshToken
	}
	return nil
}

func (s *StepsContext) iShouldReceiveATokenPair() error {
	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(s.responseBody, &pair); err != nil {
		return fmt.Errorf("response is not a token pair: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("incomplete token pair: %s", s.responseBody)
	}
	return nil
}

func (s *StepsContext) hasAnOpenWorkSessionOn(loginID, baseDate string) error {
	subjectID, ok := s.subjectIDs[loginID]
	if !ok {
		return fmt.Errorf("unknown user %q", loginID)
	}
	return s.tc.DB.Exec(
		`INSERT INTO work_sessions (subject_id, base_date) VALUES (?, ?)`,
		subjectID, baseDate,
	).Error
}

func (s *StepsContext) clocksIn(loginID string) error {
	return s.authedRequest(loginID, "POST", "/work", "")
}

func (s *StepsContext) clocksOutWithDetail(loginID, detail string) error {
	body := fmt.Sprintf(`{"workDetail":%q}`, detail)
	return s.authedRequest(loginID, "PATCH", "/work", body)
}

func (s *StepsContext) listsTodaysMembers(loginID string) error {
	return s.authedRequest(loginID, "GET", "/work/today", "")
}

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseShouldReportAutoClosedDate(baseDate string) error {
	var result struct {
		Success         bool     `json:"success"`
		AutoClosedDates []string `json:"autoClosedDates"`
	}
	if err := json.Unmarshal(s.responseBody, &result); err != nil {
		return err
	}
	for _, d := range result.AutoClosedDates {
		if d == baseDate {
			return nil
		}
	}
	return fmt.Errorf("date %q not in auto-closed list %v", baseDate, result.AutoClosedDates)
}

func (s *StepsContext) theResponseShouldListMember(displayName string) error {
	var members []struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(s.responseBody, &members); err != nil {
		return err
	}
	for _, m := range members {
		if m.DisplayName == displayName {
			return nil
		}
	}
	return fmt.Errorf("member %q not in %s", displayName, s.responseBody)
}

func (s *StepsContext) theWorkSessionShouldBeClosedAt(loginID, baseDate, wantTime string) error {
	offTime, err := s.offTime(loginID, baseDate)
	if err != nil {
		return err
	}
	if offTime == nil {
		return fmt.Errorf("session on %s is still open", baseDate)
	}
	if got := offTime.In(time.Local).Format("15:04:05"); got != wantTime {
		return fmt.Errorf("expected off time %s, got %s", wantTime, got)
	}
	return nil
}

func (s *StepsContext) todaysWorkSessionShouldBeClosed(loginID string) error {
	offTime, err := s.offTime(loginID, time.Now().Format("2006-01-02"))
	if err != nil {
		return err
	}
	if offTime == nil {
		return fmt.Errorf("today's session is still open")
	}
	return nil
}

func (s *StepsContext) todaysWorkSessionShouldHaveDetail(loginID, detail string) error {
	subjectID, ok := s.subjectIDs[loginID]
	if !ok {
		return fmt.Errorf("unknown user %q", loginID)
	}

	var got *string
	err := s.tc.DB.Raw(
		`SELECT work_detail FROM work_sessions WHERE subject_id = ? AND base_date = ?`,
		subjectID, time.Now().Format("2006-01-02"),
	).Scan(&got).Error
	if err != nil {
		return err
	}
	if got == nil || *got != detail {
		return fmt.Errorf("expected detail %q, got %v", detail, got)
	}
	return nil
}

func (s *StepsContext) offTime(loginID, baseDate string) (*time.Time, error) {
	subjectID, ok := s.subjectIDs[loginID]
	if !ok {
		return nil, fmt.Errorf("unknown user %q", loginID)
	}

	var offTime *time.Time
	err := s.tc.DB.Raw(
		`SELECT off_time FROM work_sessions WHERE subject_id = ? AND base_date = ?`,
		subjectID, baseDate,
	).Scan(&offTime).Error
	return offTime, err
}

func (s *StepsContext) authedRequest(loginID, method, path, body string) error {
	access, ok := s.accessTokens[loginID]
	if !ok {
		return fmt.Errorf("no access token stored for %q; log in first", loginID)
	}

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, s.tc.ServerURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+access)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req)
}

func (s *StepsContext) send(req *http.Request) error {
	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	s.response = resp
	s.responseBody = body
	return nil
}
