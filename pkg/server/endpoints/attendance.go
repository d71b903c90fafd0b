package endpoints

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ssshoffice/office-in-go/pkg/attendance"
	"github.com/ssshoffice/office-in-go/pkg/audit"
	"github.com/ssshoffice/office-in-go/pkg/identity"
	"github.com/ssshoffice/office-in-go/pkg/model"
	"github.com/ssshoffice/office-in-go/pkg/server"
	"github.com/ssshoffice/office-in-go/pkg/server/store"
)

// WorkSessionResponse is the wire shape of a work session.
type WorkSessionResponse struct {
	SubjectID  string  `json:"id"`
	BaseDate   string  `json:"baseDate"`
	WorkDetail *string `json:"workDetail"`
	OffTime    *string `json:"offTime"`
}

// ClockOutRequest is the PATCH /work body.
type ClockOutRequest struct {
	WorkDetail string `json:"workDetail"`
}

// MemberResponse is one present member in the today listing.
type MemberResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// RegisterAttendanceEndpoints registers the work-session routes.
func RegisterAttendanceEndpoints(s *server.Server) {
	router := s.Router

	router.HandleFunc("/work/today", handleTodayMembers(s.Attendance)).
		Methods("GET").Name("work.today")
	router.HandleFunc("/work", handleListSessions(s.Attendance)).
		Methods("GET").Name("work.list")
	router.HandleFunc("/work", handleClockIn(s.Attendance)).
		Methods("POST").Name("work.clock-in")
	router.HandleFunc("/work", handleClockOut(s.Attendance)).
		Methods("PATCH").Name("work.clock-out")
	router.HandleFunc("/work", handleDeleteSessions(s.Attendance)).
		Methods("DELETE").Name("work.delete")
}

func handleClockIn(manager *attendance.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		result, err := manager.ClockIn(id.SubjectID)
		if err != nil {
			respondWithAttendanceError(w, err)
			return
		}

		audit.Log(audit.ClockEvent{
			SubjectID:       id.SubjectID,
			BaseDate:        time.Now().Format("2006-01-02"),
			AutoClosedDates: result.AutoClosedDates,
		})
		respondWithJSON(w, http.StatusCreated, result)
	}
}

func handleClockOut(manager *attendance.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		// off defaults to true; ?off=false amends the work detail only.
		off := r.URL.Query().Get("off") != "false"

		// An empty body is a plain clock-out without detail; a body that
		// fails to decode would silently drop the detail, so reject it.
		var req ClockOutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		session, err := manager.ClockOut(id.SubjectID, req.WorkDetail, off)
		if err != nil {
			respondWithAttendanceError(w, err)
			return
		}

		audit.Log(audit.ClockEvent{
			SubjectID: id.SubjectID,
			BaseDate:  session.BaseDate,
			Out:       off,
		})
		respondWithJSON(w, http.StatusOK, toSessionResponse(session))
	}
}

func handleListSessions(manager *attendance.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		query := r.URL.Query()
		targetID := query.Get("id")
		if targetID == "" {
			targetID = id.SubjectID
		}
		startDate := query.Get("startDate")
		endDate := query.Get("endDate")
		if startDate == "" || endDate == "" {
			respondWithError(w, http.StatusBadRequest, "startDate and endDate are required")
			return
		}

		sessions, err := manager.ListSessions(id, targetID, startDate, endDate)
		if err != nil {
			respondWithAttendanceError(w, err)
			return
		}

		responses := make([]WorkSessionResponse, 0, len(sessions))
		for i := range sessions {
			responses = append(responses, *toSessionResponse(&sessions[i]))
		}
		respondWithJSON(w, http.StatusOK, responses)
	}
}

func handleDeleteSessions(manager *attendance.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		query := r.URL.Query()
		targetID := query.Get("id")
		if targetID == "" {
			targetID = id.SubjectID
		}
		rawDates := query.Get("baseDates")
		if rawDates == "" {
			respondWithError(w, http.StatusBadRequest, "baseDates is required")
			return
		}
		baseDates := strings.Split(rawDates, ",")

		affected, err := manager.DeleteSessions(id, targetID, baseDates)
		if err != nil {
			respondWithAttendanceError(w, err)
			return
		}

		audit.Log(audit.SessionDeleteEvent{
			ActorID:   id.SubjectID,
			SubjectID: targetID,
			BaseDates: baseDates,
			Affected:  affected,
		})
		respondWithJSON(w, http.StatusOK, map[string]int64{"affected": affected})
	}
}

func handleTodayMembers(manager *attendance.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjects, err := manager.TodayMembers()
		if err != nil {
			respondWithAttendanceError(w, err)
			return
		}

		members := make([]MemberResponse, 0, len(subjects))
		for _, s := range subjects {
			members = append(members, MemberResponse{ID: s.ID, DisplayName: s.DisplayName})
		}
		respondWithJSON(w, http.StatusOK, members)
	}
}

// respondWithAttendanceError maps manager errors to HTTP statuses. State
// conflicts (double clock-in, closed session, missing session) are 406 so
// clients can tell them from authorization failures.
func respondWithAttendanceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attendance.ErrAlreadyProcessed),
		errors.Is(err, attendance.ErrAlreadyClosed),
		errors.Is(err, attendance.ErrNoActiveSession):
		respondWithError(w, http.StatusNotAcceptable, err.Error())
	case errors.Is(err, attendance.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "No permission")
	case errors.Is(err, store.ErrSessionNotFound):
		respondWithError(w, http.StatusNotFound, "Session not found")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func toSessionResponse(s *model.WorkSession) *WorkSessionResponse {
	resp := &WorkSessionResponse{
		SubjectID:  s.SubjectID,
		BaseDate:   s.BaseDate,
		WorkDetail: s.WorkDetail,
	}
	if s.OffTime != nil {
		formatted := s.OffTime.Format(time.RFC3339)
		resp.OffTime = &formatted
	}
	return resp
}
