package audit

import (
	"fmt"
	"strings"
)

// LoginEvent records a login attempt through the session endpoint.
type LoginEvent struct {
	LoginID      string
	SubjectID    string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) MessageID() string {
	return "login"
}

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully logged in", e.LoginID)
	}
	msg := fmt.Sprintf("%s failed to log in", e.LoginID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e LoginEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e LoginEvent) Facility() int {
	return FacilityAuthPriv
}

func (e LoginEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"login": e.LoginID,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
	if e.SubjectID != "" {
		sd[SDIDAuth]["subject"] = e.SubjectID
	}
	return sd
}

// ClockEvent records a clock-in or clock-out.
type ClockEvent struct {
	SubjectID       string
	BaseDate        string
	Out             bool
	AutoClosedDates []string
}

func (e ClockEvent) MessageID() string {
	if e.Out {
		return "clock-out"
	}
	return "clock-in"
}

func (e ClockEvent) Message() string {
	if e.Out {
		return fmt.Sprintf("%s clocked out on %s", e.SubjectID, e.BaseDate)
	}
	msg := fmt.Sprintf("%s clocked in on %s", e.SubjectID, e.BaseDate)
	if len(e.AutoClosedDates) > 0 {
		msg += fmt.Sprintf(" (auto-closed: %s)", strings.Join(e.AutoClosedDates, ", "))
	}
	return msg
}

func (e ClockEvent) Severity() Severity {
	return SeverityInfo
}

func (e ClockEvent) Facility() int {
	return FacilityAuth
}

func (e ClockEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSubject: {
			"id":   e.SubjectID,
			"date": e.BaseDate,
		},
		SDIDAction: {
			"operation": e.MessageID(),
		},
	}
	if len(e.AutoClosedDates) > 0 {
		sd[SDIDAction]["auto_closed"] = strings.Join(e.AutoClosedDates, ",")
	}
	return sd
}

// SessionDeleteEvent records deletion of attendance rows.
type SessionDeleteEvent struct {
	ActorID   string
	SubjectID string
	BaseDates []string
	Affected  int64
}

func (e SessionDeleteEvent) MessageID() string {
	return "session-delete"
}

func (e SessionDeleteEvent) Message() string {
	return fmt.Sprintf("%s deleted %d work session(s) of %s", e.ActorID, e.Affected, e.SubjectID)
}

func (e SessionDeleteEvent) Severity() Severity {
	return SeverityNotice
}

func (e SessionDeleteEvent) Facility() int {
	return FacilityAuth
}

func (e SessionDeleteEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDSubject: {
			"id":    e.SubjectID,
			"dates": strings.Join(e.BaseDates, ","),
		},
		SDIDAction: {
			"operation": "delete",
			"actor":     e.ActorID,
			"affected":  fmt.Sprintf("%d", e.Affected),
		},
	}
}
