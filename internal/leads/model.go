package leads

import (
	"strings"
	"time"
)

// Default field values for leads spawned from unmatched inbound calls.
const (
	DefaultFirstName  = "Student"
	SourceMissedCalls = "Missed Calls"
)

// Lead is a CRM prospect record. For call matching purposes leads are keyed
// by mobile number; several leads may share one number.
type Lead struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	Source     string    `json:"source"`
	MobileNo   string    `json:"mobile_no"`
	CallStatus string    `json:"call_status,omitempty"`
	// CallID holds the provider call id of an in-flight click-to-call,
	// cleared again on hangup.
	CallID    string    `json:"call_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CallingHistoryEntry is one denormalized call record on a lead. The call id
// is the natural key within a lead's history.
type CallingHistoryEntry struct {
	CallID    string `json:"call_id"`
	AgentName string `json:"agent_name"`
	CallType  string `json:"call_type"`
	Status    string `json:"status"`
	CallDate  string `json:"call_date"`
	CallTime  string `json:"call_time"`
	Duration  int    `json:"duration"`
}

// Validate checks the minimum shape of a lead before it is stored.
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.MobileNo) == "" {
		return ErrMissingMobile
	}
	return nil
}
