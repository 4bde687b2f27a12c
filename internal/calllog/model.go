package calllog

import "time"

// CallType classifies a call from the CRM's point of view.
type CallType string

const (
	CallTypeInbound  CallType = "Inbound"
	CallTypeOutbound CallType = "Outbound"
)

// Status is the derived call outcome. Beyond the three canonical values the
// provider may supply its own status string, which is stored capitalized
// verbatim, so Status stays open-ended.
type Status string

const (
	StatusAnswered Status = "Answered"
	StatusMissed   Status = "Missed"
	StatusFailed   Status = "Failed"
)

// Record is the canonical log of one call, keyed by the provider call id.
type Record struct {
	CallID         string    `json:"call_id"`
	UUID           string    `json:"uuid,omitempty"`
	AgentName      string    `json:"agent_name"`
	CallType       CallType  `json:"call_type"`
	CallDate       string    `json:"call_date"`
	CallTime       string    `json:"call_time"`
	EndTime        string    `json:"end_time,omitempty"`
	Duration       int       `json:"duration"`
	RecordingURL   string    `json:"recording_url,omitempty"`
	AgentNumber    string    `json:"agent_number"`
	CustomerNumber string    `json:"customer_number"`
	Status         Status    `json:"status"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MissedAgentEntry records an agent who was rung but did not answer.
type MissedAgentEntry struct {
	AgentName string `json:"agent_name"`
	Number    string `json:"number"`
}

// HangupRecordEntry is a per-leg disposition event for a call segment.
type HangupRecordEntry struct {
	ID          string `json:"id"`
	AgentName   string `json:"agent_name"`
	Disposition string `json:"disposition"`
	HangupTime  string `json:"hangup_time,omitempty"`
}
