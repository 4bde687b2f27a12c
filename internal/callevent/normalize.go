package callevent

import (
	"strings"
	"time"
	"unicode"

	"github.com/onehash/smartflow-bridge/internal/calllog"
)

// Direction value the provider uses for CRM-initiated outbound calls.
const clickToCallDirection = "clicktocall"

const countryCode = "91"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// NormalizeAgentNumber trims the number and strips a leading +91 prefix.
func NormalizeAgentNumber(number string) string {
	number = strings.TrimSpace(number)
	return strings.TrimPrefix(number, "+"+countryCode)
}

// NormalizeCustomerNumber strips a leading plus sign and guarantees the
// country code prefix. Empty input yields empty output.
func NormalizeCustomerNumber(number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return ""
	}
	number = strings.TrimPrefix(number, "+")
	if !strings.HasPrefix(number, countryCode) {
		number = countryCode + number
	}
	return number
}

// DeriveCallType maps the provider direction tag onto the CRM call type.
func DeriveCallType(direction string) calllog.CallType {
	if direction == clickToCallDirection {
		return calllog.CallTypeOutbound
	}
	return calllog.CallTypeInbound
}

// DeriveStatus resolves the call status. Precedence: explicit status string,
// connected flag, NO_ANSWER hangup cause, billed seconds, Failed.
func (e *CallEvent) DeriveStatus() calllog.Status {
	if s := strings.TrimSpace(e.CallStatus); s != "" {
		return calllog.Status(Capitalize(s))
	}
	if e.CallConnected != nil {
		if *e.CallConnected == 1 {
			return calllog.StatusAnswered
		}
		return calllog.StatusMissed
	}
	if e.HangupCause == "NO_ANSWER" {
		return calllog.StatusMissed
	}
	if e.Billsec > 0 {
		return calllog.StatusAnswered
	}
	return calllog.StatusFailed
}

// CustomerNumber returns the normalized customer-facing number, choosing the
// source field by direction: destination for outbound, caller id for inbound.
func (e *CallEvent) CustomerNumber() string {
	if DeriveCallType(e.Direction) == calllog.CallTypeOutbound {
		return NormalizeCustomerNumber(e.Destination)
	}
	return NormalizeCustomerNumber(e.CallerID)
}

// SplitTimestamp splits a "date time" stamp on the first space. A missing
// stamp falls back to now for both halves; this is an approximation for
// deliveries that omit start_stamp.
func SplitTimestamp(stamp string, now time.Time) (date, clock string) {
	stamp = strings.TrimSpace(stamp)
	if stamp == "" {
		return now.Format(dateLayout), now.Format(timeLayout)
	}
	if i := strings.IndexByte(stamp, ' '); i >= 0 {
		return stamp[:i], stamp[i+1:]
	}
	return stamp, now.Format(timeLayout)
}

// Record builds the canonical call-log record from this event.
func (e *CallEvent) Record(now time.Time) *calllog.Record {
	date, clock := SplitTimestamp(e.StartStamp, now)
	return &calllog.Record{
		CallID:         e.CallID,
		UUID:           e.UUID,
		AgentName:      e.AgentName,
		CallType:       DeriveCallType(e.Direction),
		CallDate:       date,
		CallTime:       clock,
		EndTime:        e.EndStamp,
		Duration:       int(e.Duration),
		RecordingURL:   e.RecordingURL,
		AgentNumber:    NormalizeAgentNumber(e.AgentNumber),
		CustomerNumber: e.CustomerNumber(),
		Status:         e.DeriveStatus(),
	}
}

// MissedAgentEntries normalizes the missed-agent data into sub-list entries.
func (e *CallEvent) MissedAgentEntries() []calllog.MissedAgentEntry {
	if len(e.MissedAgents) > 0 {
		entries := make([]calllog.MissedAgentEntry, 0, len(e.MissedAgents))
		for _, m := range e.MissedAgents {
			entries = append(entries, calllog.MissedAgentEntry{
				AgentName: m.DisplayName(),
				Number:    m.Number,
			})
		}
		return entries
	}
	if n := strings.TrimSpace(e.MissedAgent); n != "" {
		return []calllog.MissedAgentEntry{{Number: n}}
	}
	return nil
}

// HangupEntries normalizes the call-flow data into sub-list entries.
func (e *CallEvent) HangupEntries() []calllog.HangupRecordEntry {
	inputs := e.HangupInputs()
	if len(inputs) == 0 {
		return nil
	}
	entries := make([]calllog.HangupRecordEntry, 0, len(inputs))
	for _, h := range inputs {
		name := h.AgentName
		if name == "" {
			name = h.Name
		}
		hangupTime := h.HangupTime
		if hangupTime == "" {
			hangupTime = h.Time
		}
		entries = append(entries, calllog.HangupRecordEntry{
			ID:          h.ID.String(),
			AgentName:   name,
			Disposition: h.Disposition,
			HangupTime:  hangupTime,
		})
	}
	return entries
}

// Capitalize upper-cases the first rune and lower-cases the rest, matching
// how explicit provider statuses are stored.
func Capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
