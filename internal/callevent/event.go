// Package callevent models the raw call-event payload delivered by the
// Smartflow webhook and turns it into canonical call-log fields. Payload
// shapes vary across provider revisions, so decoding is deliberately
// tolerant: numeric fields arrive as numbers or strings, the missed-agent
// data arrives as a single number or a list of objects, and the hangup list
// appears under two different keys.
package callevent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt decodes a JSON number, numeric string, or boolean into an int.
// Empty strings and null decode to zero.
type FlexInt int

// String renders the value in decimal. Zero renders as "0", not "".
func (f FlexInt) String() string {
	return strconv.Itoa(int(f))
}

// UnmarshalJSON implements tolerant decoding for FlexInt.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			// Provider sometimes sends durations as floats in strings.
			fl, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return fmt.Errorf("callevent: invalid numeric string %q", s)
			}
			*f = FlexInt(int(fl))
			return nil
		}
		*f = FlexInt(n)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		if b {
			*f = 1
		} else {
			*f = 0
		}
		return nil
	default:
		var fl float64
		if err := json.Unmarshal(data, &fl); err != nil {
			return err
		}
		*f = FlexInt(int(fl))
		return nil
	}
}

// MissedAgentInput is one entry of the missed-agent list. The provider uses
// "name" in some payloads and "agent_name" in others.
type MissedAgentInput struct {
	Name      string `json:"name"`
	AgentName string `json:"agent_name"`
	Number    string `json:"number"`
}

// DisplayName resolves the agent name across the two payload spellings.
func (m MissedAgentInput) DisplayName() string {
	if m.AgentName != "" {
		return m.AgentName
	}
	return m.Name
}

// HangupInput is one entry of the call-flow / agent-hangup list.
type HangupInput struct {
	ID          FlexInt `json:"id"`
	Name        string  `json:"name"`
	AgentName   string  `json:"agent_name"`
	Disposition string  `json:"disposition"`
	HangupTime  string  `json:"hangup_time"`
	Time        string  `json:"time"`
}

// CallEvent is the strongly-typed form of one webhook delivery. All fields
// besides CallID are optional.
type CallEvent struct {
	CallID       string  `json:"call_id"`
	UUID         string  `json:"uuid"`
	Direction    string  `json:"direction"`
	StartStamp   string  `json:"start_stamp"`
	EndStamp     string  `json:"end_stamp"`
	Duration     FlexInt `json:"duration"`
	RecordingURL string  `json:"recording_url"`

	AgentName   string `json:"answered_agent_name"`
	AgentNumber string `json:"answered_agent_number"`

	// Customer-facing number: the source field depends on direction.
	CallerID    string `json:"caller_id_number"`
	Destination string `json:"destination"`

	CallStatus    string   `json:"call_status"`
	CallConnected *FlexInt `json:"call_connected"`
	HangupCause   string   `json:"hangup_cause"`
	Billsec       FlexInt  `json:"billsec"`

	// Single missed-agent number, seen in older webhook revisions.
	MissedAgent string `json:"missed_agent"`
	// Full missed-agent list, sent by newer deliveries and the records API.
	MissedAgents []MissedAgentInput `json:"missed_agents"`

	CallFlow        []HangupInput `json:"call_flow"`
	AgentHangupData []HangupInput `json:"agent_hangup_data"`
}

// Parse decodes one webhook body into a CallEvent.
func Parse(body []byte) (*CallEvent, error) {
	var evt CallEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("callevent: decode payload: %w", err)
	}
	return &evt, nil
}

// HangupInputs returns the hangup list regardless of which key carried it.
func (e *CallEvent) HangupInputs() []HangupInput {
	if len(e.CallFlow) > 0 {
		return e.CallFlow
	}
	return e.AgentHangupData
}

// HasMissedAgents reports whether the payload carried missed-agent data in
// either form.
func (e *CallEvent) HasMissedAgents() bool {
	return len(e.MissedAgents) > 0 || strings.TrimSpace(e.MissedAgent) != ""
}
