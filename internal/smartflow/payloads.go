package smartflow

import "github.com/onehash/smartflow-bridge/internal/callevent"

// ClickToCallRequest starts an outbound call on behalf of an agent.
type ClickToCallRequest struct {
	AgentNumber       string `json:"agent_number"`
	DestinationNumber string `json:"destination_number"`
	CallerID          string `json:"caller_id"`
	Async             int    `json:"async"`
	GetCallID         int    `json:"get_call_id"`
}

// ClickToCallResponse is the provider's answer to a click-to-call request.
type ClickToCallResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	CallID  string `json:"call_id"`
}

// HangupRequest ends an in-flight call.
type HangupRequest struct {
	CallID string `json:"call_id"`
}

// HangupResponse is the provider's answer to a hangup request.
type HangupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AgentPayload is the nested agent object on a provider user.
type AgentPayload struct {
	ID             callevent.FlexInt `json:"id"`
	Name           string            `json:"name"`
	Status         int               `json:"status"`
	FollowMeNumber string            `json:"follow_me_number"`
}

// RolePayload is the nested role object on a provider user.
type RolePayload struct {
	Name string `json:"name"`
}

// ProviderUserPayload is one entry of the provider's user list.
type ProviderUserPayload struct {
	ID                    callevent.FlexInt `json:"id"`
	LoginID               string            `json:"login_id"`
	LoginBasedCalling     bool              `json:"is_login_based_calling_enabled"`
	InternationalOutbound bool              `json:"is_international_outbound_enabled"`
	Agent                 AgentPayload      `json:"agent"`
	UserRole              RolePayload       `json:"user_role"`
}

type usersResponse struct {
	Data []ProviderUserPayload `json:"data"`
}

// CallRecord is one historical call from the records API. The field names
// differ from the webhook payload for the same information.
type CallRecord struct {
	CallID          string                       `json:"call_id"`
	AgentName       string                       `json:"agent_name"`
	AgentNumber     string                       `json:"agent_number"`
	ClientNumber    string                       `json:"client_number"`
	Direction       string                       `json:"direction"`
	Date            string                       `json:"date"`
	Time            string                       `json:"time"`
	EndStamp        string                       `json:"end_stamp"`
	CallDuration    callevent.FlexInt            `json:"call_duration"`
	Status          string                       `json:"status"`
	RecordingURL    string                       `json:"recording_url"`
	Description     string                       `json:"description"`
	MissedAgents    []callevent.MissedAgentInput `json:"missed_agents"`
	AgentHangupData []callevent.HangupInput      `json:"agent_hangup_data"`
}

type recordsResponse struct {
	Results []CallRecord `json:"results"`
	Message string       `json:"message"`
}
