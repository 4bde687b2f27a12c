package callsync

import (
	"context"
	"errors"
	"strings"

	"github.com/onehash/smartflow-bridge/internal/leads"
	"github.com/onehash/smartflow-bridge/internal/observability/metrics"
	"github.com/onehash/smartflow-bridge/internal/smartflow"
	"github.com/onehash/smartflow-bridge/internal/users"
	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// callClient is the slice of the provider client the actions need.
type callClient interface {
	ClickToCall(ctx context.Context, req smartflow.ClickToCallRequest) (*smartflow.ClickToCallResponse, error)
	HangupCall(ctx context.Context, callID string) (*smartflow.HangupResponse, error)
}

// Actions drives outbound call control from the CRM side: starting a call
// to a lead on behalf of an agent and hanging up an in-flight call.
type Actions struct {
	client    callClient
	leads     leads.Repository
	providers users.ProviderRepository
	logger    *logging.Logger
	metrics   *metrics.CallMetrics
}

// NewActions creates an Actions service.
func NewActions(client callClient, leadRepo leads.Repository, providers users.ProviderRepository, logger *logging.Logger, m *metrics.CallMetrics) *Actions {
	if logger == nil {
		logger = logging.Default()
	}
	return &Actions{client: client, leads: leadRepo, providers: providers, logger: logger, metrics: m}
}

// Initiate starts a click-to-call from the named agent to the lead's mobile
// number and stores the provider call id on the lead for a later hangup.
func (a *Actions) Initiate(ctx context.Context, leadID, agentName string) Result {
	if strings.TrimSpace(leadID) == "" {
		return failure("lead id is required")
	}
	if strings.TrimSpace(agentName) == "" {
		return failure("agent name is required")
	}

	lead, err := a.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			return failure("lead not found")
		}
		a.logger.Error("lead lookup failed", "lead_id", leadID, "error", err)
		return failure("error finding lead: " + err.Error())
	}
	if lead.MobileNo == "" {
		return failure("lead has no mobile number")
	}

	agent, err := a.providers.GetByAgentName(ctx, agentName)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return failure("agent " + agentName + " not found")
		}
		a.logger.Error("agent lookup failed", "agent_name", agentName, "error", err)
		return failure("error finding agent: " + err.Error())
	}
	if agent.AgentID == "" {
		return failure("agent " + agentName + " has no provider agent id")
	}

	// The provider routes click-to-call by the agent's numeric id, not the
	// follow-me number.
	resp, err := a.client.ClickToCall(ctx, smartflow.ClickToCallRequest{
		AgentNumber:       agent.AgentID,
		DestinationNumber: lead.MobileNo,
	})
	if err != nil {
		a.metrics.ObserveOutboundAction("click_to_call", false)
		a.logger.Error("click to call failed", "lead_id", leadID, "agent_name", agentName, "error", err)
		return failure("error initiating call: " + err.Error())
	}
	a.metrics.ObserveOutboundAction("click_to_call", true)

	if resp.CallID != "" {
		if err := a.leads.SetCallID(ctx, leadID, resp.CallID); err != nil {
			a.logger.Error("store call id on lead failed", "lead_id", leadID, "call_id", resp.CallID, "error", err)
		}
	}
	a.logger.Info("call initiated", "lead_id", leadID, "agent_name", agentName, "call_id", resp.CallID)
	return success("call initiated successfully")
}

// Hangup ends the lead's in-flight call and clears the stored call id.
func (a *Actions) Hangup(ctx context.Context, leadID string) Result {
	if strings.TrimSpace(leadID) == "" {
		return failure("lead id is required")
	}
	lead, err := a.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			return failure("lead not found")
		}
		a.logger.Error("lead lookup failed", "lead_id", leadID, "error", err)
		return failure("error finding lead: " + err.Error())
	}
	if lead.CallID == "" {
		return failure("lead has no active call")
	}

	if _, err := a.client.HangupCall(ctx, lead.CallID); err != nil {
		a.metrics.ObserveOutboundAction("hangup_call", false)
		a.logger.Error("hangup failed", "lead_id", leadID, "call_id", lead.CallID, "error", err)
		return failure("error hanging up call: " + err.Error())
	}
	a.metrics.ObserveOutboundAction("hangup_call", true)

	if err := a.leads.SetCallID(ctx, leadID, ""); err != nil {
		a.logger.Error("clear call id on lead failed", "lead_id", leadID, "error", err)
	}
	a.logger.Info("call hung up", "lead_id", leadID, "call_id", lead.CallID)
	return success("call hung up successfully")
}
