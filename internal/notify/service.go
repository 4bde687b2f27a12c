package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/onehash/smartflow-bridge/internal/callevent"
	"github.com/onehash/smartflow-bridge/internal/leads"
	"github.com/onehash/smartflow-bridge/internal/users"
	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// Sender delivers an event to one user's sessions. *Hub satisfies it.
type Sender interface {
	SendToUser(userID string, eventType string, payload any) int
}

// Service resolves an inbound call to a lead and pushes the screen-pop
// notification to the answering agent's CRM user.
type Service struct {
	hub       Sender
	leads     leads.Repository
	providers users.ProviderRepository
	logger    *logging.Logger
}

// NewService creates a notification service.
func NewService(hub Sender, leadRepo leads.Repository, providers users.ProviderRepository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{hub: hub, leads: leadRepo, providers: providers, logger: logger}
}

// Outcome reports whether the notification reached anyone and why not.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NotifyInboundCall looks up the lead behind callerNumber and, when the
// answering agent maps to a CRM user, sends that user the inbound-call
// event. Delivery is targeted: no agent match, no broadcast.
func (s *Service) NotifyInboundCall(ctx context.Context, callerNumber, agentNumber string) Outcome {
	caller := callevent.NormalizeCustomerNumber(callerNumber)
	if caller == "" {
		return Outcome{Success: false, Message: "caller number is required"}
	}

	matched, err := s.leads.FindByMobile(ctx, caller)
	if err != nil {
		s.logger.Error("lead lookup for notification failed", "caller_number", caller, "error", err)
		return Outcome{Success: false, Message: "error finding lead: " + err.Error()}
	}
	if len(matched) == 0 {
		return Outcome{Success: false, Message: "No matching lead found"}
	}
	lead := matched[0]

	agentPhone := users.CleanPhone(agentNumber)
	if agentPhone == "" {
		return Outcome{Success: false, Message: "agent number is required"}
	}
	agent, err := s.providers.GetByPhone(ctx, agentPhone)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Outcome{Success: false, Message: "no agent matches number " + agentPhone}
		}
		s.logger.Error("agent lookup for notification failed", "agent_phone", agentPhone, "error", err)
		return Outcome{Success: false, Message: "error finding agent: " + err.Error()}
	}
	if agent.LocalUserID == "" {
		return Outcome{Success: false, Message: "agent " + agent.AgentName + " has no linked user"}
	}

	delivered := s.hub.SendToUser(agent.LocalUserID, EventInboundCall, InboundCallPayload{
		CallerNumber: caller,
		LeadNumber:   lead.MobileNo,
		LeadName:     strings.TrimSpace(lead.FirstName),
		LeadID:       lead.ID,
	})
	if delivered == 0 {
		return Outcome{Success: false, Message: "user has no open notification session"}
	}

	s.logger.Info("inbound call notification sent",
		"lead_id", lead.ID, "user_id", agent.LocalUserID, "sessions", delivered)
	return Outcome{Success: true, Message: "notification sent"}
}
