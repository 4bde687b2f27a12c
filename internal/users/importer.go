package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/onehash/smartflow-bridge/internal/observability/metrics"
	"github.com/onehash/smartflow-bridge/internal/smartflow"
	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// userFetcher is the slice of the provider client the importer needs.
type userFetcher interface {
	FetchUsers(ctx context.Context) ([]smartflow.ProviderUserPayload, error)
}

// Importer pulls the provider user list and saves agents not yet imported.
// Already-imported agents are counted as skipped and never updated.
type Importer struct {
	client    userFetcher
	repo      ProviderRepository
	directory Directory
	logger    *logging.Logger
	metrics   *metrics.CallMetrics
}

// NewImporter creates an Importer.
func NewImporter(client userFetcher, repo ProviderRepository, directory Directory, logger *logging.Logger, m *metrics.CallMetrics) *Importer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Importer{client: client, repo: repo, directory: directory, logger: logger, metrics: m}
}

// Import fetches one page of provider users and inserts the new ones.
func (i *Importer) Import(ctx context.Context) (ImportSummary, error) {
	payloads, err := i.client.FetchUsers(ctx)
	if err != nil {
		i.metrics.ObserveOutboundAction("fetch_users", false)
		return ImportSummary{}, fmt.Errorf("users: fetch provider users: %w", err)
	}
	i.metrics.ObserveOutboundAction("fetch_users", true)

	var summary ImportSummary
	for _, payload := range payloads {
		providerID := int(payload.ID)
		if providerID == 0 {
			i.logger.Warn("provider user without id, skipping", "login_id", payload.LoginID)
			summary.Skipped++
			continue
		}
		// A failure on one user must not lose the rest of the page.
		exists, err := i.repo.ExistsByProviderID(ctx, providerID)
		if err != nil {
			i.logger.Error("check provider user failed, skipping", "provider_id", providerID, "error", err)
			summary.Failed++
			continue
		}
		if exists {
			summary.Skipped++
			continue
		}

		user := i.fromPayload(ctx, payload)
		if _, err := i.repo.Insert(ctx, user); err != nil {
			i.logger.Error("save provider user failed, skipping", "provider_id", providerID, "error", err)
			summary.Failed++
			continue
		}
		summary.Saved++
		i.logger.Info("provider user imported",
			"provider_id", providerID,
			"agent_name", user.AgentName,
			"status", user.Status,
			"matched_local_user", user.LocalUserID != "")
	}

	summary.AllExisting = len(payloads) > 0 && summary.Saved == 0 && summary.Failed == 0
	i.logger.Info("provider user import finished",
		"fetched", len(payloads), "saved", summary.Saved, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// fromPayload maps one provider payload onto the stored model, matching the
// local CRM user by cleaned phone when one exists.
func (i *Importer) fromPayload(ctx context.Context, p smartflow.ProviderUserPayload) *ProviderUser {
	phone := CleanPhone(p.Agent.FollowMeNumber)
	agentID := ""
	if p.Agent.ID != 0 {
		agentID = p.Agent.ID.String()
	}
	u := &ProviderUser{
		ProviderID:            int(p.ID),
		LoginID:               p.LoginID,
		AgentID:               agentID,
		AgentName:             p.Agent.Name,
		Status:                StatusFromCode(p.Agent.Status),
		Phone:                 phone,
		Role:                  p.UserRole.Name,
		LoginBasedCalling:     p.LoginBasedCalling,
		InternationalOutbound: p.InternationalOutbound,
	}
	if phone == "" {
		return u
	}
	local, err := i.directory.FindByMobile(ctx, phone)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			i.logger.Error("local user lookup failed", "phone", phone, "error", err)
		}
		return u
	}
	u.LocalUserID = local.ID
	return u
}
