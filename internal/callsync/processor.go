// Package callsync is the upsert pipeline: it takes normalized call data
// from either entry point (webhook delivery or the scheduled records poll),
// writes the canonical call log exactly once per call id, spawns leads for
// inbound calls, and keeps lead calling history in sync.
package callsync

import (
	"context"
	"strings"
	"time"

	"github.com/onehash/smartflow-bridge/internal/callevent"
	"github.com/onehash/smartflow-bridge/internal/calllog"
	"github.com/onehash/smartflow-bridge/internal/leads"
	"github.com/onehash/smartflow-bridge/internal/observability/metrics"
	"github.com/onehash/smartflow-bridge/internal/smartflow"
	"github.com/onehash/smartflow-bridge/pkg/logging"
)

// Source labels for metrics and logs.
const (
	SourceWebhook = "webhook"
	SourcePoll    = "poll"
)

// Processor runs the idempotent call-log upsert.
type Processor struct {
	callLogs calllog.Repository
	leads    leads.Repository
	history  *HistorySyncer
	logger   *logging.Logger
	metrics  *metrics.CallMetrics
	now      func() time.Time
}

// ProcessorConfig wires the processor's collaborators.
type ProcessorConfig struct {
	CallLogs calllog.Repository
	Leads    leads.Repository
	History  *HistorySyncer
	Logger   *logging.Logger
	Metrics  *metrics.CallMetrics
	Now      func() time.Time
}

// NewProcessor creates a Processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.History == nil {
		cfg.History = NewHistorySyncer(cfg.Leads, cfg.Logger)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Processor{
		callLogs: cfg.CallLogs,
		leads:    cfg.Leads,
		history:  cfg.History,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		now:      cfg.Now,
	}
}

// Process handles one webhook delivery.
func (p *Processor) Process(ctx context.Context, evt *callevent.CallEvent) Result {
	start := p.now()
	defer func() {
		p.metrics.ObserveLatency(SourceWebhook, p.now().Sub(start).Seconds())
	}()

	if evt == nil || strings.TrimSpace(evt.CallID) == "" {
		p.metrics.ObserveEvent(SourceWebhook, metrics.OutcomeInvalid)
		return failure("invalid webhook data: missing call id")
	}

	rec := evt.Record(p.now())
	return p.upsert(ctx, SourceWebhook, rec, evt.MissedAgentEntries(), evt.HangupEntries(), evt.HasMissedAgents())
}

// ProcessRecord handles one historical record from the provider's records
// API, routed through the same upsert as the webhook path.
func (p *Processor) ProcessRecord(ctx context.Context, r smartflow.CallRecord) Result {
	start := p.now()
	defer func() {
		p.metrics.ObserveLatency(SourcePoll, p.now().Sub(start).Seconds())
	}()

	if strings.TrimSpace(r.CallID) == "" {
		p.metrics.ObserveEvent(SourcePoll, metrics.OutcomeInvalid)
		return failure("invalid call record: missing call id")
	}

	callType := calllog.CallTypeOutbound
	if r.Direction == "inbound" {
		callType = calllog.CallTypeInbound
	}
	date, clock := r.Date, r.Time
	if date == "" {
		date, clock = callevent.SplitTimestamp("", p.now())
	}
	rec := &calllog.Record{
		CallID:         r.CallID,
		AgentName:      r.AgentName,
		CallType:       callType,
		CallDate:       date,
		CallTime:       clock,
		EndTime:        r.EndStamp,
		Duration:       int(r.CallDuration),
		RecordingURL:   r.RecordingURL,
		AgentNumber:    callevent.NormalizeAgentNumber(r.AgentNumber),
		CustomerNumber: callevent.NormalizeCustomerNumber(r.ClientNumber),
		Status:         calllog.Status(callevent.Capitalize(r.Status)),
		Description:    r.Description,
	}

	missed := make([]calllog.MissedAgentEntry, 0, len(r.MissedAgents))
	for _, m := range r.MissedAgents {
		missed = append(missed, calllog.MissedAgentEntry{AgentName: m.DisplayName(), Number: m.Number})
	}
	hangups := make([]calllog.HangupRecordEntry, 0, len(r.AgentHangupData))
	for _, h := range r.AgentHangupData {
		name := h.AgentName
		if name == "" {
			name = h.Name
		}
		hangupTime := h.HangupTime
		if hangupTime == "" {
			hangupTime = h.Time
		}
		hangups = append(hangups, calllog.HangupRecordEntry{
			ID:          h.ID.String(),
			AgentName:   name,
			Disposition: h.Disposition,
			HangupTime:  hangupTime,
		})
	}
	return p.upsert(ctx, SourcePoll, rec, missed, hangups, len(missed) > 0)
}

// upsert is the shared pipeline tail. hasMissed distinguishes "payload
// carried an empty list" from "payload carried no missed-agent data at all";
// only the former replaces the stored sub-list.
func (p *Processor) upsert(ctx context.Context, source string, rec *calllog.Record, missed []calllog.MissedAgentEntry, hangups []calllog.HangupRecordEntry, hasMissed bool) Result {
	inserted, err := p.callLogs.Insert(ctx, rec)
	if err != nil {
		p.logger.Error("call log insert failed", "call_id", rec.CallID, "source", source, "error", err)
		p.metrics.ObserveEvent(source, metrics.OutcomeError)
		return failure("error processing call event: " + err.Error())
	}

	if !inserted {
		p.logger.Info("call log already exists, skipping insert", "call_id", rec.CallID, "source", source)
		p.metrics.ObserveEvent(source, metrics.OutcomeDuplicate)
	} else {
		p.metrics.ObserveEvent(source, metrics.OutcomeProcessed)

		if rec.CallType == calllog.CallTypeInbound {
			p.createLeadForInboundCall(ctx, rec)
		}
		if hasMissed {
			if err := p.callLogs.ReplaceMissedAgents(ctx, rec.CallID, missed); err != nil {
				p.logger.Error("replace missed agents failed", "call_id", rec.CallID, "error", err)
			}
		}
		if len(hangups) > 0 {
			if err := p.callLogs.ReplaceHangupRecords(ctx, rec.CallID, hangups); err != nil {
				p.logger.Error("replace hangup records failed", "call_id", rec.CallID, "error", err)
			}
		}
	}

	// History always syncs from the stored record, never from this
	// delivery's transient fields, so duplicate delivery is deterministic.
	stored, err := p.callLogs.GetByCallID(ctx, rec.CallID)
	if err != nil {
		p.logger.Error("reload call log for history sync failed", "call_id", rec.CallID, "error", err)
		stored = rec
	}
	if err := p.history.Sync(ctx, stored); err != nil {
		p.logger.Error("lead history sync failed", "call_id", rec.CallID, "error", err)
	}

	if !inserted {
		return success(MessageDuplicate)
	}
	return success(MessageProcessed)
}

// createLeadForInboundCall spawns a lead for an inbound call from an unknown
// number. Skips silently when the number is empty or a lead already exists;
// failures are logged and never abort the pipeline.
func (p *Processor) createLeadForInboundCall(ctx context.Context, rec *calllog.Record) {
	if rec.CustomerNumber == "" {
		return
	}
	exists, err := p.leads.ExistsByMobile(ctx, rec.CustomerNumber)
	if err != nil {
		p.logger.Error("lead existence check failed", "mobile_no", rec.CustomerNumber, "error", err)
		return
	}
	if exists {
		return
	}
	lead, err := p.leads.Create(ctx, &leads.Lead{
		FirstName:  leads.DefaultFirstName,
		Source:     leads.SourceMissedCalls,
		MobileNo:   rec.CustomerNumber,
		CallStatus: string(rec.Status),
	})
	if err != nil {
		p.logger.Error("lead creation for inbound call failed", "mobile_no", rec.CustomerNumber, "error", err)
		return
	}
	p.metrics.ObserveLeadCreated()
	p.logger.Info("lead created from inbound call", "lead_id", lead.ID, "mobile_no", lead.MobileNo, "call_status", lead.CallStatus)
}
