// Package submission sequences a filing submission attempt end to end:
// lifecycle gate, validation, fresh computation, advisory scoring,
// payload generation, signing, gateway transmission, and outcome
// persistence.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/veritax/veritax/internal/advisor"
	"github.com/veritax/veritax/internal/compute"
	"github.com/veritax/veritax/internal/confidence"
	"github.com/veritax/veritax/internal/drafts"
	"github.com/veritax/veritax/internal/filings"
	"github.com/veritax/veritax/internal/formbuilder"
	"github.com/veritax/veritax/internal/forms"
	"github.com/veritax/veritax/internal/gateway"
	"github.com/veritax/veritax/internal/intelligence"
	"github.com/veritax/veritax/internal/signing"
	"github.com/veritax/veritax/internal/users"
	"github.com/veritax/veritax/internal/validation"
	"github.com/veritax/veritax/pkg/storage"
)

// Config holds orchestrator-level settings.
type Config struct {
	// DefaultAssessmentYear is used when neither the request nor the
	// draft specifies one.
	DefaultAssessmentYear string `toml:"default_assessment_year"`
}

// Finalize applies defaults.
func (c *Config) Finalize() error {
	if c.DefaultAssessmentYear == "" {
		c.DefaultAssessmentYear = "2025-26"
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultAssessmentYear != "" {
		c.DefaultAssessmentYear = overlay.DefaultAssessmentYear
	}
}

// Dependencies collects every collaborator the orchestrator sequences.
// Passing them explicitly keeps the pipeline free of package-level
// singletons.
type Dependencies struct {
	Drafts       drafts.System
	Filings      filings.System
	Users        users.System
	Validator    *validation.Validator
	Compute      compute.Client
	Intelligence *intelligence.Engine
	Confidence   *confidence.Scorer
	Advisor      *advisor.Router
	Pipeline     *formbuilder.Pipeline
	Signer       signing.Signer
	Gateway      gateway.Client
	Archive      storage.System

	// GatewayUserID is the platform's gateway account, used when the
	// taxpayer has no gateway identity of their own.
	GatewayUserID string
}

// Orchestrator coordinates submission attempts. At most one attempt per
// filing runs at a time: the in-process singleflight group collapses
// duplicate requests, and the database claim guards across processes.
type Orchestrator struct {
	deps   Dependencies
	cfg    Config
	group  singleflight.Group
	logger *slog.Logger
}

// New creates an Orchestrator.
func New(deps Dependencies, cfg Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		deps:   deps,
		cfg:    cfg,
		logger: logger.With("system", "submission"),
	}
}

// Handler creates the HTTP handler for the submission endpoint.
func (o *Orchestrator) Handler() *Handler {
	return NewHandler(o, o.logger)
}

// Submit executes one submission attempt for the draft's filing.
// Duplicate concurrent calls for the same draft share a single attempt.
func (o *Orchestrator) Submit(
	ctx context.Context,
	draftID uuid.UUID,
	actor filings.Actor,
	req Request,
) (*Result, error) {
	v, err, _ := o.group.Do(draftID.String(), func() (any, error) {
		return o.submit(ctx, draftID, actor, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (o *Orchestrator) submit(
	ctx context.Context,
	draftID uuid.UUID,
	actor filings.Actor,
	req Request,
) (*Result, error) {
	attemptStart := time.Now()

	draft, filing, err := o.load(ctx, draftID, actor)
	if err != nil {
		return nil, err
	}

	prior, err := o.deps.Filings.ClaimForSubmission(ctx, filing.ID, actor)
	if err != nil {
		return nil, err
	}

	log := o.logger.With("filing", filing.ID, "form_type", filing.FormType)
	log.Info("submission attempt started", "actor", actor.ID, "role", actor.Role, "prior_state", prior)

	result, err := o.run(ctx, draft, filing, actor, req, attemptStart, log)
	if err != nil {
		o.resolveFailure(ctx, filing.ID, prior, err, log)
		return nil, err
	}

	log.Info(
		"submission attempt succeeded",
		"acknowledgment", result.AcknowledgmentNumber,
		"duration", time.Since(attemptStart),
	)
	return result, nil
}

func (o *Orchestrator) load(
	ctx context.Context,
	draftID uuid.UUID,
	actor filings.Actor,
) (*drafts.Draft, *filings.Filing, error) {
	var draft *drafts.Draft
	var err error
	if actor.Role.Professional() {
		draft, err = o.deps.Drafts.Find(ctx, draftID)
	} else {
		draft, err = o.deps.Drafts.FindForUser(ctx, draftID, actor.ID)
	}
	if err != nil {
		return nil, nil, err
	}

	filing, err := o.deps.Filings.Find(ctx, draft.FilingID)
	if err != nil {
		return nil, nil, err
	}
	return draft, filing, nil
}

// run executes the gated pipeline while the submission claim is held.
func (o *Orchestrator) run(
	ctx context.Context,
	draft *drafts.Draft,
	filing *filings.Filing,
	actor filings.Actor,
	req Request,
	attemptStart time.Time,
	log *slog.Logger,
) (*Result, error) {
	year := o.resolveYear(req.AssessmentYear, draft.AssessmentYear)

	form, err := draft.FormData()
	if err != nil {
		return nil, err
	}

	if err := checkGates(form, req.Verification).Err(); err != nil {
		return nil, err
	}

	outcome, err := o.deps.Validator.ValidatePayload(form, filing.FormType)
	if err != nil {
		return nil, err
	}
	business, err := o.deps.Validator.ValidateBusinessRules(ctx, form, filing.FormType)
	if err != nil {
		return nil, err
	}
	outcome.Merge(business)
	if err := outcome.Err(); err != nil {
		return nil, err
	}

	// A cached snapshot is never reused: every attempt recomputes.
	snapshot, err := o.deps.Compute.Compute(ctx, form, year)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrComputationRequired, err)
	}

	enriched := o.enrich(ctx, form, snapshot, filing.UserID, log)

	payload, err := o.deps.Pipeline.Build(string(filing.FormType), form, snapshot, year, attemptStart)
	if err != nil {
		return nil, err
	}

	envelope, err := o.deps.Signer.BuildEnvelope(payload, o.gatewayUser(ctx, filing.UserID))
	if err != nil {
		return nil, err
	}

	resp, err := o.deps.Gateway.Submit(ctx, envelope, string(filing.FormType), year)
	if err != nil {
		return nil, err
	}

	return o.persist(ctx, filing, actor, req, year, snapshot, enriched, payload, resp, log)
}

func (o *Orchestrator) resolveYear(override, stored string) string {
	switch {
	case override != "":
		return override
	case stored != "":
		return stored
	}
	return o.cfg.DefaultAssessmentYear
}

// checkGates verifies the submission prerequisites that do not need a
// schema: a complete refund account, a complete address, and a declared
// e-verification method.
func checkGates(form *forms.FormData, verification filings.Verification) *validation.Outcome {
	outcome := validation.NewOutcome()

	if !form.BankDetails.Complete() {
		outcome.AddError(
			"/bank_details", "BANK_DETAILS_INCOMPLETE",
			"refund bank account details are incomplete",
		)
	}
	if !form.PersonalInfo.Address.Complete() {
		outcome.AddError(
			"/personal_info/address", "ADDRESS_INCOMPLETE",
			"registered address is incomplete",
		)
	}
	if verification.Method == "" {
		outcome.AddError(
			"/verification/method", "VERIFICATION_METHOD_REQUIRED",
			"an e-verification method must be declared",
		)
	}

	return outcome
}

// enrich runs the advisory stage. Failures here are logged and swallowed
// so that scoring never blocks a legally time-sensitive filing; the
// attempt proceeds with whatever metadata was produced.
func (o *Orchestrator) enrich(
	ctx context.Context,
	form *forms.FormData,
	snapshot *compute.TaxSnapshot,
	userID uuid.UUID,
	log *slog.Logger,
) *attemptSnapshot {
	enriched := &attemptSnapshot{TaxSnapshot: *snapshot}

	// Rule analysis needs no verification data, so signals survive even
	// when the profile lookup fails and only scoring degrades.
	enriched.Signals = o.deps.Intelligence.Analyze(form, snapshot)

	verification, err := o.deps.Users.VerificationProfile(ctx, userID)
	if err != nil {
		log.Warn("advisory stage degraded: verification profile unavailable", "error", err)
		return enriched
	}

	enriched.Confidence = o.deps.Confidence.Evaluate(enriched.Signals, form, snapshot, verification)
	enriched.AdvisorContext = o.deps.Advisor.Route(form.FormType, enriched.Confidence, enriched.Signals)

	return enriched
}

func (o *Orchestrator) gatewayUser(ctx context.Context, userID uuid.UUID) string {
	user, err := o.deps.Users.Find(ctx, userID)
	if err == nil && user.GatewayUserID != "" {
		return user.GatewayUserID
	}
	return o.deps.GatewayUserID
}

func (o *Orchestrator) persist(
	ctx context.Context,
	filing *filings.Filing,
	actor filings.Actor,
	req Request,
	year string,
	snapshot *compute.TaxSnapshot,
	enriched *attemptSnapshot,
	payload []byte,
	resp *gateway.Response,
	log *slog.Logger,
) (*Result, error) {
	snapshotJSON, err := json.Marshal(enriched)
	if err != nil {
		return nil, fmt.Errorf("%w: encode snapshot: %w", ErrReconciliationRequired, err)
	}

	payloadKey := o.archivePayload(ctx, filing.ID, resp.AcknowledgmentNumber, payload, log)

	filed, err := o.deps.Filings.MarkFiled(ctx, filings.MarkFiledCommand{
		FilingID:             filing.ID,
		TaxLiability:         snapshot.TaxLiability,
		RefundAmount:         snapshot.RefundDue,
		Regime:               string(snapshot.Regime),
		SnapshotJSON:         snapshotJSON,
		PayloadKey:           payloadKey,
		AcknowledgmentNumber: resp.AcknowledgmentNumber,
		SubmissionToken:      resp.SubmissionToken,
		Verification:         req.Verification,
		FiledBy:              actor.ID,
		SubmittedAt:          time.Now(),
	})
	if err != nil {
		// The gateway already accepted the return; the local record is
		// now behind the external one.
		log.Error(
			"persistence failed after gateway acceptance",
			"acknowledgment", resp.AcknowledgmentNumber,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrReconciliationRequired, err)
	}

	return &Result{
		Filing:               filed,
		AcknowledgmentNumber: resp.AcknowledgmentNumber,
		SubmissionToken:      resp.SubmissionToken,
		Confidence:           enriched.Confidence,
		Advisor:              enriched.AdvisorContext,
		Signals:              enriched.Signals,
	}, nil
}

// archivePayload stores the transmitted payload bytes for audit. Archive
// failure never fails the attempt; the filing row still carries the
// snapshot and figures.
func (o *Orchestrator) archivePayload(
	ctx context.Context,
	filingID uuid.UUID,
	acknowledgment string,
	payload []byte,
	log *slog.Logger,
) string {
	key := fmt.Sprintf("filings/%s/%s.json", filingID, acknowledgment)

	if err := o.deps.Archive.Upload(ctx, key, bytes.NewReader(payload), "application/json"); err != nil {
		log.Warn("payload archive failed", "key", key, "error", err)
		return ""
	}
	return key
}

// resolveFailure settles the submission claim after a failed attempt.
// Terminal gateway rejections mark the filing failed; everything else
// releases the claim so the caller may retry unchanged. A reconciliation
// failure leaves the claim held for operator intervention.
func (o *Orchestrator) resolveFailure(
	ctx context.Context,
	filingID uuid.UUID,
	prior filings.State,
	cause error,
	log *slog.Logger,
) {
	switch {
	case errors.Is(cause, ErrReconciliationRequired):
		log.Error("submission requires reconciliation; claim retained", "error", cause)

	case errors.Is(cause, gateway.ErrGatewayRejected):
		if err := o.deps.Filings.MarkFailed(ctx, filingID, cause.Error()); err != nil {
			log.Error("failed to record terminal rejection", "error", err)
		}

	default:
		if err := o.deps.Filings.ReleaseClaim(ctx, filingID, prior); err != nil {
			log.Error("failed to release submission claim", "prior_state", prior, "error", err)
		}
	}
}
