package api

import (
	"fmt"

	"github.com/veritax/veritax/internal/advisor"
	"github.com/veritax/veritax/internal/audit"
	"github.com/veritax/veritax/internal/confidence"
	"github.com/veritax/veritax/internal/drafts"
	"github.com/veritax/veritax/internal/filings"
	"github.com/veritax/veritax/internal/formbuilder"
	"github.com/veritax/veritax/internal/intelligence"
	"github.com/veritax/veritax/internal/submission"
	"github.com/veritax/veritax/internal/users"
	"github.com/veritax/veritax/internal/validation"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Users      users.System
	Drafts     drafts.System
	Filings    filings.System
	Submission *submission.Orchestrator
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	usersSystem := users.New(db, runtime.Logger)
	draftsSystem := drafts.New(db, runtime.Logger)
	filingsSystem := filings.New(db, runtime.Logger, runtime.Pagination)

	validator, err := validation.New(audit.NewChecker(runtime.Logger), runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("validation init failed: %w", err)
	}

	orchestrator := submission.New(
		submission.Dependencies{
			Drafts:        draftsSystem,
			Filings:       filingsSystem,
			Users:         usersSystem,
			Validator:     validator,
			Compute:       runtime.Compute,
			Intelligence:  intelligence.NewEngine(runtime.Logger),
			Confidence:    confidence.NewScorer(runtime.Logger),
			Advisor:       advisor.NewRouter(runtime.Logger),
			Pipeline:      formbuilder.NewPipeline(runtime.Logger),
			Signer:        runtime.Signer,
			Gateway:       runtime.Gateway,
			Archive:       runtime.Storage,
			GatewayUserID: runtime.GatewayUserID,
		},
		runtime.Submission,
		runtime.Logger,
	)

	return &Domain{
		Users:      usersSystem,
		Drafts:     draftsSystem,
		Filings:    filingsSystem,
		Submission: orchestrator,
	}, nil
}
