// Package provision drives a batch of identity PSK creations against one
// resolved SSID and group policy.
//
// Every unit gets exactly one create call and exactly one Outcome, in input
// order. A failure for one unit never changes what happens to another; there
// are no retries and no batch transaction.
package provision

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/newtron-network/psktron/pkg/credential"
	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/resolver"
	"github.com/newtron-network/psktron/pkg/util"
)

// Report is the result of one run.
type Report struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Outcomes  []Outcome     `json:"outcomes"`
}

// Summary counts successes and failures.
func (r *Report) Summary() (succeeded, failed int) {
	for _, o := range r.Outcomes {
		if o.Status.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Failed reports whether any unit failed.
func (r *Report) Failed() bool {
	_, failed := r.Summary()
	return failed > 0
}

// Orchestrator submits credentials through a meraki.API.
type Orchestrator struct {
	api          meraki.API
	workers      int
	runID        string
	fingerprints *credential.Fingerprinter
	now          func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers allows up to n create calls in flight. n <= 1 is sequential.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithRunID fixes the run id instead of generating one, so callers can name
// result files before the run starts.
func WithRunID(id string) Option {
	return func(o *Orchestrator) {
		o.runID = id
	}
}

// WithFingerprinter sets the fingerprinter used to tag passphrases in logs.
func WithFingerprinter(f *credential.Fingerprinter) Option {
	return func(o *Orchestrator) {
		o.fingerprints = f
	}
}

// New creates an Orchestrator. The default is fully sequential.
func New(api meraki.API, opts ...Option) *Orchestrator {
	o := &Orchestrator{api: api, workers: 1, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.fingerprints == nil {
		o.fingerprints = credential.NewFingerprinter(nil)
	}
	return o
}

// Run provisions every unit and returns one outcome per unit in input order.
// The error is non-nil only when the run could not start; per-unit remote and
// transport failures are reported as Failure outcomes.
func (o *Orchestrator) Run(ctx context.Context, rc *resolver.Context, units []string, prefix string, policy *credential.Policy) (*Report, error) {
	if rc == nil {
		return nil, fmt.Errorf("%w: resolved context is required", util.ErrInvalidConfig)
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: credential policy is required", util.ErrInvalidConfig)
	}
	if len(units) == 0 {
		return nil, util.ErrNoUnits
	}

	runID := o.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	report := &Report{
		RunID:     runID,
		StartedAt: o.now(),
		Outcomes:  make([]Outcome, len(units)),
	}
	log := util.WithRun(report.RunID).WithField("network", rc.NetworkID)
	log.Infof("provisioning %d unit(s) on SSID %d with group policy %s", len(units), rc.SSIDNumber, rc.GroupPolicyID)

	if o.workers <= 1 {
		for i, unit := range units {
			report.Outcomes[i] = o.submit(ctx, report.RunID, rc, i, unit, policy.Generate(unit, prefix))
		}
	} else {
		// Credentials are drawn in input order so the random stream maps to
		// units the same way regardless of worker count.
		creds := make([]credential.Credential, len(units))
		for i, unit := range units {
			creds[i] = policy.Generate(unit, prefix)
		}

		sem := make(chan struct{}, o.workers)
		var wg sync.WaitGroup
		for i, unit := range units {
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				report.Outcomes[i] = o.submit(ctx, report.RunID, rc, i, unit, creds[i])
			}()
		}
		wg.Wait()
	}

	report.Duration = o.now().Sub(report.StartedAt)
	succeeded, failed := report.Summary()
	log.Infof("run finished: %d succeeded, %d failed", succeeded, failed)
	return report, nil
}

// submit performs the single create call for one unit.
func (o *Orchestrator) submit(ctx context.Context, runID string, rc *resolver.Context, index int, unit string, cred credential.Credential) Outcome {
	out := Outcome{
		Index:          index,
		Unit:           unit,
		CredentialName: cred.DisplayName,
		Passphrase:     cred.Passphrase,
		Fingerprint:    o.fingerprints.Sum(cred.Passphrase),
	}
	log := util.WithUnit(runID, unit).WithFields(map[string]interface{}{
		"name": cred.DisplayName,
		"psk":  out.Fingerprint,
	})

	res, err := o.api.CreateIdentityPSK(ctx, rc.NetworkID, rc.SSIDNumber, meraki.IdentityPSK{
		Name:          cred.DisplayName,
		Passphrase:    cred.Passphrase,
		GroupPolicyID: rc.GroupPolicyID,
	})
	switch {
	case err != nil:
		out.Status = Failure(err.Error())
		log.Warnf("create failed: %v", err)
	case res.Created():
		out.StatusCode = res.StatusCode
		out.Status = Success()
		log.Debug("created")
	default:
		out.StatusCode = res.StatusCode
		out.Status = Failure(failureReason(res.StatusCode, res.Body))
		log.Warnf("create rejected with code %d", res.StatusCode)
	}
	return out
}
