// Package orchestrator runs one remote operation at a time: it submits the
// request, polls the job until it resolves and reports the outcome.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"remotecalc/internal/types"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxAttempts  = 20
)

type Config struct {
	// PollInterval is the fixed wait between two status checks.
	PollInterval time.Duration
	// MaxAttempts caps the number of status checks per job.
	MaxAttempts int
}

func DefaultConfig() Config {
	return Config{
		PollInterval: DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

// ComputeService is the remote side of an operation.
type ComputeService interface {
	Submit(ctx context.Context, req types.OperationRequest) (types.JobHandle, error)
	Result(ctx context.Context, id string) (types.ResultResponse, error)
}

type Orchestrator struct {
	service ComputeService
	cfg     Config
	wait    func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	busy    bool
	current string
}

func New(service ComputeService, cfg Config) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Orchestrator{
		service: service,
		cfg:     cfg,
		wait:    sleep,
	}
}

func (o *Orchestrator) Config() Config {
	return o.cfg
}

// Busy reports whether a job occupies the slot.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// CurrentJob returns the id of the outstanding job, empty while submitting or idle.
func (o *Orchestrator) CurrentJob() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Execute submits op and polls it to a terminal outcome. It returns ErrBusy
// without contacting the service when another job is outstanding.
func (o *Orchestrator) Execute(ctx context.Context, op types.Operator, operand1, operand2 float64) (float64, error) {
	if !o.acquire() {
		return 0, ErrBusy
	}
	defer o.release()

	handle, err := o.Submit(ctx, op, operand1, operand2)
	if err != nil {
		return 0, err
	}

	o.mu.Lock()
	o.current = handle.ID
	o.mu.Unlock()

	return o.Poll(ctx, handle.ID)
}

func (o *Orchestrator) Submit(ctx context.Context, op types.Operator, operand1, operand2 float64) (types.JobHandle, error) {
	handle, err := o.service.Submit(ctx, types.OperationRequest{
		Operator: op,
		Operand1: operand1,
		Operand2: operand2,
	})
	if err != nil {
		log.Printf("Submit %v %s %v: %v", operand1, op, operand2, err)
		return types.JobHandle{}, err
	}
	if handle.ID == "" {
		return types.JobHandle{}, &NetworkError{Op: "submit", Message: "empty job id"}
	}

	log.Printf("Submit %v %s %v: job %s", operand1, op, operand2, handle.ID)
	return handle, nil
}

// Poll checks the job status until it completes, fails or the attempt ceiling
// is reached. Status checks are strictly sequential.
func (o *Orchestrator) Poll(ctx context.Context, id string) (float64, error) {
	for attempt := 1; ; attempt++ {
		res, err := o.service.Result(ctx, id)
		if err != nil {
			return 0, err
		}

		switch res.Status {
		case types.StatusCompleted:
			if res.Result == nil {
				return 0, &ComputeError{JobID: id, Message: "missing result"}
			}
			log.Printf("Job %s completed after %d checks: %v", id, attempt, *res.Result)
			return *res.Result, nil
		case types.StatusPending:
			if attempt >= o.cfg.MaxAttempts {
				log.Printf("Job %s still pending after %d checks", id, attempt)
				return 0, &TimeoutError{JobID: id, Attempts: attempt}
			}
			if err := o.wait(ctx, o.cfg.PollInterval); err != nil {
				return 0, &NetworkError{Op: "poll", Message: "interrupted", Err: err}
			}
		case types.StatusFailed:
			return 0, &ComputeError{JobID: id, Message: res.Error}
		default:
			msg := res.Error
			if msg == "" {
				msg = fmt.Sprintf("unknown status %q", res.Status)
			}
			return 0, &ComputeError{JobID: id, Message: msg}
		}
	}
}

func (o *Orchestrator) acquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return false
	}
	o.busy = true
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.current = ""
	o.mu.Unlock()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
