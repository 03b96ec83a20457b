package oltracker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Config fixes the task's polling policy.
type Config struct {
	// PollInterval is how long the task sleeps between cycles.
	PollInterval time.Duration
	// MaxEpochsFetch bounds how many epoch summaries one extend decision
	// fetches (spec §4.6 step 4).
	MaxEpochsFetch uint32
	// GenesisEpoch bounds how far back find_fork_point searches before
	// giving up (spec §4.6 "Reorg handling" step 3).
	GenesisEpoch uint32
}

// Task is one running instance of the OL tracker's poll loop. There is
// exactly one goroutine driving a Task at a time; no work is performed
// concurrently against the same tracker state (spec §5).
type Task struct {
	client   Client
	storage  Storage
	notifier Notifier
	metrics  *Metrics
	cfg      Config
	log      logrus.FieldLogger

	state State
}

// ConfigFromChainParams derives the task's polling policy from chain-wide
// params (spec §6: policy knobs live in ChainParams, not scattered flags).
// pollInterval is not part of ChainParams since it is a deployment-time
// concern, not a chain-consensus one.
func ConfigFromChainParams(maxEpochsFetchPerCycle, genesisOLEpoch uint32, pollInterval time.Duration) Config {
	return Config{
		PollInterval:   pollInterval,
		MaxEpochsFetch: maxEpochsFetchPerCycle,
		GenesisEpoch:   genesisOLEpoch,
	}
}

// NewTask constructs a Task with the given initial state and
// collaborators. Pass NopNotifier{} if no notification sink is wired yet,
// and a nil *Metrics to skip instrumentation entirely.
func NewTask(initial State, client Client, storage Storage, notifier Notifier, metrics *Metrics, cfg Config, log logrus.FieldLogger) *Task {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Task{
		client:   client,
		storage:  storage,
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
		log:      log,
		state:    initial,
	}
}

// State returns the task's current in-memory tracker state. Safe to call
// between cycles; callers must not call it concurrently with Run from
// another goroutine without external synchronization, since Run mutates
// the tracker state in place (spec §5: one task, no concurrent mutation).
func (t *Task) State() State { return t.state }

// Run drives the poll loop until ctx is cancelled: sleep, poll, decide,
// act. Every cycle's error is classified by IsFatal: fatal
// errors return from Run so the caller's supervisor can crash the
// process, recoverable ones are logged and the loop continues (spec §4.6,
// §5 "Fatal errors").
func (t *Task) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.runCycle(ctx); err != nil {
				if IsFatal(err) {
					return err
				}
				t.log.WithError(err).Error("recoverable error in ol tracker")
			}
		}
	}
}

func (t *Task) runCycle(ctx context.Context) error {
	action, err := trackOLState(ctx, t.state, t.client, t.cfg.MaxEpochsFetch, t.log)
	if err != nil {
		return err
	}
	t.metrics.observeCycle(action.Kind)

	switch action.Kind {
	case ActionExtend:
		if err := handleExtendEEState(ctx, action.Epochs, action.ChainStatus, &t.state, t.storage, t.notifier, t.log); err != nil {
			t.log.WithError(err).Error("extend ee state")
			return err
		}
	case ActionReorg:
		previousConfirmed := t.state.BestOLEpoch().Epoch
		forkEpoch, err := handleReorg(ctx, &t.state, t.client, t.storage, t.cfg.GenesisEpoch, t.notifier, t.log)
		if err != nil {
			return err
		}
		t.metrics.observeForkDepth(previousConfirmed, forkEpoch.Epoch)
	case ActionNoop:
	}
	return nil
}
