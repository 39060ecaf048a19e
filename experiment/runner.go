package experiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hupe1980/duet/analysis"
	"github.com/hupe1980/duet/dialogue"
	"github.com/hupe1980/duet/logging"
	"github.com/hupe1980/duet/model"
)

// Names of the outputs persisted for every run.
const (
	ConversationFile = "conversation.json"
	AnalysisFile     = "analysis.json"
	ReportFile       = "report.txt"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Conversation is the dialogue configuration applied to every run.
	Conversation dialogue.Config
	// Analysis customizes analyzer thresholds and window geometry.
	Analysis []func(o *analysis.Options)
	// Store receives the conversation, analysis and report of each run.
	Store OutputStore
	// Logger receives run lifecycle events.
	Logger logging.Logger
	// Parallelism bounds concurrent runs in RunBatch. Values below 1
	// mean sequential execution.
	Parallelism int
	// Progress is invoked after every appended message of every run.
	Progress dialogue.ProgressFunc
}

// Run bundles the artifacts of one finished run.
type Run struct {
	ID           string
	Conversation *dialogue.Conversation
	Analysis     *analysis.Analysis
}

// Runner drives complete experiment runs: conversation, analysis and
// persistence. Public methods are safe for concurrent use.
type Runner struct {
	backend     model.Model
	cfg         dialogue.Config
	analyzer    *analysis.Analyzer
	store       OutputStore
	logger      logging.Logger
	parallelism int
	progress    dialogue.ProgressFunc

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner with optional overrides.
func New(m model.Model, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Conversation: dialogue.DefaultConfig(),
		Store:        NewMemoryStore(),
		Logger:       logging.NoOpLogger{},
		Parallelism:  1,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		backend:     m,
		cfg:         opts.Conversation,
		analyzer:    analysis.New(opts.Analysis...),
		store:       opts.Store,
		logger:      opts.Logger,
		parallelism: opts.Parallelism,
		progress:    opts.Progress,
		activeRuns:  make(map[string]context.CancelFunc),
	}
}

// RunOne executes a single conversation end to end, analyzes the
// transcript and persists the outputs. A backend failure mid-dialogue
// yields a partial transcript that is analyzed and persisted like any
// other; persistence failures are returned.
func (r *Runner) RunOne(ctx context.Context) (*Run, error) {
	runID := "run-" + uuid.NewString()

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		delete(r.activeRuns, runID)
		r.mu.Unlock()
	}()

	return r.run(ctx, runID)
}

// RunBatch executes n independent runs and aggregates their outcomes.
// Runs launch sequentially unless Parallelism allows more in flight;
// the returned batch lists finished runs in launch order. Failed runs
// are dropped from the batch and the first failure is returned
// alongside it.
func (r *Runner) RunBatch(ctx context.Context, n int) (*Batch, error) {
	if n <= 0 {
		return nil, fmt.Errorf("run count must be positive, got %d", n)
	}

	workers := r.parallelism
	if workers < 1 {
		workers = 1
	}

	runs := make([]*Run, n)
	errs := make([]error, n)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			runs[i], errs[i] = r.RunOne(ctx)
		}(i)
	}

	wg.Wait()

	finished := make([]*Run, 0, n)
	var firstErr error
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		finished = append(finished, runs[i])
	}

	return NewBatch(finished), firstErr
}

// Cancel cancels an in-flight run by ID. The cancelled conversation
// surfaces as an aborted transcript, not an error.
func (r *Runner) Cancel(runID string) error {
	r.mu.RLock()
	cancel, exists := r.activeRuns[runID]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// Active returns the IDs of in-flight runs, sorted.
func (r *Runner) Active() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.activeRuns))
	for id := range r.activeRuns {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

func (r *Runner) run(ctx context.Context, runID string) (*Run, error) {
	r.logger.Info("starting run",
		"run_id", runID,
		"model", r.cfg.Model,
		"max_turns", r.cfg.MaxTurns,
	)

	conv := dialogue.New(r.cfg, r.backend, func(o *dialogue.Options) {
		o.Logger = r.logger
	})

	if _, err := conv.Run(ctx, r.progress); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if cause := conv.Err(); cause != nil {
		r.logger.Warn("conversation aborted", "run_id", runID, "cause", cause)
	}

	result := r.analyzer.Analyze(conv.Messages())

	if err := r.persist(runID, conv, result); err != nil {
		return nil, err
	}

	r.logger.Info("run finished",
		"run_id", runID,
		"status", string(conv.Status()),
		"turns", result.TotalTurns,
		"attractor", result.AttractorDetected,
	)

	return &Run{ID: runID, Conversation: conv, Analysis: result}, nil
}

func (r *Runner) persist(runID string, conv *dialogue.Conversation, result *analysis.Analysis) error {
	transcript, err := conv.MarshalTranscript()
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	if err := r.store.Save(runID, ConversationFile, transcript); err != nil {
		return fmt.Errorf("run %s: failed to save conversation: %w", runID, err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("run %s: failed to marshal analysis: %w", runID, err)
	}
	if err := r.store.Save(runID, AnalysisFile, data); err != nil {
		return fmt.Errorf("run %s: failed to save analysis: %w", runID, err)
	}

	var report bytes.Buffer
	if err := analysis.WriteReport(&report, result); err != nil {
		return fmt.Errorf("run %s: failed to render report: %w", runID, err)
	}
	if err := r.store.Save(runID, ReportFile, report.Bytes()); err != nil {
		return fmt.Errorf("run %s: failed to save report: %w", runID, err)
	}

	return nil
}
