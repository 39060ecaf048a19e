// Package duet provides a high-level façade over the dialogue engine,
// attractor analyzer and experiment runner, enabling quick setup of
// agent-to-agent conversation studies. Most applications interact with
// this package by:
//  1. Creating a Duet via New() (optionally overriding the completion
//     model, output store, dialogue configuration or analyzer knobs)
//  2. Running a single dialogue (RunDialogue) or full, persisted
//     experiments (RunExperiment, RunBatch)
//  3. Inspecting transcripts and analyses, or re-analyzing recorded
//     conversations via Analyze
//
// The façade delegates to the dialogue, analysis and experiment
// packages while keeping setup concise. All defaults are safe for local
// development and testing: a scripted mock model, an in-memory output
// store and a no-op logger. Production usage typically supplies a real
// completion model (model/anthropic or model/openai), a DirStore and a
// structured logger.
package duet

import (
	"context"

	"github.com/hupe1980/duet/analysis"
	"github.com/hupe1980/duet/dialogue"
	"github.com/hupe1980/duet/experiment"
	"github.com/hupe1980/duet/logging"
	"github.com/hupe1980/duet/model"
)

// Options configures the Duet instance.
type Options struct {
	// Model is the completion backend both speakers share. Defaults to
	// a scripted mock, which keeps examples and tests offline.
	Model model.Model

	// Conversation is the dialogue configuration applied to every run.
	Conversation dialogue.Config

	// Analysis customizes analyzer thresholds and window geometry.
	Analysis []func(o *analysis.Options)

	// Store receives the persisted outputs of experiment runs
	// (defaults to an in-memory implementation if not provided).
	Store experiment.OutputStore

	// Parallelism bounds concurrent runs in RunBatch.
	Parallelism int

	// Progress is invoked after every appended message of every run.
	Progress dialogue.ProgressFunc

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Duet is the high-level façade aggregating the dialogue engine,
// analyzer and experiment runner.
type Duet struct {
	opts     Options
	analyzer *analysis.Analyzer
	runner   *experiment.Runner
}

// New creates a new Duet instance with optional overrides. Any unset
// dependency is initialized with an offline-friendly default.
func New(optFns ...func(o *Options)) *Duet {
	opts := Options{
		Model:        model.NewMockModel("mock-model", "mock"),
		Conversation: dialogue.DefaultConfig(),
		Store:        experiment.NewMemoryStore(),
		Parallelism:  1,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	runner := experiment.New(opts.Model, func(o *experiment.Options) {
		o.Conversation = opts.Conversation
		o.Analysis = opts.Analysis
		o.Store = opts.Store
		o.Logger = opts.Logger
		o.Parallelism = opts.Parallelism
		o.Progress = opts.Progress
	})

	return &Duet{
		opts:     opts,
		analyzer: analysis.New(opts.Analysis...),
		runner:   runner,
	}
}

// RunDialogue runs a single conversation without persistence and
// returns it. A backend failure mid-dialogue yields the partial
// conversation; inspect Status and Err on the result.
func (d *Duet) RunDialogue(ctx context.Context, progress dialogue.ProgressFunc) (*dialogue.Conversation, error) {
	conv := dialogue.New(d.opts.Conversation, d.opts.Model, func(o *dialogue.Options) {
		o.Logger = d.opts.Logger
	})

	if _, err := conv.Run(ctx, progress); err != nil {
		return nil, err
	}

	return conv, nil
}

// Analyze runs the attractor analyzer over a recorded transcript.
func (d *Duet) Analyze(messages []dialogue.Message) *analysis.Analysis {
	return d.analyzer.Analyze(messages)
}

// RunExperiment runs one conversation end to end and persists its
// outputs through the configured store.
func (d *Duet) RunExperiment(ctx context.Context) (*experiment.Run, error) {
	return d.runner.RunOne(ctx)
}

// RunBatch runs n independent conversations and aggregates their
// outcomes.
func (d *Duet) RunBatch(ctx context.Context, n int) (*experiment.Batch, error) {
	return d.runner.RunBatch(ctx, n)
}
