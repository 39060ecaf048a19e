// Command duet runs agent-to-agent conversation experiments and
// analyzes the transcripts for attractor behavior.
//
// A run drives two instances of the same model through a scripted
// opening into a free conversation, records every turn, and scores the
// transcript for phase structure (philosophical, gratitude, spiritual)
// and attractor onset. Outputs land under the configured output
// directory, one subdirectory per run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hupe1980/duet/analysis"
	"github.com/hupe1980/duet/config"
	"github.com/hupe1980/duet/dialogue"
	"github.com/hupe1980/duet/experiment"
	"github.com/hupe1980/duet/logging"
	"github.com/hupe1980/duet/model"
	anthropicmodel "github.com/hupe1980/duet/model/anthropic"
	openaimodel "github.com/hupe1980/duet/model/openai"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

const echoLimit = 80

func main() {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Experiment config file (YAML)")
	provider := flag.String("provider", "", "Completion provider: anthropic, openai or mock")
	modelID := flag.String("model", "", "Model id passed to the provider")
	turns := flag.Int("turns", 0, "Number of conversation turns")
	runs := flag.Int("runs", 0, "Number of experiment runs")
	parallel := flag.Int("parallel", 0, "Concurrent runs in a batch")
	output := flag.String("output", "", "Output directory")
	seedMessage := flag.String("seed-message", "", "Custom seed message to start the conversation")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	logFormat := flag.String("log-format", "", "Log format: text or json")
	quiet := flag.Bool("quiet", false, "Suppress live turn echo")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnv()

	// Flags override file and environment when set.
	if *provider != "" {
		cfg.Provider = *provider
	}
	if *modelID != "" {
		cfg.Model = *modelID
	}
	if *turns > 0 {
		cfg.MaxTurns = *turns
	}
	if *runs > 0 {
		cfg.Runs = *runs
	}
	if *parallel > 0 {
		cfg.Parallelism = *parallel
	}
	if *output != "" {
		cfg.OutputDir = *output
	}
	if *seedMessage != "" {
		cfg.SeedMessage = *seedMessage
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}

	if err := cfg.Validate(); err != nil {
		fatalf("Invalid config: %v", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fatalf("Invalid log level: %v", err)
	}
	logger := logging.NewSlogLogger(level, cfg.LogFormat, os.Stderr)

	backend, err := buildModel(cfg)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nStopping, partial transcripts will be kept...")
		cancel()
	}()

	store := experiment.NewDirStore(cfg.OutputDir)
	runner := experiment.New(backend, func(o *experiment.Options) {
		o.Conversation = cfg.Dialogue()
		o.Store = store
		o.Logger = logger
		o.Parallelism = cfg.Parallelism
		if !*quiet && cfg.Runs <= 1 {
			o.Progress = echoTurn
		}
	})

	fmt.Printf("Provider: %s\n", cfg.Provider)
	fmt.Printf("Model:    %s\n", cfg.Model)
	fmt.Printf("Turns:    %d\n", cfg.MaxTurns)
	fmt.Printf("Runs:     %d\n", cfg.Runs)
	fmt.Printf("Output:   %s\n\n", store.Root())

	if cfg.Runs <= 1 {
		runSingle(ctx, runner)
		return
	}
	runMany(ctx, runner, cfg.Runs)
}

func runSingle(ctx context.Context, runner *experiment.Runner) {
	run, err := runner.RunOne(ctx)
	if err != nil {
		fatalf("Run failed: %v", err)
	}

	if cause := run.Conversation.Err(); cause != nil {
		fmt.Printf("\nConversation ended early: %v\n", cause)
	}

	fmt.Println()
	if err := analysis.WriteReport(os.Stdout, run.Analysis); err != nil {
		fatalf("Failed to render report: %v", err)
	}
	fmt.Printf("\nOutputs saved under %s\n", run.ID)
}

func runMany(ctx context.Context, runner *experiment.Runner, n int) {
	batch, err := runner.RunBatch(ctx, n)
	if err != nil {
		fmt.Printf("Some runs failed: %v\n\n", err)
	}
	if batch.Size() == 0 {
		fatalf("No runs finished")
	}

	if err := batch.WriteSummary(os.Stdout); err != nil {
		fatalf("Failed to render summary: %v", err)
	}
}

// buildModel selects the completion backend for the configured provider.
func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropic.Model(cfg.Model)
			o.MaxTokens = int64(cfg.MaxTokens)
		}), nil
	case config.ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			o.Model = openai.ChatModel(cfg.Model)
			o.MaxCompletionTokens = int64(cfg.MaxTokens)
		}), nil
	case config.ProviderMock:
		return model.NewMockModel(cfg.Model, "mock"), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// echoTurn prints one line per appended message, truncated for
// readability.
func echoTurn(turn int, speaker dialogue.Role, content string) error {
	runes := []rune(content)
	if len(runes) > echoLimit {
		content = string(runes[:echoLimit-3]) + "..."
	}
	fmt.Printf("[turn %2d | %s] %s\n", turn, speaker, content)
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}
