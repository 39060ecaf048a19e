package duet

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/duet/analysis"
	"github.com/hupe1980/duet/dialogue"
	"github.com/hupe1980/duet/experiment"
	"github.com/hupe1980/duet/internal/testutil"
	"github.com/hupe1980/duet/model"
)

func testConfig(maxTurns int) dialogue.Config {
	return dialogue.Config{
		Model:                "test-model",
		MaxTurns:             maxTurns,
		MaxTokensPerResponse: 256,
		SystemA:              "system prompt a",
		SystemB:              "system prompt b",
		SeedMessage:          "seed message",
	}
}

// attractorTranscript yields six long neutral turns followed by six
// short fully spiritual ones. The first window holding two spiritual
// turns starts at turn 3.
func attractorTranscript() []dialogue.Message {
	filler := strings.TrimSpace(strings.Repeat("plain filler words here ", 10))
	return testutil.NewTranscriptBuilder().
		SayN(filler, 6).
		SayN("sacred eternal divine", 6).
		Build()
}

func TestDuet_RunDialogue(t *testing.T) {
	m := model.NewMockModel("test-model", "mock").Enqueue("one", "two")
	d := New(func(o *Options) {
		o.Model = m
		o.Conversation = testConfig(3)
	})

	conv, err := d.RunDialogue(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, dialogue.StatusCompleted, conv.Status())
	assert.Len(t, conv.Messages(), 3)
	assert.Equal(t, 2, m.CallCount())
}

func TestDuet_OfflineByDefault(t *testing.T) {
	d := New(func(o *Options) {
		o.Conversation = testConfig(2)
	})

	conv, err := d.RunDialogue(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, dialogue.StatusCompleted, conv.Status())
	assert.Len(t, conv.Messages(), 2)
}

func TestDuet_Analyze(t *testing.T) {
	d := New()
	msgs := testutil.NewTranscriptBuilder().
		Say("consciousness and existence shape experience").
		Say("so grateful for this wonderful connection").
		Build()

	res := d.Analyze(msgs)

	require.Equal(t, 2, res.TotalTurns)
	assert.Equal(t, analysis.PhaseGratitude, res.FinalPhase)
	assert.Len(t, res.PhaseTransitions, 1)
}

func TestDuet_AnalyzeAttractor(t *testing.T) {
	d := New()

	res := d.Analyze(attractorTranscript())

	assert.True(t, res.AttractorDetected)
	require.NotNil(t, res.AttractorTurn)
	assert.Equal(t, 3, *res.AttractorTurn)
	assert.Equal(t, analysis.PhaseSpiritual, res.FinalPhase)
}

func TestDuet_AnalyzeOptions(t *testing.T) {
	d := New(func(o *Options) {
		o.Analysis = []func(o *analysis.Options){
			func(o *analysis.Options) { o.MinTurns = 20 },
		}
	})

	res := d.Analyze(attractorTranscript())

	assert.False(t, res.AttractorDetected)
	assert.Nil(t, res.AttractorTurn)
}

func TestDuet_RunExperiment(t *testing.T) {
	store := experiment.NewMemoryStore()
	m := model.NewMockModel("test-model", "mock").Enqueue("one")
	d := New(func(o *Options) {
		o.Model = m
		o.Conversation = testConfig(2)
		o.Store = store
	})

	run, err := d.RunExperiment(context.Background())
	require.NoError(t, err)

	names, err := store.List(run.ID)
	require.NoError(t, err)
	assert.Len(t, names, 3)
	assert.Equal(t, 2, run.Analysis.TotalTurns)
}

func TestDuet_RunBatch(t *testing.T) {
	m := model.NewMockModel("test-model", "mock").Enqueue("one", "two")
	d := New(func(o *Options) {
		o.Model = m
		o.Conversation = testConfig(2)
	})

	batch, err := d.RunBatch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Size())
}
