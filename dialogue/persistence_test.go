package dialogue

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/duet/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	m := model.NewMockModel("test-model", "mock").Enqueue("one", "two", "three", "four")
	clock := testClock()
	conv := New(testConfig(5), m, func(o *Options) { o.Clock = clock })

	_, err := conv.Run(context.Background(), nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "conversation.json")
	require.NoError(t, conv.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, conv.Messages(), loaded.Messages())
	assert.Equal(t, conv.Metadata(), loaded.Metadata())
	assert.Equal(t, conv.Config(), loaded.Config())
	assert.Equal(t, StatusCompleted, loaded.Status())
}

func TestSave_CreatesParentDirs(t *testing.T) {
	conv := New(testConfig(2), model.NewMockModel("test-model", "mock"))
	path := filepath.Join(t.TempDir(), "nested", "deeper", "conversation.json")

	require.NoError(t, conv.Save(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestLoad_UnknownConfigFieldsIgnored(t *testing.T) {
	raw := `{
  "metadata": {
    "started_at": "2025-06-01T10:00:00Z",
    "config": {
      "model": "test-model",
      "max_turns": 3,
      "max_tokens_per_response": 256,
      "system_a": "a",
      "system_b": "b",
      "seed_message": "seed",
      "temperature": 0.9,
      "experiment_tag": "pilot-7"
    },
    "ended_at": "2025-06-01T10:05:00Z",
    "total_turns": 3
  },
  "messages": [
    {"role": "A", "content": "seed", "turn": 0, "timestamp": "2025-06-01T10:00:01Z"},
    {"role": "B", "content": "hi", "turn": 1, "timestamp": "2025-06-01T10:00:02Z"},
    {"role": "A", "content": "hello", "turn": 2, "timestamp": "2025-06-01T10:00:03Z"}
  ]
}`
	path := filepath.Join(t.TempDir(), "conversation.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-model", loaded.Config().Model)
	assert.Equal(t, 3, loaded.Config().MaxTurns)
	assert.Len(t, loaded.Messages(), 3)
	assert.Equal(t, StatusCompleted, loaded.Status())
}

func TestLoad_MissingRequiredConfigFails(t *testing.T) {
	raw := `{
  "metadata": {
    "started_at": "2025-06-01T10:00:00Z",
    "config": {"max_turns": 3, "max_tokens_per_response": 256, "seed_message": "seed"}
  },
  "messages": []
}`
	path := filepath.Join(t.TempDir(), "conversation.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrMalformedTranscript)
}

func TestLoad_InvalidRoleFails(t *testing.T) {
	raw := `{
  "metadata": {
    "started_at": "2025-06-01T10:00:00Z",
    "config": {"model": "m", "max_turns": 2, "max_tokens_per_response": 10, "seed_message": "s"}
  },
  "messages": [{"role": "C", "content": "x", "turn": 0, "timestamp": "2025-06-01T10:00:01Z"}]
}`
	path := filepath.Join(t.TempDir(), "conversation.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrMalformedTranscript)
}

func TestLoad_TurnGapFails(t *testing.T) {
	raw := `{
  "metadata": {
    "started_at": "2025-06-01T10:00:00Z",
    "config": {"model": "m", "max_turns": 5, "max_tokens_per_response": 10, "seed_message": "s"}
  },
  "messages": [
    {"role": "A", "content": "x", "turn": 0, "timestamp": "2025-06-01T10:00:01Z"},
    {"role": "B", "content": "y", "turn": 2, "timestamp": "2025-06-01T10:00:02Z"}
  ]
}`
	path := filepath.Join(t.TempDir(), "conversation.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrMalformedTranscript)
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversation.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrMalformedTranscript)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrMalformedTranscript)
}

func TestLoad_PartialTranscriptIsAborted(t *testing.T) {
	m := model.NewMockModel("test-model", "mock").
		Enqueue("one").
		EnqueueError(assert.AnError)
	conv := New(testConfig(10), m)

	_, err := conv.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, StatusAborted, conv.Status())

	path := filepath.Join(t.TempDir(), "conversation.json")
	require.NoError(t, conv.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StatusAborted, loaded.Status())
	assert.Len(t, loaded.Messages(), 2)
}

func TestLoad_RunUnavailable(t *testing.T) {
	conv := New(testConfig(3), model.NewMockModel("test-model", "mock"))
	path := filepath.Join(t.TempDir(), "conversation.json")
	require.NoError(t, conv.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, StatusNotStarted, loaded.Status())

	// A loaded conversation carries no completion model.
	_, err = loaded.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoModel)
}
