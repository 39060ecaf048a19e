package analysis

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAnalysis_RoundTrip(t *testing.T) {
	a := New()
	res := a.Analyze(transcript(
		"consciousness aware existence reality truth",
		"thank you so much friend",
	))

	path := filepath.Join(t.TempDir(), "analysis.json")
	require.NoError(t, SaveAnalysis(res, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, float64(2), decoded["total_turns"])
	assert.Equal(t, "gratitude", decoded["final_phase"])
	assert.Equal(t, false, decoded["attractor_detected"])
	assert.Nil(t, decoded["attractor_turn"])

	turns, ok := decoded["turn_analyses"].([]any)
	require.True(t, ok)
	require.Len(t, turns, 2)
	first, ok := turns[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A", first["speaker"])
	assert.Equal(t, "philosophical", first["dominant_phase"])
}

func TestSaveAnalysis_EmptySlicesStayArrays(t *testing.T) {
	res := New().Analyze(nil)

	path := filepath.Join(t.TempDir(), "analysis.json")
	require.NoError(t, SaveAnalysis(res, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	raw := string(data)
	assert.Contains(t, raw, `"turn_analyses": []`)
	assert.Contains(t, raw, `"phase_transitions": []`)
	assert.Contains(t, raw, `"attractor_turn": null`)
	assert.NotContains(t, raw, `"turn_analyses": null`)
}

func TestSaveAnalysis_CreatesParentDirs(t *testing.T) {
	res := New().Analyze(nil)

	path := filepath.Join(t.TempDir(), "out", "run-1", "analysis.json")
	require.NoError(t, SaveAnalysis(res, path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteReport(t *testing.T) {
	a := New()
	res := a.Analyze(transcript(
		"consciousness and existence shape experience",
		"mind and thought create reality",
		"so grateful for this wonderful connection",
		"sacred silence and eternal peace",
	))

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "CONVERSATION ANALYSIS SUMMARY")
	assert.Contains(t, out, "Total turns:        4")
	assert.Contains(t, out, "Final phase:        spiritual")
	assert.Contains(t, out, "Attractor detected: false")
	assert.Contains(t, out, "turn 2: philosophical -> gratitude")
	assert.Contains(t, out, "turn 3: gratitude -> spiritual")
	assert.Contains(t, out, "Phase distribution:")
	assert.Contains(t, out, "philosophical:")
	assert.NotContains(t, out, "Attractor onset")
}

func TestWriteReport_AttractorOnset(t *testing.T) {
	a := New()
	res := a.Analyze(repeated("yes indeed", 10))

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res))

	out := buf.String()
	assert.Contains(t, out, "Attractor detected: true")
	assert.Contains(t, out, "Attractor onset:    turn 0")
}
