package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbridge/promptbridge/models"
)

func TestEmitFramesContent(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	err := r.Emit(models.Task{Name: "task1.md", Stage: models.StageBuilding, Content: "do X"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "TASK CONTENT FROM task1.md:")
	assert.Contains(t, out, "do X")
	assert.Equal(t, 2, strings.Count(out, strings.Repeat("=", 50)), "opening and closing rules")
	assert.Contains(t, out, strings.Repeat("-", 50))
}

func TestEmitSegmentsMultipleTasks(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	require.NoError(t, r.Emit(models.Task{Name: "a.md", Content: "first"}))
	require.NoError(t, r.Emit(models.Task{Name: "b.md", Content: "second"}))

	out := buf.String()
	first := strings.Index(out, "TASK CONTENT FROM a.md:")
	second := strings.Index(out, "TASK CONTENT FROM b.md:")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	assert.Equal(t, 4, strings.Count(out, strings.Repeat("=", 50)))
}
