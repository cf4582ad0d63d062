package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short.md", 20, "short.md"},
		{"a-very-long-task-file-name.md", 12, "a-very-lo..."},
		{"ab", 1, "a"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.maxLen))
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Pending", titleCase("pending"))
	assert.Equal(t, "", titleCase(""))
}
