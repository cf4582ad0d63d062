package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Stage
		wantErr bool
	}{
		{name: "pending", input: "pending", want: StagePending},
		{name: "building", input: "building", want: StageBuilding},
		{name: "completed", input: "completed", want: StageCompleted},
		{name: "mixed case", input: "Building", want: StageBuilding},
		{name: "surrounding whitespace", input: "  pending ", want: StagePending},
		{name: "unknown", input: "archived", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStage(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStageNext(t *testing.T) {
	next, ok := StagePending.Next()
	assert.True(t, ok)
	assert.Equal(t, StageBuilding, next)

	next, ok = StageBuilding.Next()
	assert.True(t, ok)
	assert.Equal(t, StageCompleted, next)

	_, ok = StageCompleted.Next()
	assert.False(t, ok)
}

func TestStageValid(t *testing.T) {
	for _, s := range Stages() {
		assert.True(t, s.Valid(), "stage %s should be valid", s)
	}
	assert.False(t, Stage("archived").Valid())
	assert.False(t, Stage("").Valid())
}

func TestTaskValidation(t *testing.T) {
	task := Task{Name: "task1.md", Stage: StagePending}
	assert.NoError(t, ValidateStruct(task))

	bad := Task{Name: "task1.txt", Stage: StagePending}
	assert.Error(t, ValidateStruct(bad), "non-md task names are rejected")

	bad = Task{Name: "task1.md", Stage: Stage("archived")}
	assert.Error(t, ValidateStruct(bad))
}
