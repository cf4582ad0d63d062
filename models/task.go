package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Stage represents one of the named states a task file progresses through.
// Each stage is backed by a directory under the prompts root.
type Stage string

const (
	StagePending   Stage = "pending"
	StageBuilding  Stage = "building"
	StageCompleted Stage = "completed"
)

// Stages returns the ordered set of stages a task moves through.
func Stages() []Stage {
	return []Stage{StagePending, StageBuilding, StageCompleted}
}

// ParseStage converts a string into a Stage, case-insensitively.
func ParseStage(s string) (Stage, error) {
	switch Stage(strings.ToLower(strings.TrimSpace(s))) {
	case StagePending:
		return StagePending, nil
	case StageBuilding:
		return StageBuilding, nil
	case StageCompleted:
		return StageCompleted, nil
	}
	return "", fmt.Errorf("unknown stage %q (expected pending, building or completed)", s)
}

// Valid reports whether the stage is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StagePending, StageBuilding, StageCompleted:
		return true
	}
	return false
}

// Next returns the stage that follows s in the lifecycle.
// The second return value is false for the terminal stage.
func (s Stage) Next() (Stage, bool) {
	switch s {
	case StagePending:
		return StageBuilding, true
	case StageBuilding:
		return StageCompleted, true
	}
	return "", false
}

// Dir returns the directory name backing this stage.
func (s Stage) Dir() string {
	return string(s)
}

func (s Stage) String() string {
	return string(s)
}

// Task represents a unit of work handed off through the bridge.
// A task is identified by its filename; its content is opaque to the
// bridge and never modified, only its stage (and therefore its physical
// location) changes.
type Task struct {
	Name    string `json:"name" yaml:"name" validate:"required,endswith=.md"`
	Stage   Stage  `json:"stage" yaml:"stage" validate:"required,oneof=pending building completed"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	if err := validate.Struct(s); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("field %q failed rule %q (value: %v)", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
