package store

import (
	"errors"

	"github.com/promptbridge/promptbridge/models"
)

// Common errors returned by stage store operations.
var (
	// ErrTaskNotFound is returned when the task file is absent from the
	// source stage. In multi-watcher deployments this is the benign
	// "claimed by someone else" signal.
	ErrTaskNotFound = errors.New("task not found in stage")

	// ErrTaskExists is returned when a move would collide with an
	// existing file in the destination stage.
	ErrTaskExists = errors.New("task already exists in destination stage")
)

// StageStore defines the contract for the directory-backed task queue.
// It maps each stage to a directory under the prompts root and provides
// list/move/read primitives over task files.
type StageStore interface {
	// List returns the sorted names of task files in the given stage.
	// A missing stage directory yields an empty slice, not an error.
	List(stage models.Stage) ([]string, error)

	// Move atomically relocates the task's backing file between stage
	// directories. It creates the destination directory on demand and
	// fails with ErrTaskNotFound if the source file is absent or
	// ErrTaskExists if the destination name collides.
	Move(name string, from, to models.Stage) error

	// Read returns the task file's content in the given stage.
	Read(name string, stage models.Stage) (string, error)

	// EnsureStages creates all stage directories if they do not exist.
	EnsureStages() error

	// TaskPath returns the path of a task file within a stage.
	TaskPath(name string, stage models.Stage) string
}
