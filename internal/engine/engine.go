// Package engine implements the claim protocol: select eligible
// pending tasks, move each into the building stage with a single
// atomic rename, checkpoint the transition through version control and
// surface the claimed content to the reporter.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/promptbridge/promptbridge/internal/journal"
	"github.com/promptbridge/promptbridge/internal/logger"
	"github.com/promptbridge/promptbridge/internal/report"
	"github.com/promptbridge/promptbridge/models"
	"github.com/promptbridge/promptbridge/store"
)

// ErrAlreadyClaimed signals that a task vanished from the pending
// stage before this watcher's move landed, i.e. another watcher (or an
// earlier cycle of this one) claimed it. Benign in multi-watcher
// deployments.
var ErrAlreadyClaimed = errors.New("task already claimed")

// ClaimPolicy controls how many eligible tasks one poll cycle claims.
type ClaimPolicy string

const (
	// PolicyAll claims every pending task found in a cycle.
	PolicyAll ClaimPolicy = "all"
	// PolicyFirst claims only the first pending task found.
	PolicyFirst ClaimPolicy = "first"
)

// ParsePolicy converts a string into a ClaimPolicy.
func ParsePolicy(s string) (ClaimPolicy, error) {
	switch ClaimPolicy(s) {
	case PolicyAll:
		return PolicyAll, nil
	case PolicyFirst:
		return PolicyFirst, nil
	}
	return "", fmt.Errorf("unknown claim policy %q (expected all or first)", s)
}

// VersionControl is the engine's view of the version control adapter.
type VersionControl interface {
	// Sync pulls remote state before a scan. Failure is non-fatal.
	Sync() error
	// Checkpoint records the current working tree state. Failure is
	// non-fatal and never rolls back filesystem moves.
	Checkpoint(message string) error
}

// Options configures an Engine.
type Options struct {
	Store    store.StageStore
	VCS      VersionControl
	Reporter report.Reporter
	Journal  *journal.Journal // optional
	Policy   ClaimPolicy
	// WatcherID identifies this watcher in logs and journal rows.
	// Generated when empty.
	WatcherID string
	// Log receives human-readable progress lines. Defaults to stdout.
	Log io.Writer
}

// Engine advances tasks through the stage lifecycle.
type Engine struct {
	store     store.StageStore
	vcs       VersionControl
	reporter  report.Reporter
	journal   *journal.Journal
	policy    ClaimPolicy
	watcherID string
	log       io.Writer

	// claimed tracks task names this process has already moved out of
	// pending, guaranteeing at-most-once claims per process lifetime.
	claimed map[string]struct{}
}

// New creates an Engine.
func New(opts Options) *Engine {
	policy := opts.Policy
	if policy == "" {
		policy = PolicyAll
	}
	watcherID := opts.WatcherID
	if watcherID == "" {
		watcherID = uuid.NewString()
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stdout
	}
	return &Engine{
		store:     opts.Store,
		vcs:       opts.VCS,
		reporter:  opts.Reporter,
		journal:   opts.Journal,
		policy:    policy,
		watcherID: watcherID,
		log:       logw,
		claimed:   make(map[string]struct{}),
	}
}

// WatcherID returns the identity this engine stamps on journal rows.
func (e *Engine) WatcherID() string {
	return e.watcherID
}

// CycleResult reports what a single poll cycle did.
type CycleResult struct {
	Detected []string
	Claimed  []string
	Failed   map[string]error
}

// RunCycle performs one poll cycle: sync remote state, scan the
// pending stage, claim candidates per policy and emit each claimed
// task. One candidate's failure never prevents processing of the
// others.
func (e *Engine) RunCycle(ctx context.Context) (CycleResult, error) {
	result := CycleResult{Failed: make(map[string]error)}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if err := e.vcs.Sync(); err != nil {
		// Non-fatal: proceed against local state.
		fmt.Fprintf(e.log, "[%s] git sync failed (continuing with local state): %v\n", e.watcherID, err)
	}

	pending, err := e.store.List(models.StagePending)
	if err != nil {
		return result, fmt.Errorf("scan pending stage: %w", err)
	}

	var candidates []string
	for _, name := range pending {
		if e.alreadyClaimed(name) {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return result, nil
	}
	if e.policy == PolicyFirst {
		candidates = candidates[:1]
	}

	for _, name := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Detected = append(result.Detected, name)
		fmt.Fprintf(e.log, "New task detected: %s\n", name)

		if err := e.Claim(name); err != nil {
			result.Failed[name] = err
			fmt.Fprintf(e.log, "claim %s failed: %v\n", name, err)
			continue
		}
		result.Claimed = append(result.Claimed, name)
	}

	return result, nil
}

// Claim moves one task from pending to building, checkpoints the
// transition and emits the task content. A missing source file is
// reported as ErrAlreadyClaimed.
func (e *Engine) Claim(name string) error {
	logger.SetLastTask(name)

	if e.alreadyClaimed(name) {
		return fmt.Errorf("claim %s: %w", name, ErrAlreadyClaimed)
	}

	if err := e.store.Move(name, models.StagePending, models.StageBuilding); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return fmt.Errorf("claim %s: %w", name, ErrAlreadyClaimed)
		}
		return fmt.Errorf("claim %s: %w", name, err)
	}
	e.claimed[name] = struct{}{}
	fmt.Fprintf(e.log, "Moved %s to %s\n", name, models.StageBuilding)

	e.checkpoint(name, models.StagePending, models.StageBuilding)

	content, err := e.store.Read(name, models.StageBuilding)
	if err != nil {
		return fmt.Errorf("read claimed task %s: %w", name, err)
	}

	task := models.Task{
		Name:    name,
		Stage:   models.StageBuilding,
		Content: content,
		Path:    e.store.TaskPath(name, models.StageBuilding),
	}
	if err := models.ValidateStruct(task); err != nil {
		return fmt.Errorf("claimed task %s is invalid: %w", name, err)
	}
	if err := e.reporter.Emit(task); err != nil {
		return fmt.Errorf("emit %s: %w", name, err)
	}
	return nil
}

// Complete moves one task from building to completed and checkpoints
// the transition. The watch loop never calls this; it exists for the
// external collaborator driving the final transition through the CLI.
func (e *Engine) Complete(name string) error {
	if err := e.store.Move(name, models.StageBuilding, models.StageCompleted); err != nil {
		return fmt.Errorf("complete %s: %w", name, err)
	}
	fmt.Fprintf(e.log, "Moved %s to %s\n", name, models.StageCompleted)

	e.checkpoint(name, models.StageBuilding, models.StageCompleted)
	return nil
}

// checkpoint records a stage transition in version control and the
// journal. Neither failure is propagated: the filesystem move already
// happened and a later successful checkpoint self-heals the gap.
func (e *Engine) checkpoint(name string, from, to models.Stage) {
	message := fmt.Sprintf("Status Update: %s moved to %s", name, to)

	cpErr := e.vcs.Checkpoint(message)
	if cpErr != nil {
		fmt.Fprintf(e.log, "Error pushing status for %s: %v\n", name, cpErr)
	} else {
		fmt.Fprintf(e.log, "Successfully pushed status for %s\n", name)
	}

	if e.journal != nil {
		entry := journal.Entry{
			Task:      name,
			From:      from,
			To:        to,
			Watcher:   e.watcherID,
			Committed: cpErr == nil,
		}
		if cpErr != nil {
			entry.Error = cpErr.Error()
		}
		if err := e.journal.Record(entry); err != nil {
			fmt.Fprintf(e.log, "journal record for %s failed: %v\n", name, err)
		}
	}
}

func (e *Engine) alreadyClaimed(name string) bool {
	if _, ok := e.claimed[name]; ok {
		return true
	}
	return e.journal != nil && e.journal.Seen(name)
}
