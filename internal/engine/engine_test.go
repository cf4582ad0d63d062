package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptbridge/promptbridge/internal/journal"
	"github.com/promptbridge/promptbridge/internal/report"
	"github.com/promptbridge/promptbridge/models"
	"github.com/promptbridge/promptbridge/store"
)

// fakeVCS records sync/checkpoint calls and returns configured errors.
type fakeVCS struct {
	SyncCalls     int
	Checkpoints   []string
	SyncErr       error
	CheckpointErr error
}

func (f *fakeVCS) Sync() error {
	f.SyncCalls++
	return f.SyncErr
}

func (f *fakeVCS) Checkpoint(message string) error {
	f.Checkpoints = append(f.Checkpoints, message)
	return f.CheckpointErr
}

type fixture struct {
	store    *store.FileStageStore
	fs       afero.Fs
	vcs      *fakeVCS
	engine   *Engine
	reported *bytes.Buffer
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, policy ClaimPolicy) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	s := store.NewFileStageStoreWithFs(fs, "/repo", "prompts", ".md")
	require.NoError(t, s.EnsureStages())

	vcs := &fakeVCS{}
	reported := &bytes.Buffer{}
	logs := &bytes.Buffer{}

	eng := New(Options{
		Store:     s,
		VCS:       vcs,
		Reporter:  report.NewConsoleReporter(reported),
		Policy:    policy,
		WatcherID: "test-watcher",
		Log:       logs,
	})

	return &fixture{store: s, fs: fs, vcs: vcs, engine: eng, reported: reported, logs: logs}
}

func (f *fixture) addPending(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fs, f.store.TaskPath(name, models.StagePending), []byte(content), 0o644))
}

func TestEmptyCycleIdempotent(t *testing.T) {
	f := newFixture(t, PolicyAll)

	for i := 0; i < 3; i++ {
		res, err := f.engine.RunCycle(context.Background())
		require.NoError(t, err)
		assert.Empty(t, res.Detected)
		assert.Empty(t, res.Claimed)
	}

	assert.Equal(t, 3, f.vcs.SyncCalls, "sync runs before every scan")
	assert.Empty(t, f.vcs.Checkpoints, "no checkpoints on empty cycles")
	assert.Empty(t, f.reported.String(), "nothing emitted on empty cycles")
}

func TestEndToEndSingleCycle(t *testing.T) {
	f := newFixture(t, PolicyAll)
	f.addPending(t, "task1.md", "do X")

	res, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"task1.md"}, res.Claimed)
	assert.Empty(t, res.Failed)

	// The file moved to building with identical content.
	pending, err := f.store.List(models.StagePending)
	require.NoError(t, err)
	assert.Empty(t, pending)
	content, err := f.store.Read("task1.md", models.StageBuilding)
	require.NoError(t, err)
	assert.Equal(t, "do X", content)

	// The checkpoint message names the file and the destination stage.
	require.Len(t, f.vcs.Checkpoints, 1)
	assert.Contains(t, f.vcs.Checkpoints[0], "task1.md")
	assert.Contains(t, f.vcs.Checkpoints[0], "building")

	// The reporter emitted the content framed with the identifier.
	out := f.reported.String()
	assert.Contains(t, out, "TASK CONTENT FROM task1.md:")
	assert.Contains(t, out, "do X")
	assert.Contains(t, out, strings.Repeat("=", 50))
}

func TestPolicyAllClaimsEveryPendingTask(t *testing.T) {
	f := newFixture(t, PolicyAll)
	f.addPending(t, "b.md", "second")
	f.addPending(t, "a.md", "first")

	res, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md"}, res.Claimed, "listing order is lexicographic")
	assert.Len(t, f.vcs.Checkpoints, 2)
}

func TestPolicyFirstClaimsOneTaskPerCycle(t *testing.T) {
	f := newFixture(t, PolicyFirst)
	f.addPending(t, "b.md", "second")
	f.addPending(t, "a.md", "first")

	res, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, res.Claimed)

	res, err = f.engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md"}, res.Claimed)
}

func TestPartialCycleFailureIsolation(t *testing.T) {
	f := newFixture(t, PolicyAll)
	f.addPending(t, "a.md", "ok")
	f.addPending(t, "b.md", "collides")
	// Pre-existing file in building makes b.md's move collide.
	require.NoError(t, afero.WriteFile(f.fs, f.store.TaskPath("b.md", models.StageBuilding), []byte("stale"), 0o644))

	res, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.md"}, res.Claimed, "sibling still processed")
	require.Contains(t, res.Failed, "b.md")
	assert.ErrorIs(t, res.Failed["b.md"], store.ErrTaskExists)

	// The failing candidate remains in pending for the next cycle.
	pending, err := f.store.List(models.StagePending)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.md"}, pending)
}

func TestClaimRaceExactlyOneWinner(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := store.NewFileStageStoreWithFs(fs, "/repo", "prompts", ".md")
	require.NoError(t, s.EnsureStages())
	require.NoError(t, afero.WriteFile(fs, s.TaskPath("task1.md", models.StagePending), []byte("x"), 0o644))

	newEngine := func(id string) *Engine {
		return New(Options{
			Store:     s,
			VCS:       &fakeVCS{},
			Reporter:  report.NewConsoleReporter(&bytes.Buffer{}),
			WatcherID: id,
			Log:       &bytes.Buffer{},
		})
	}
	first := newEngine("watcher-a")
	second := newEngine("watcher-b")

	// Both watchers listed the same pending task; the first move wins.
	require.NoError(t, first.Claim("task1.md"))

	err := second.Claim("task1.md")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	// The task was not lost.
	building, err := s.List(models.StageBuilding)
	require.NoError(t, err)
	assert.Equal(t, []string{"task1.md"}, building)
}

func TestClaimRejectsNonTaskFile(t *testing.T) {
	f := newFixture(t, PolicyAll)
	// Bypass the extension filter by claiming a stray file directly.
	require.NoError(t, afero.WriteFile(f.fs, f.store.TaskPath("notes.txt", models.StagePending), []byte("scratch"), 0o644))

	err := f.engine.Claim("notes.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
	assert.Empty(t, f.reported.String(), "invalid tasks are never emitted")
}

func TestCheckpointFailureDoesNotRollBackMove(t *testing.T) {
	f := newFixture(t, PolicyAll)
	f.vcs.CheckpointErr = errors.New("push origin: remote rejected")
	f.addPending(t, "task1.md", "do X")

	res, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"task1.md"}, res.Claimed, "claim succeeds despite checkpoint failure")

	building, err := f.store.List(models.StageBuilding)
	require.NoError(t, err)
	assert.Equal(t, []string{"task1.md"}, building)

	assert.Contains(t, f.logs.String(), "Error pushing status for task1.md")

	// A later cycle's checkpoint is attempted normally once the remote
	// recovers; add-all semantics carry the earlier uncommitted move.
	f.vcs.CheckpointErr = nil
	f.addPending(t, "task2.md", "do Y")
	res, err = f.engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"task2.md"}, res.Claimed)
	assert.Len(t, f.vcs.Checkpoints, 2)
}

func TestJournalRecordsCheckpointOutcome(t *testing.T) {
	f := newFixture(t, PolicyAll)
	j, err := journal.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	eng := New(Options{
		Store:     f.store,
		VCS:       f.vcs,
		Reporter:  report.NewConsoleReporter(&bytes.Buffer{}),
		Journal:   j,
		WatcherID: "test-watcher",
		Log:       &bytes.Buffer{},
	})

	f.vcs.CheckpointErr = errors.New("push failed")
	f.addPending(t, "task1.md", "x")
	_, err = eng.RunCycle(context.Background())
	require.NoError(t, err)

	entries, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "task1.md", entries[0].Task)
	assert.Equal(t, models.StagePending, entries[0].From)
	assert.Equal(t, models.StageBuilding, entries[0].To)
	assert.Equal(t, "test-watcher", entries[0].Watcher)
	assert.False(t, entries[0].Committed)
	assert.Contains(t, entries[0].Error, "push failed")
}

func TestAtMostOnceClaimPerLifetime(t *testing.T) {
	f := newFixture(t, PolicyAll)
	f.addPending(t, "task1.md", "x")

	_, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)

	// Someone moves the task back into pending out-of-band. This
	// process must not claim it a second time.
	require.NoError(t, f.store.Move("task1.md", models.StageBuilding, models.StagePending))

	res, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Claimed)
	assert.Empty(t, res.Detected)
}

func TestSyncFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, PolicyAll)
	f.vcs.SyncErr = errors.New("pull origin: network unreachable")
	f.addPending(t, "task1.md", "x")

	res, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"task1.md"}, res.Claimed, "poll proceeds against local state")
	assert.Contains(t, f.logs.String(), "git sync failed")
}

func TestComplete(t *testing.T) {
	f := newFixture(t, PolicyAll)
	f.addPending(t, "task1.md", "x")
	_, err := f.engine.RunCycle(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.engine.Complete("task1.md"))

	completed, err := f.store.List(models.StageCompleted)
	require.NoError(t, err)
	assert.Equal(t, []string{"task1.md"}, completed)

	require.Len(t, f.vcs.Checkpoints, 2)
	assert.Contains(t, f.vcs.Checkpoints[1], "task1.md")
	assert.Contains(t, f.vcs.Checkpoints[1], "completed")
}

func TestCompleteMissingTask(t *testing.T) {
	f := newFixture(t, PolicyAll)

	err := f.engine.Complete("ghost.md")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("all")
	require.NoError(t, err)
	assert.Equal(t, PolicyAll, p)

	p, err = ParsePolicy("first")
	require.NoError(t, err)
	assert.Equal(t, PolicyFirst, p)

	_, err = ParsePolicy("some")
	assert.Error(t, err)
}

func TestCancelledContextStopsCycle(t *testing.T) {
	f := newFixture(t, PolicyAll)
	f.addPending(t, "task1.md", "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.engine.RunCycle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
