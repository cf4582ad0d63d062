package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/promptbridge/promptbridge/models"
)

const (
	defaultPromptsDir = "prompts"
	defaultTaskExt    = ".md"
)

// FileStageStore implements StageStore on top of an afero filesystem.
// Production code uses the OS filesystem; tests use an in-memory one.
// Moves are performed with a single rename so that two watchers racing
// on the same tree are arbitrated by the filesystem: whichever rename
// succeeds wins, the other observes ErrTaskNotFound.
type FileStageStore struct {
	fs         afero.Fs
	root       string // working tree root
	promptsDir string
	ext        string
}

// NewFileStageStore creates a store rooted at the given working tree,
// backed by the OS filesystem.
func NewFileStageStore(root string) *FileStageStore {
	return NewFileStageStoreWithFs(afero.NewOsFs(), root, defaultPromptsDir, defaultTaskExt)
}

// NewFileStageStoreWithFs creates a store with an explicit filesystem,
// prompts directory and task extension. Used by tests and by callers
// with non-default configuration.
func NewFileStageStoreWithFs(fs afero.Fs, root, promptsDir, ext string) *FileStageStore {
	if promptsDir == "" {
		promptsDir = defaultPromptsDir
	}
	if ext == "" {
		ext = defaultTaskExt
	}
	return &FileStageStore{fs: fs, root: root, promptsDir: promptsDir, ext: ext}
}

// Fs exposes the backing filesystem, mainly for tests seeding task files.
func (s *FileStageStore) Fs() afero.Fs {
	return s.fs
}

// StageDir returns the directory backing the given stage.
func (s *FileStageStore) StageDir(stage models.Stage) string {
	return filepath.Join(s.root, s.promptsDir, stage.Dir())
}

// TaskPath returns the path of a task file within a stage.
func (s *FileStageStore) TaskPath(name string, stage models.Stage) string {
	return filepath.Join(s.StageDir(stage), name)
}

// PendingDir returns the pending stage directory. The polling loop
// points its filesystem notifier here.
func (s *FileStageStore) PendingDir() string {
	return s.StageDir(models.StagePending)
}

// List returns the sorted task file names present in the stage.
func (s *FileStageStore) List(stage models.Stage) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.StageDir(stage))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", stage, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), s.ext) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Move relocates a task file between stages with a single rename.
func (s *FileStageStore) Move(name string, from, to models.Stage) error {
	src := s.TaskPath(name, from)
	dst := s.TaskPath(name, to)

	if err := s.fs.MkdirAll(s.StageDir(to), 0o755); err != nil {
		return fmt.Errorf("create %s directory: %w", to, err)
	}

	if _, err := s.fs.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("move %s from %s: %w", name, from, ErrTaskNotFound)
		}
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if _, err := s.fs.Stat(dst); err == nil {
		return fmt.Errorf("move %s to %s: %w", name, to, ErrTaskExists)
	}

	if err := s.fs.Rename(src, dst); err != nil {
		// The source can vanish between the stat and the rename when
		// another watcher claims the same task first.
		if os.IsNotExist(err) {
			return fmt.Errorf("move %s from %s: %w", name, from, ErrTaskNotFound)
		}
		return fmt.Errorf("move %s from %s to %s: %w", name, from, to, err)
	}
	return nil
}

// Read returns the content of a task file in the given stage.
func (s *FileStageStore) Read(name string, stage models.Stage) (string, error) {
	data, err := afero.ReadFile(s.fs, s.TaskPath(name, stage))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("read %s in %s: %w", name, stage, ErrTaskNotFound)
		}
		return "", fmt.Errorf("read %s in %s: %w", name, stage, err)
	}
	return string(data), nil
}

// EnsureStages creates every stage directory on demand.
func (s *FileStageStore) EnsureStages() error {
	for _, stage := range models.Stages() {
		if err := s.fs.MkdirAll(s.StageDir(stage), 0o755); err != nil {
			return fmt.Errorf("create %s directory: %w", stage, err)
		}
	}
	return nil
}
