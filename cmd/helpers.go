package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/promptbridge/promptbridge/internal/engine"
	"github.com/promptbridge/promptbridge/internal/git"
	"github.com/promptbridge/promptbridge/internal/journal"
	"github.com/promptbridge/promptbridge/internal/report"
	"github.com/promptbridge/promptbridge/store"
	"github.com/promptbridge/promptbridge/types"
)

// buildStore constructs the stage store for the configured working tree.
func buildStore(cfg *types.AppConfig) *store.FileStageStore {
	return store.NewFileStageStoreWithFs(afero.NewOsFs(), cfg.Project.RootDir, cfg.Project.PromptsDir, cfg.Project.TaskExt)
}

// buildBridge constructs the version control adapter.
func buildBridge(cfg *types.AppConfig) *git.Bridge {
	client := git.NewClient(cfg.Project.RootDir)
	return git.NewBridge(client, git.BridgeOptions{
		Remote: cfg.Git.Remote,
		Pull:   cfg.Git.Pull,
		Push:   cfg.Git.Push,
	})
}

// journalPath resolves the configured journal path against the working
// tree root. Empty means the journal is disabled.
func journalPath(cfg *types.AppConfig) string {
	p := cfg.Journal.Path
	if p == "" {
		return ""
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(cfg.Project.RootDir, p)
	}
	return p
}

// openJournal opens the transition journal, or returns nil when it is
// disabled or cannot be opened (the bridge works without it).
func openJournal(cfg *types.AppConfig, logw io.Writer) *journal.Journal {
	path := journalPath(cfg)
	if path == "" {
		return nil
	}
	j, err := journal.Open(path)
	if err != nil {
		fmt.Fprintf(logw, "transition journal unavailable (continuing without): %v\n", err)
		return nil
	}
	return j
}

// buildEngine wires the store, version control adapter, journal and
// reporter into a claim engine. The caller owns closing the returned
// journal (may be nil).
func buildEngine(cfg *types.AppConfig, styled bool) (*engine.Engine, *store.FileStageStore, *journal.Journal, error) {
	s := buildStore(cfg)
	if err := s.EnsureStages(); err != nil {
		return nil, nil, nil, fmt.Errorf("prepare stage directories: %w", err)
	}

	policy, err := engine.ParsePolicy(cfg.Watch.Policy)
	if err != nil {
		return nil, nil, nil, err
	}

	var reporter report.Reporter
	if styled {
		reporter = report.NewStyledConsoleReporter(os.Stdout)
	} else {
		reporter = report.NewConsoleReporter(os.Stdout)
	}

	j := openJournal(cfg, os.Stderr)

	eng := engine.New(engine.Options{
		Store:    s,
		VCS:      buildBridge(cfg),
		Reporter: reporter,
		Journal:  j,
		Policy:   policy,
		Log:      os.Stdout,
	})
	return eng, s, j, nil
}
