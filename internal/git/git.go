// Package git provides shell-based wrappers for the git CLI. It uses
// os/exec instead of go-git so that the user's SSH keys, credential
// helpers and other shell environment settings apply to push/pull.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Common errors returned by git operations.
var (
	ErrGitNotInstalled  = errors.New("git is not installed or not in PATH")
	ErrNotGitRepository = errors.New("not a git repository")
	ErrNoRemote         = errors.New("no remote configured for this repository")
)

// Commander is an interface for executing commands.
// This allows mocking in tests.
type Commander interface {
	Run(name string, args ...string) (string, error)
	RunInDir(dir, name string, args ...string) (string, error)
}

// ShellCommander executes real shell commands.
type ShellCommander struct{}

// Run executes a command in the current directory.
func (c *ShellCommander) Run(name string, args ...string) (string, error) {
	return c.RunInDir("", name, args...)
}

// RunInDir executes a command in the specified directory.
func (c *ShellCommander) RunInDir(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		// Include stderr in error for debugging
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("%w: %s", err, errMsg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Client wraps git CLI operations against a single working tree.
type Client struct {
	commander Commander
	workDir   string
}

// NewClient creates a new git client for the given working tree.
func NewClient(workDir string) *Client {
	return &Client{
		commander: &ShellCommander{},
		workDir:   workDir,
	}
}

// NewClientWithCommander creates a client with a custom commander (for testing).
func NewClientWithCommander(workDir string, commander Commander) *Client {
	return &Client{
		commander: commander,
		workDir:   workDir,
	}
}

// IsGitInstalled checks if the git binary is available in PATH.
func (c *Client) IsGitInstalled() bool {
	_, err := c.commander.Run("git", "--version")
	return err == nil
}

// IsRepository checks if the working directory is a git repository.
func (c *Client) IsRepository() bool {
	_, err := c.commander.RunInDir(c.workDir, "git", "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// CurrentBranch returns the name of the current branch.
func (c *Client) CurrentBranch() (string, error) {
	output, err := c.commander.RunInDir(c.workDir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return output, nil
}

// HasRemote checks if a remote is configured.
func (c *Client) HasRemote(name string) bool {
	_, err := c.commander.RunInDir(c.workDir, "git", "remote", "get-url", name)
	return err == nil
}

// IsDirty checks if the working directory has uncommitted changes.
func (c *Client) IsDirty() (bool, error) {
	output, err := c.commander.RunInDir(c.workDir, "git", "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("check dirty state: %w", err)
	}
	return output != "", nil
}

// Pull fetches and fast-forwards the current branch from the remote.
func (c *Client) Pull(remote string) error {
	_, err := c.commander.RunInDir(c.workDir, "git", "pull", "--ff-only", remote)
	if err != nil {
		return fmt.Errorf("pull %s: %w", remote, err)
	}
	return nil
}

// Add stages files for commit.
func (c *Client) Add(paths ...string) error {
	args := append([]string{"add"}, paths...)
	_, err := c.commander.RunInDir(c.workDir, "git", args...)
	if err != nil {
		return fmt.Errorf("add files: %w", err)
	}
	return nil
}

// AddAll stages all changes.
func (c *Client) AddAll() error {
	return c.Add(".")
}

// Commit creates a commit with the given message.
func (c *Client) Commit(message string) error {
	_, err := c.commander.RunInDir(c.workDir, "git", "commit", "-m", message)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Push pushes the current branch to the remote.
func (c *Client) Push(remote string) error {
	_, err := c.commander.RunInDir(c.workDir, "git", "push", remote)
	if err != nil {
		return fmt.Errorf("push %s: %w", remote, err)
	}
	return nil
}
