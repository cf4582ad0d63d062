package git

import (
	"errors"
	"fmt"
	"strings"
)

// Bridge wraps a Client with the sync/checkpoint discipline of the
// task bridge: pull before every scan, commit-and-push after every
// stage transition, and tolerate failure of each step independently.
type Bridge struct {
	client *Client
	remote string
	pull   bool
	push   bool
}

// BridgeOptions configures a Bridge.
type BridgeOptions struct {
	Remote string // remote name, e.g. "origin"
	Pull   bool   // pull before each scan
	Push   bool   // push after each checkpoint
}

// NewBridge creates a Bridge over the given client.
func NewBridge(client *Client, opts BridgeOptions) *Bridge {
	remote := opts.Remote
	if remote == "" {
		remote = "origin"
	}
	return &Bridge{client: client, remote: remote, pull: opts.Pull, push: opts.Push}
}

// Client returns the underlying git client.
func (b *Bridge) Client() *Client {
	return b.client
}

// Sync pulls remote state into the local working tree so that a
// distributed set of watchers observes a consistent pending queue.
// Callers treat a returned error as non-fatal: the poll proceeds
// against local state.
func (b *Bridge) Sync() error {
	if !b.pull {
		return nil
	}
	if !b.client.HasRemote(b.remote) {
		return nil
	}
	if err := b.client.Pull(b.remote); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

// Checkpoint stages all working-tree changes, commits them with the
// given message and pushes to the remote. Each step is attempted even
// if a previous one failed; the combined error is returned for logging
// but the filesystem state is never rolled back. A clean tree is not
// an error: the commit step recognizes "nothing to commit" and skips
// the push.
func (b *Bridge) Checkpoint(message string) error {
	var errs []error

	if err := b.client.AddAll(); err != nil {
		errs = append(errs, err)
	}

	// A clean tree after staging means there is nothing to record.
	// "nothing to commit" is printed on stdout so it never reaches the
	// wrapped error; check explicitly instead of parsing commit output.
	dirty, err := b.client.IsDirty()
	if err != nil {
		errs = append(errs, err)
		dirty = true // assume dirty and let the commit step decide
	}
	if !dirty {
		if len(errs) > 0 {
			return fmt.Errorf("checkpoint %q: %w", message, errors.Join(errs...))
		}
		return nil
	}

	committed := true
	if err := b.client.Commit(message); err != nil {
		if isNothingToCommit(err) {
			committed = false
		} else {
			errs = append(errs, err)
			committed = false
		}
	}

	if committed && b.push && b.client.HasRemote(b.remote) {
		if err := b.client.Push(b.remote); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("checkpoint %q: %w", message, errors.Join(errs...))
	}
	return nil
}

// isNothingToCommit reports whether a commit error means the working
// tree was already clean.
func isNothingToCommit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nothing to commit") ||
		strings.Contains(msg, "nothing added to commit") ||
		strings.Contains(msg, "no changes added to commit")
}
