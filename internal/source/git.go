// Package source fetches site projects from remote Git repositories into
// temporary workspaces.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
)

// Project identifies a remote site project to build.
type Project struct {
	URL string // clone URL, or a local path for an on-disk repository
	Ref string // branch to check out; empty means the remote default
}

// Fetch clones the project into a fresh directory under the system temp
// directory and returns its path. The caller owns the directory and removes
// it when done. Transient clone failures are retried with backoff. Remote
// clones are shallow; local paths are cloned in full because go-git's file
// transport does not serve shallow fetches.
func Fetch(ctx context.Context, p Project) (string, error) {
	dir, err := os.MkdirTemp("", "sitebuilder-src-*")
	if err != nil {
		return "", fmt.Errorf("creating clone workspace: %w", err)
	}

	slog.Debug("Cloning project", logfields.URL(p.URL), slog.String("ref", p.Ref), logfields.Path(dir))

	opts := &git.CloneOptions{URL: p.URL}
	if p.Ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(p.Ref)
		opts.SingleBranch = true
	}

	policy := retry.DefaultPolicy()
	if isRemote(p.URL) {
		opts.Depth = 1
	} else {
		// Local clones never fail transiently.
		policy.MaxRetries = 0
	}

	var repo *git.Repository
	err = retry.Do(ctx, policy, "clone", func() error {
		// A failed attempt can leave a partial checkout behind.
		if err := resetDir(dir); err != nil {
			return retry.Permanent(err)
		}
		r, cerr := git.PlainCloneContext(ctx, dir, false, opts)
		if cerr != nil {
			return classifyCloneError(cerr)
		}
		repo = r
		return nil
	})
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("cloning %s: %w", p.URL, err)
	}

	if ref, herr := repo.Head(); herr == nil {
		slog.Info("Project cloned", logfields.URL(p.URL), slog.String("commit", shortHash(ref.Hash())), logfields.Path(dir))
	} else {
		slog.Info("Project cloned", logfields.URL(p.URL), logfields.Path(dir))
	}
	return dir, nil
}

// classifyCloneError marks failures that a retry cannot fix as permanent.
func classifyCloneError(err error) error {
	switch {
	case errors.Is(err, transport.ErrRepositoryNotFound),
		errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		errors.Is(err, plumbing.ErrReferenceNotFound),
		errors.Is(err, context.Canceled):
		return retry.Permanent(err)
	}
	return err
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

func isRemote(url string) bool {
	if strings.Contains(url, "://") {
		return true
	}
	// scp-like syntax, e.g. git@host:path.
	head, _, found := strings.Cut(url, ":")
	return found && strings.Contains(head, "@")
}

func shortHash(h plumbing.Hash) string {
	s := h.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
