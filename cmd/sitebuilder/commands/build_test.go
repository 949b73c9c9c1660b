package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

func TestBuildCmdBuildsLocalProject(t *testing.T) {
	dir := scaffoldProject(t)
	t.Chdir(dir)

	require.NoError(t, (&BuildCmd{}).Run(&Global{}, &CLI{Config: config.DefaultFileName}))

	for _, rel := range []string{"index.html", "about.html", "logo.png"} {
		_, err := os.Stat(filepath.Join(dir, "public", rel))
		require.NoError(t, err, rel)
	}

	index, err := os.ReadFile(filepath.Join(dir, "public", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), "<title>Home</title>")
}

func TestBuildCmdFailsOnInvalidPage(t *testing.T) {
	dir := scaffoldProject(t)
	writeFile(t, filepath.Join(dir, "content", "broken.md"),
		"---\ntitle: No Template\n---\nBody.\n")
	t.Chdir(dir)

	err := (&BuildCmd{}).Run(&Global{}, &CLI{Config: config.DefaultFileName})
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindMissingTemplateDeclaration))
}

func TestBuildCmdFromGitBuildsIntoLocalOutput(t *testing.T) {
	project := scaffoldProject(t)

	repo, err := git.PlainInit(project, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, w.AddGlob("."))
	_, err = w.Commit("site project", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	workdir := t.TempDir()
	t.Chdir(workdir)

	cmd := &BuildCmd{FromGit: project}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: config.DefaultFileName}))

	// The output lands in the invoking directory, not in the clone.
	_, err = os.Stat(filepath.Join(workdir, "public", "index.html"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(workdir, "public", "logo.png"))
	require.NoError(t, err)
}

func TestLoadWorkspaceConfigFallsBackToDefaults(t *testing.T) {
	workspace := t.TempDir()

	cfg, err := loadWorkspaceConfig(workspace, config.DefaultFileName)
	require.NoError(t, err)
	require.Equal(t, config.Default().Dirs, cfg.Dirs)
}

func TestLoadWorkspaceConfigReadsProjectFile(t *testing.T) {
	workspace := t.TempDir()
	writeFile(t, filepath.Join(workspace, config.DefaultFileName),
		"site:\n  title: From Workspace\ndirs:\n  output: dist\n")

	cfg, err := loadWorkspaceConfig(workspace, config.DefaultFileName)
	require.NoError(t, err)
	require.Equal(t, "From Workspace", cfg.Site.Title)
	require.Equal(t, "dist", cfg.Dirs.Output)
}
