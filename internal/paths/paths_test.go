package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelative(t *testing.T) {
	rel, err := Relative(filepath.Join("content", "blog", "post.md"), "content")
	require.NoError(t, err)
	require.Equal(t, "blog/post.md", rel)
}

func TestRelative_OutsideRootRejected(t *testing.T) {
	_, err := Relative(filepath.Join("elsewhere", "post.md"), "content")
	require.Error(t, err)
}

func TestIsIndexPage(t *testing.T) {
	require.True(t, IsIndexPage("index.md"))
	require.False(t, IsIndexPage("blog/index.md"), "nested index.md is an ordinary page")
	require.False(t, IsIndexPage("about.md"))
}

func TestIsMarkdown(t *testing.T) {
	require.True(t, IsMarkdown("post.md"))
	require.True(t, IsMarkdown("LEGACY.MD"))
	require.False(t, IsMarkdown("notes.txt"))
	require.False(t, IsMarkdown("README"))
}

func TestIsHidden(t *testing.T) {
	require.True(t, IsHidden(".drafts"))
	require.False(t, IsHidden("drafts"))
}

func TestURL(t *testing.T) {
	require.Equal(t, "/index.html", URL("index.md"))
	require.Equal(t, "/blog/post.html", URL("blog/post.md"))
	require.Equal(t, "/Legacy.html", URL("Legacy.MD"))
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("public", "blog/post.md")
	require.Equal(t, filepath.Join("public", "blog", "post.html"), got)
}
