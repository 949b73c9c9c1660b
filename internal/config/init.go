package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
)

const starterConfig = `# sitebuilder configuration. Every key is optional; the values shown are the
# defaults applied when a key is omitted. Environment references like ${VAR}
# are expanded on load.
site:
  title: %s

dirs:
  content: content
  static: static
  styles: styles
  templates: templates
  output: public

build:
  render_workers: 1

server:
  port: 8000
  index_name: index
  state_dir: .sitebuilder
  metrics:
    enabled: false
`

const starterTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ title }}</title>
  <link rel="stylesheet" href="/main.css">
</head>
<body>
<main>
{{{ content }}}
</main>
</body>
</html>
`

const starterStylesheet = `body {
  font-family: sans-serif;
  margin: 2rem auto;
  max-width: 42rem;
  padding: 0 1rem;
}
`

// Init scaffolds a new project in dir: the four input directories, a starter
// configuration file, and starter content so the project builds right away.
// An existing configuration is only overwritten with force; starter files
// never overwrite existing ones.
func Init(dir string, force bool) error {
	cfgPath := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return apperrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", cfgPath), nil)
	}

	for _, sub := range Default().InputDirs() {
		target := filepath.Join(dir, sub)
		if err := os.MkdirAll(target, 0o755); err != nil {
			return apperrors.FileSystemFailure("mkdir", target, err)
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return apperrors.FileSystemFailure("abs", dir, err)
	}
	title := TitleFromName(filepath.Base(abs))

	body := fmt.Sprintf(starterConfig, fmt.Sprintf("%q", title))
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		return apperrors.FileSystemFailure("write", cfgPath, err)
	}
	return writeStarterFiles(dir, title)
}

// writeStarterFiles lays down a sample index page, template and stylesheet.
// Files already present are left alone.
func writeStarterFiles(dir, title string) error {
	defaults := Default()

	index, err := frontmatter.Compose(map[string]string{
		"template": "default.html",
		"title":    title,
	}, []byte("Welcome to your new site. Edit `content/index.md` to get started.\n"))
	if err != nil {
		return apperrors.ConfigError("composing starter page", err)
	}

	starters := map[string][]byte{
		filepath.Join(dir, defaults.Dirs.Content, "index.md"):       index,
		filepath.Join(dir, defaults.Dirs.Templates, "default.html"): []byte(starterTemplate),
		filepath.Join(dir, defaults.Dirs.Styles, "main.css"):        []byte(starterStylesheet),
	}
	for path, data := range starters {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return apperrors.FileSystemFailure("write", path, err)
		}
	}
	return nil
}

// TitleFromName turns a directory name like my-cool-site into a presentable
// site title.
func TitleFromName(name string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return "New Site"
	}
	return cases.Title(language.English).String(cleaned)
}
