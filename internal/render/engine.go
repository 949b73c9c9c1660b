package render

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cbroglie/mustache"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	apperrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// MetadataTemplateKey is the front matter key naming a page's template.
const MetadataTemplateKey = "template"

// Template is a parsed template ready to render.
type Template struct {
	name string
	tmpl *mustache.Template
}

// Name returns the template name as declared in front matter.
func (t *Template) Name() string { return t.name }

// Engine resolves template names against the templates directory and renders
// contexts through them. Parsed templates are cached for the lifetime of the
// engine, which is one build. Safe for concurrent use by render workers.
type Engine struct {
	templatesDir string

	mu    sync.Mutex
	cache map[string]*mustache.Template
}

// NewEngine creates an engine reading templates from templatesDir.
func NewEngine(templatesDir string) *Engine {
	return &Engine{
		templatesDir: templatesDir,
		cache:        make(map[string]*mustache.Template),
	}
}

// Resolve returns the parsed template a page declares.
//
// The declared name is used verbatim under the templates directory, with no
// extension inference. A page without a template key, or naming a file that
// does not exist, fails resolution; an unparsable template fails as a render
// error so the page being processed is identifiable.
func (e *Engine) Resolve(page *content.Page) (*Template, error) {
	name, ok := page.Metadata[MetadataTemplateKey]
	if !ok || name == "" {
		return nil, apperrors.MissingTemplateDeclaration(page.RelativePath)
	}

	path := filepath.Join(e.templatesDir, name)
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.TemplateNotFound(page.RelativePath, name)
	}

	tmpl, err := e.load(name, path, page.RelativePath)
	if err != nil {
		return nil, err
	}
	return &Template{name: name, tmpl: tmpl}, nil
}

// Render renders ctx through t. Engine failures are returned raw; the caller
// owns wrapping them with page identity.
func (e *Engine) Render(t *Template, ctx Context) (string, error) {
	return t.tmpl.Render(toTemplateData(ctx))
}

func (e *Engine) load(name, path, page string) (*mustache.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.FileSystemFailure("read", path, err)
	}

	tmpl, err := mustache.ParseString(string(raw))
	if err != nil {
		return nil, apperrors.RenderFailure(page, name, err)
	}

	e.cache[name] = tmpl
	return tmpl, nil
}
