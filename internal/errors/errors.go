// Package errors provides a lightweight structured error type (BuildError)
// classifying build and rendering failures for CLI reporting.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a sitebuilder error.
type Kind string

const (
	// Author-facing content and template errors
	KindMissingTemplateDeclaration Kind = "missing_template_declaration"
	KindTemplateNotFound           Kind = "template_not_found"
	KindInvalidContent             Kind = "invalid_content"
	KindRenderFailure              Kind = "render_failure"

	// Environment errors
	KindFileSystemFailure Kind = "filesystem_failure"
	KindConfig            Kind = "config"
)

// BuildError is a structured error with kind, subject path and cause.
type BuildError struct {
	Kind   Kind   `json:"kind"`
	Path   string `json:"path,omitempty"`   // page or filesystem path the error is about
	Detail string `json:"detail,omitempty"` // kind-specific detail, e.g. template name
	Cause  error  `json:"-"`
}

// Error implements the error interface
func (e *BuildError) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// MissingTemplateDeclaration reports a page whose front matter lacks a
// template key.
func MissingTemplateDeclaration(page string) *BuildError {
	return &BuildError{Kind: KindMissingTemplateDeclaration, Path: page, Detail: "front matter declares no template"}
}

// TemplateNotFound reports a page naming a template that does not exist.
func TemplateNotFound(page, template string) *BuildError {
	return &BuildError{Kind: KindTemplateNotFound, Path: page, Detail: template}
}

// InvalidContent reports a content file that could not be read or parsed.
func InvalidContent(path string, cause error) *BuildError {
	return &BuildError{Kind: KindInvalidContent, Path: path, Cause: cause}
}

// RenderFailure reports a template engine failure for a page.
func RenderFailure(page, template string, cause error) *BuildError {
	return &BuildError{Kind: KindRenderFailure, Path: page, Detail: template, Cause: cause}
}

// FileSystemFailure reports a failed filesystem operation outside content
// parsing, e.g. wiping the output root or copying asset trees.
func FileSystemFailure(op, path string, cause error) *BuildError {
	return &BuildError{Kind: KindFileSystemFailure, Path: path, Detail: op, Cause: cause}
}

// ConfigError reports an unusable configuration file or value.
func ConfigError(detail string, cause error) *BuildError {
	return &BuildError{Kind: KindConfig, Detail: detail, Cause: cause}
}

// IsKind checks if an error (or anything it wraps) has the given kind.
func IsKind(err error, kind Kind) bool {
	var be *BuildError
	if stderrors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// KindOf extracts the kind from an error chain, or KindFileSystemFailure if
// the chain carries no BuildError.
func KindOf(err error) Kind {
	var be *BuildError
	if stderrors.As(err, &be) {
		return be.Kind
	}
	return KindFileSystemFailure
}
