package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes reported by the CLI. Kept stable so wrapper scripts can branch
// on them.
const (
	ExitOK       = 0
	ExitGeneral  = 1
	ExitContent  = 2  // invalid content or template declarations
	ExitConfig   = 7  // unusable configuration
	ExitBuild    = 11 // filesystem or render failure during a build
)

// ExitCodeFor determines the appropriate exit code for an error.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}

	var be *BuildError
	if !stderrors.As(err, &be) {
		return ExitGeneral
	}

	switch be.Kind {
	case KindInvalidContent, KindMissingTemplateDeclaration, KindTemplateNotFound:
		return ExitContent
	case KindConfig:
		return ExitConfig
	case KindFileSystemFailure, KindRenderFailure:
		return ExitBuild
	default:
		return ExitGeneral
	}
}

// FormatError formats an error for user-facing display. Verbose mode shows
// the full cause chain, otherwise the chain is collapsed to the outermost
// structured error.
func FormatError(err error, verbose bool) string {
	if err == nil {
		return ""
	}

	var be *BuildError
	if !stderrors.As(err, &be) {
		return fmt.Sprintf("Error: %v", err)
	}

	if verbose {
		return be.Error()
	}

	msg := fmt.Sprintf("%s: %s", be.Kind, be.Path)
	if be.Path == "" {
		msg = string(be.Kind)
	}
	if be.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, be.Detail)
	}
	return msg
}
