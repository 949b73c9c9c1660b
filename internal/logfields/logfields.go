package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPage       = "page"
	KeyTemplate   = "template"
	KeyPages      = "pages"
	KeyDir        = "dir"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyOutcome    = "outcome"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Page(rel string) slog.Attr       { return slog.String(KeyPage, rel) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Dir(d string) slog.Attr          { return slog.String(KeyDir, d) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
