package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    interface{}
	}{
		{"BuildID", KeyBuildID, "b-123", BuildID("b-123")},
		{"Stage", KeyStage, "render", Stage("render")},
		{"Page", KeyPage, "blog/post.md", Page("blog/post.md")},
		{"Template", KeyTemplate, "page.html", Template("page.html")},
		{"Dir", KeyDir, "content", Dir("content")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"URL", KeyURL, "/blog/post.html", URL("/blog/post.html")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Outcome", KeyOutcome, "success", Outcome("success")},
		{"Addr", KeyAddr, ":8000", Addr(":8000")},
	}

	for _, tc := range cases {
		a := tc.attr.(slog.Attr)
		if a.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, a.Key)
		}
		if got := a.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := Pages(7); v.Key != KeyPages {
		t.Fatalf("Pages key mismatch: %s", v.Key)
	}
	if v := Status(200); v.Key != KeyStatus {
		t.Fatalf("Status key mismatch: %s", v.Key)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
