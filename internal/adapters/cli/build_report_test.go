package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBuildReportMinimal(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewBuildReport(NewWriterOutput(&stdout, &stderr), "/proj/dist")
	r.SetEntryCount(3)
	step := r.StartStep("Rendering stylesheets")
	r.AddBuilt(0)
	r.AddBuilt(0)
	r.AddSkipped()
	r.EndStep(step, true, "")
	r.Render()

	out := stdout.String()
	for _, want := range []string{"3 entries found, 2 built, 1 up to date", "Build complete in", "Output: /proj/dist"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
	if r.HasFailures() {
		t.Error("HasFailures() = true, want false")
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}
}

func TestBuildReportErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewBuildReport(NewWriterOutput(&stdout, &stderr), "")
	r.SetEntryCount(1)
	r.AddError("main.scss", "/proj/main.scss: Undefined variable", []string{"/proj/img/a.png", "/proj/img/a.png"})
	r.Render()

	if !r.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}
	if !strings.Contains(stdout.String(), "/proj/img/a.png (2 occurrences)") {
		t.Errorf("stdout = %q, want folded details", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Errors (1):") || !strings.Contains(stderr.String(), "Build failed") {
		t.Errorf("stderr = %q, want error summary", stderr.String())
	}
}

func TestDeduplicateStrings(t *testing.T) {
	got := deduplicateStrings([]string{"b", "a", "b", "c", "b"})
	want := []string{"b (3 occurrences)", "a", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("deduplicateStrings() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
