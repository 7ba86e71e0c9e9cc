package story

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFromPrompt(t *testing.T) {
	sb := FromPrompt("  Learning with AI  ", 960, 540)

	if len(sb.Steps) != 7 {
		t.Fatalf("Expected 7 steps, got %d", len(sb.Steps))
	}

	wantIDs := []string{"title", "board", "bubble", "arrow", "box", "caption-left", "caption-right"}
	for i, id := range wantIDs {
		if sb.Steps[i].ID != id {
			t.Errorf("Step %d: expected id %s, got %s", i, id, sb.Steps[i].ID)
		}
	}

	if sb.Steps[0].Content != `"Learning with AI"` {
		t.Errorf("Unexpected title: %s", sb.Steps[0].Content)
	}

	if sb.Steps[1].D != "M 80 120 H 880 V 460 H 80 Z" {
		t.Errorf("Unexpected board path: %s", sb.Steps[1].D)
	}

	if got := sb.TotalDurationMs(); got != 800+1800+1400+1100+1200+600+600 {
		t.Errorf("Unexpected total duration %d", got)
	}

	if err := Validate(sb.Steps); err != nil {
		t.Errorf("Generated storyboard should be valid: %v", err)
	}
}

func TestFromPromptTitle(t *testing.T) {
	if got := FromPrompt("   ", 960, 540).Steps[0].Content; got != defaultTitle {
		t.Errorf("Expected default title, got %q", got)
	}

	long := strings.Repeat("ż", 100)
	got := FromPrompt(long, 960, 540).Steps[0].Content
	if n := len([]rune(got)); n != maxPromptRunes+2 {
		t.Errorf("Expected %d runes including quotes, got %d", maxPromptRunes+2, n)
	}
}

func TestValidate(t *testing.T) {
	ok := PathStep("a", "M0 0 L10 0", "#111", 3, 100)

	tests := []struct {
		name  string
		steps []Step
		field string
	}{
		{"empty id", []Step{PathStep("", "M0 0", "#111", 3, 100)}, "id"},
		{"duplicate id", []Step{ok, ok}, "id"},
		{"negative duration", []Step{PathStep("a", "M0 0", "#111", 3, -1)}, "durationMs"},
		{"zero stroke width", []Step{PathStep("a", "M0 0", "#111", 0, 100)}, "strokeWidth"},
		{"bad color", []Step{PathStep("a", "M0 0", "black", 3, 100)}, "stroke"},
		{"zero font size", []Step{TextStep("t", 0, 0, "x", 0, AnchorStart, 100)}, "fontSize"},
		{"bad anchor", []Step{TextStep("t", 0, 0, "x", 12, "left", 100)}, "anchor"},
		{"bad kind", []Step{{Kind: "image", ID: "i"}}, "kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.steps)
			if !errors.Is(err, ErrInvalidStep) {
				t.Fatalf("Expected ErrInvalidStep, got %v", err)
			}
			var se *StepError
			if !errors.As(err, &se) {
				t.Fatalf("Expected *StepError, got %T", err)
			}
			if se.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, se.Field)
			}
		})
	}

	if err := Validate(nil); err != nil {
		t.Errorf("Empty storyboard should be valid: %v", err)
	}
	if err := Validate([]Step{PathStep("z", "M0 0", "#111", 1, 0)}); err != nil {
		t.Errorf("Zero duration should be valid: %v", err)
	}
}

func TestStoryboardWriteRead(t *testing.T) {
	sb := FromPrompt("round trip", 640, 360)
	path := filepath.Join(t.TempDir(), "sb.yaml")

	if err := WriteStoryboard(sb, path); err != nil {
		t.Fatalf("WriteStoryboard failed: %v", err)
	}

	read, err := ReadStoryboard(path)
	if err != nil {
		t.Fatalf("ReadStoryboard failed: %v", err)
	}

	if read.Width != 640 || read.Height != 360 {
		t.Errorf("Size mismatch: %dx%d", read.Width, read.Height)
	}
	if len(read.Steps) != len(sb.Steps) {
		t.Fatalf("Step count mismatch: expected %d, got %d", len(sb.Steps), len(read.Steps))
	}
	if read.Steps[2] != sb.Steps[2] {
		t.Errorf("Bubble step mismatch: %+v vs %+v", read.Steps[2], sb.Steps[2])
	}
}

func TestReadStoryboardRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := "version: \"1.0\"\nsteps:\n  - kind: path\n    id: a\n    durationMs: -5\n    d: M0 0\n    stroke: \"#000\"\n    strokeWidth: 1\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadStoryboard(path); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("Expected ErrInvalidStep, got %v", err)
	}
}

func TestFindLatestStoryboard(t *testing.T) {
	dir := t.TempDir()
	files := []string{"a.yaml", "b.yml", "c.yaml"}
	for i, name := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("version: \"1.0\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(p, mod, mod)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)

	latest, err := FindLatestStoryboard(dir)
	if err != nil {
		t.Fatalf("FindLatestStoryboard failed: %v", err)
	}
	if filepath.Base(latest) != "c.yaml" {
		t.Errorf("Expected c.yaml, got %s", latest)
	}

	if _, err := FindLatestStoryboard(t.TempDir()); err == nil {
		t.Error("Expected error for empty directory")
	}
}

func TestGenerateStoryboardPath(t *testing.T) {
	path := GenerateStoryboardPath()
	if !strings.HasPrefix(path, StoryboardsDir+string(filepath.Separator)+"storyboard_") {
		t.Errorf("Unexpected path: %s", path)
	}
	if filepath.Ext(path) != ".yaml" {
		t.Errorf("Expected .yaml extension: %s", path)
	}
}
