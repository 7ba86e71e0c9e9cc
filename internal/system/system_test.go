package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestImagePoolReuse(t *testing.T) {
	p := NewImagePool()
	rect := image.Rect(0, 0, 8, 4)

	img := p.Get(rect)
	if img.Rect != rect {
		t.Fatalf("expected rect %v, got %v", rect, img.Rect)
	}
	p.Put(img)
	p.Put(nil)
	p.Put(image.NewRGBA(image.Rect(0, 0, 1, 1))) // unknown size is ignored

	_ = p.Get(rect)
	st := p.Stats()
	if st.Gets != 2 {
		t.Errorf("expected 2 gets, got %d", st.Gets)
	}
	if st.Allocs < 1 || st.Allocs > 2 {
		t.Errorf("expected 1 or 2 allocations, got %d", st.Allocs)
	}
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.YAML")
	newer := filepath.Join(dir, "new.yml")
	other := filepath.Join(dir, "notes.txt")
	for _, f := range []string{old, newer, other} {
		if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Now()
	os.Chtimes(old, now.Add(-time.Hour), now.Add(-time.Hour))
	os.Chtimes(other, now.Add(time.Hour), now.Add(time.Hour))

	got, err := FindLatest(dir, ".yaml", ".yml")
	if err != nil {
		t.Fatal(err)
	}
	if got != newer {
		t.Errorf("expected %s, got %s", newer, got)
	}

	if _, err := FindLatest(dir, ".webm"); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestPickH264Encoder(t *testing.T) {
	tests := []struct {
		list string
		want string
	}{
		{" V....D h264_nvenc  NVIDIA NVENC H.264 encoder", "h264_nvenc"},
		{" V....D h264_videotoolbox VideoToolbox H.264 Encoder\n V....D h264_nvenc", "h264_videotoolbox"},
		{" V....D libx264 libx264 H.264", "libx264"},
		{"", "libx264"},
	}
	for _, tt := range tests {
		if got := pickH264Encoder(tt.list); got != tt.want {
			t.Errorf("pickH264Encoder(%q) = %s, want %s", tt.list, got, tt.want)
		}
	}
}

func TestGetBestH264EncoderWithoutFFmpeg(t *testing.T) {
	if got := GetBestH264Encoder(filepath.Join(t.TempDir(), "no-ffmpeg")); got != "libx264" {
		t.Errorf("expected libx264 fallback, got %s", got)
	}
}

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	a, b := filepath.Join(base, "a", "b"), filepath.Join(base, "c")
	if err := EnsureDirs(a, b); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{a, b} {
		if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
			t.Errorf("%s was not created", d)
		}
	}
}

func TestSnapshot(t *testing.T) {
	u, err := Snapshot()
	if err != nil {
		t.Skipf("process stats unavailable: %v", err)
	}
	if u.Goroutines < 1 {
		t.Errorf("expected at least one goroutine, got %d", u.Goroutines)
	}
	if u.RSSMiB() < 0 {
		t.Errorf("negative RSS")
	}
	if u.SystemUsedPct < 0 || u.SystemUsedPct > 100 {
		t.Errorf("system memory usage out of range: %.1f", u.SystemUsedPct)
	}
}
