package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	// Set a deterministic HOME for the duration of this test so we never skip.
	origHome, hadHome := os.LookupEnv("HOME")
	origUserProfile, hadUserProfile := os.LookupEnv("USERPROFILE")
	t.Cleanup(func() {
		if hadHome {
			_ = os.Setenv("HOME", origHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
		if hadUserProfile {
			_ = os.Setenv("USERPROFILE", origUserProfile)
		} else {
			_ = os.Unsetenv("USERPROFILE")
		}
	})

	home := t.TempDir()
	// Configure both env vars for cross-platform behavior of os.UserHomeDir.
	_ = os.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		_ = os.Setenv("USERPROFILE", home)
	}
	// raw path unaffected
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// empty path
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// ~ expansion
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	// ~/subdir
	sub := "test-sub"
	exp, err := ExpandHome("~/" + sub)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if runtime.GOOS == "windows" {
		if filepath.Base(exp) != sub {
			t.Fatalf("unexpected expanded path: %q", exp)
		}
	} else {
		expected := filepath.Join(home, sub)
		if exp != expected {
			t.Fatalf("expected %q, got %q", expected, exp)
		}
	}
}

func TestPathExists(t *testing.T) {
	d := t.TempDir()
	if !PathExists(d) {
		t.Fatalf("expected %q to exist", d)
	}
	if PathExists(filepath.Join(d, "missing")) {
		t.Fatalf("expected missing path to not exist")
	}
}

func TestListFiles_FiltersAndSorts(t *testing.T) {
	d := t.TempDir()
	for _, n := range []string{"b.JPG", "a.jpg", "c.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(d, n), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}
	if err := os.Mkdir(filepath.Join(d, "sub.jpg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := ListFiles(d, ".jpg", ".png")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{"a.jpg", "b.JPG", "c.png"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, p := range got {
		if filepath.Base(p) != want[i] {
			t.Fatalf("got[%d]=%q want %q", i, filepath.Base(p), want[i])
		}
		if !filepath.IsAbs(p) {
			t.Fatalf("expected absolute path, got %q", p)
		}
	}
	all, err := ListFiles(d)
	if err != nil {
		t.Fatalf("ListFiles all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 regular files, got %d", len(all))
	}
	if _, err := ListFiles(filepath.Join(d, "missing")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
