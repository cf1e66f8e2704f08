package pathutil

import (
	"path/filepath"
	"testing"
)

func TestNormalize_AbsoluteInsideWorkspace(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "home", "dev", "project")
	abs := filepath.Join(root, "src", "a.ts")

	got, err := Normalize(abs, root)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got != "src/a.ts" {
		t.Errorf("Normalize() = %q, want %q", got, "src/a.ts")
	}
}

func TestNormalize_AlreadyRelative(t *testing.T) {
	got, err := Normalize("src/b.go", "/anything")
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if got != "src/b.go" {
		t.Errorf("Normalize() = %q, want %q", got, "src/b.go")
	}
}

func TestNormalize_OutsideWorkspace(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "home", "dev", "project")
	outside := filepath.Join(string(filepath.Separator), "home", "dev", "other", "a.ts")

	if _, err := Normalize(outside, root); err == nil {
		t.Error("expected error for path outside workspace")
	}
}

func TestNormalize_RelativeEscape(t *testing.T) {
	if _, err := Normalize("../secrets.env", "/home/dev/project"); err == nil {
		t.Error("expected error for relative path escaping workspace")
	}
}

func TestNormalize_EmptyInputs(t *testing.T) {
	if _, err := Normalize("", "/root"); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := Normalize("/abs/path", ""); err == nil {
		t.Error("expected error for empty workspace root")
	}
}
