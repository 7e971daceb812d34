package checker

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestFileCmpExactMatch(t *testing.T) {
	dir := t.TempDir()
	out := writeTemp(t, dir, "out.txt", "3\n")
	ans := writeTemp(t, dir, "ans.txt", "3\n")

	score, _, err := FileCmp{}.Check("", out, ans)
	if err != nil {
		t.Fatal(err)
	}
	if score != 1.0 {
		t.Fatalf("score = %v, want 1.0", score)
	}
}

func TestFileCmpTrailingNewlineAsymmetry(t *testing.T) {
	dir := t.TempDir()
	out := writeTemp(t, dir, "out.txt", "3")
	ans := writeTemp(t, dir, "ans.txt", "3\n")

	score, _, err := FileCmp{}.Check("", out, ans)
	if err != nil {
		t.Fatal(err)
	}
	if score != 1.0 {
		t.Fatalf("score = %v, want 1.0 (trailing newline asymmetry should be tolerated)", score)
	}
}

func TestFileCmpMismatch(t *testing.T) {
	dir := t.TempDir()
	out := writeTemp(t, dir, "out.txt", "3\n")
	ans := writeTemp(t, dir, "ans.txt", "4\n")

	score, msg, err := FileCmp{}.Check("", out, ans)
	if err != nil {
		t.Fatal(err)
	}
	if score != 0.0 {
		t.Fatalf("score = %v, want 0.0, msg=%q", score, msg)
	}
}

func TestAutoCmpFloatTolerance(t *testing.T) {
	dir := t.TempDir()
	out := writeTemp(t, dir, "out.txt", "1.00001\n")
	ans := writeTemp(t, dir, "ans.txt", "1.00000\n")

	c := AutoCmp{RelEps: 1e-3, AbsEps: 1e-6}
	score, _, err := c.Check("", out, ans)
	if err != nil {
		t.Fatal(err)
	}
	if score != 1.0 {
		t.Fatalf("score = %v, want 1.0 within tolerance", score)
	}
}

func TestAutoCmpFloatOutsideTolerance(t *testing.T) {
	dir := t.TempDir()
	out := writeTemp(t, dir, "out.txt", "2.0\n")
	ans := writeTemp(t, dir, "ans.txt", "1.0\n")

	c := AutoCmp{RelEps: 1e-6, AbsEps: 1e-9}
	score, _, err := c.Check("", out, ans)
	if err != nil {
		t.Fatal(err)
	}
	if score != 0.0 {
		t.Fatalf("score = %v, want 0.0 outside tolerance", score)
	}
}

func TestAutoCmpCaseFolding(t *testing.T) {
	dir := t.TempDir()
	out := writeTemp(t, dir, "out.txt", "Yes\n")
	ans := writeTemp(t, dir, "ans.txt", "yes\n")

	withFold := AutoCmp{RelEps: 1e-6, AbsEps: 1e-9, ToLowerCase: true}
	score, _, err := withFold.Check("", out, ans)
	if err != nil {
		t.Fatal(err)
	}
	if score != 1.0 {
		t.Fatalf("case-folded compare should match, got score=%v", score)
	}

	withoutFold := AutoCmp{RelEps: 1e-6, AbsEps: 1e-9}
	score, _, err = withoutFold.Check("", out, ans)
	if err != nil {
		t.Fatal(err)
	}
	if score != 0.0 {
		t.Fatalf("case-sensitive compare should not match, got score=%v", score)
	}
}

func TestAutoCmpMismatchedTokenCount(t *testing.T) {
	dir := t.TempDir()
	out := writeTemp(t, dir, "out.txt", "1 2\n")
	ans := writeTemp(t, dir, "ans.txt", "1 2 3\n")

	c := AutoCmp{RelEps: 1e-6, AbsEps: 1e-9}
	score, _, err := c.Check("", out, ans)
	if err != nil {
		t.Fatal(err)
	}
	if score != 0.0 {
		t.Fatalf("score = %v, want 0.0 on mismatched token counts", score)
	}
}
