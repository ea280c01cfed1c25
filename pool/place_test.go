package pool

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/etnz/apt-pool/deb"
)

// writeFiles creates files with their own name as content.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("content of "+name), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !bytes.Equal(got, []byte(want)) {
		t.Errorf("%s: expected %q, got %q", path, want, got)
	}
}

func TestPlacer_Move(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	writeFiles(t, src, "foo_1.0_amd64.deb", "foo-dbgsym_1.0_amd64.deb", "foo_1.0.dsc", "foo_1.0.orig.tar.xz")

	if err := MoveToPool(root, src, "jammy"); err != nil {
		t.Fatalf("MoveToPool failed: %v", err)
	}

	want := map[string]string{
		"pool/jammy/main/binary-amd64/f/foo/foo_1.0_amd64.deb":        "foo_1.0_amd64.deb",
		"pool/jammy/main/binary-amd64/f/foo/foo-dbgsym_1.0_amd64.deb": "foo-dbgsym_1.0_amd64.deb",
		"pool/jammy/main/source/f/foo/foo_1.0.dsc":                    "foo_1.0.dsc",
		"pool/jammy/main/source/f/foo/foo_1.0.orig.tar.xz":            "foo_1.0.orig.tar.xz",
	}
	for rel, name := range want {
		assertContent(t, filepath.Join(root, filepath.FromSlash(rel)), "content of "+name)
		if _, err := os.Stat(filepath.Join(src, name)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be moved out of the source directory", name)
		}
	}
}

func TestPlacer_Copy(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	writeFiles(t, src, "bar_2_arm64.deb")
	if err := os.Chmod(filepath.Join(src, "bar_2_arm64.deb"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := CopyToPool(root, src, "noble"); err != nil {
		t.Fatalf("CopyToPool failed: %v", err)
	}

	dst := filepath.Join(root, "pool", "noble", "main", "binary-arm64", "b", "bar", "bar_2_arm64.deb")
	assertContent(t, dst, "content of bar_2_arm64.deb")
	assertContent(t, filepath.Join(src, "bar_2_arm64.deb"), "content of bar_2_arm64.deb")

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestPlacer_SkipsDirectories(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	writeFiles(t, src, "foo_1_amd64.deb", "nested_dir/bar_1_amd64.deb")

	var placed []Placement
	p := &Placer{Root: root, Action: Copy, OnPlace: func(pl Placement) { placed = append(placed, pl) }}
	if err := p.Place(src, "jammy"); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	if len(placed) != 1 || placed[0].Name.Package != "foo" {
		t.Fatalf("expected only foo to be placed, got %+v", placed)
	}
	if _, err := os.Stat(filepath.Join(root, "pool", "jammy", "main", "binary-amd64", "b")); !os.IsNotExist(err) {
		t.Error("nested files must not be placed")
	}
}

func TestPlacer_MalformedAbortsBatch(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	// ReadDir returns entries sorted by name: aaa is placed before mmm fails.
	writeFiles(t, src, "aaa_1_amd64.deb", "mmm", "zzz_1_amd64.deb")

	err := CopyToPool(root, src, "jammy")
	if !errors.Is(err, deb.ErrMalformedName) {
		t.Fatalf("expected ErrMalformedName, got %v", err)
	}

	assertContent(t, filepath.Join(root, "pool", "jammy", "main", "binary-amd64", "a", "aaa", "aaa_1_amd64.deb"), "content of aaa_1_amd64.deb")
	if _, err := os.Stat(filepath.Join(root, "pool", "jammy", "main", "binary-amd64", "z")); !os.IsNotExist(err) {
		t.Error("files after the failure must not be placed")
	}
}

func TestPlacer_ActionFailureAborts(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "a_1_amd64.deb", "b_1_amd64.deb")

	boom := errors.New("boom")
	calls := 0
	p := &Placer{
		Root: t.TempDir(),
		Action: func(src, dst string) error {
			calls++
			return boom
		},
	}
	if err := p.Place(src, "jammy"); !errors.Is(err, boom) {
		t.Fatalf("expected action error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected placement to stop after the first failure, got %d calls", calls)
	}
}

func TestPlacer_SkipsInvalidUTF8(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	bad := "bad\xff_1_amd64.deb"
	if err := os.WriteFile(filepath.Join(src, bad), []byte("x"), 0644); err != nil {
		t.Skipf("filesystem rejects non UTF-8 names: %v", err)
	}
	writeFiles(t, src, "good_1_amd64.deb")

	logger, hook := test.NewNullLogger()
	var skipped []string
	p := &Placer{
		Root:   root,
		Action: Copy,
		Log:    logger,
		OnSkip: func(path string) { skipped = append(skipped, path) },
	}
	if err := p.Place(src, "jammy"); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	if len(skipped) != 1 || skipped[0] != filepath.Join(src, bad) {
		t.Errorf("expected %q to be skipped, got %v", bad, skipped)
	}
	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning for the skipped file")
	}
	assertContent(t, filepath.Join(root, "pool", "jammy", "main", "binary-amd64", "g", "good", "good_1_amd64.deb"), "content of good_1_amd64.deb")
}

func TestPlacer_MissingSource(t *testing.T) {
	err := MoveToPool(t.TempDir(), filepath.Join(t.TempDir(), "missing"), "jammy")
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestPlacer_OverwritesExisting(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	writeFiles(t, src, "foo_1_amd64.deb")
	if err := CopyToPool(root, src, "jammy"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "foo_1_amd64.deb"), []byte("rebuilt"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := MoveToPool(root, src, "jammy"); err != nil {
		t.Fatalf("MoveToPool failed: %v", err)
	}
	assertContent(t, filepath.Join(root, "pool", "jammy", "main", "binary-amd64", "f", "foo", "foo_1_amd64.deb"), "rebuilt")
}
