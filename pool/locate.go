package pool

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"pault.ag/go/debian/version"

	"github.com/etnz/apt-pool/deb"
)

// Entry is a filesystem entry visited by Walk.
type Entry struct {
	// Path is the entry path, rooted at the walked directory.
	Path string
	// Name is the base name of the entry.
	Name  string
	IsDir bool
}

// Match is a located package file.
type Match struct {
	Path string
	// Index is the position of the package name in the wanted list.
	Index int
	// Name is the parsed filename.
	Name deb.ParsedName
}

// Walk lazily visits root recursively and yields every .deb file. All
// directories are descended into, and a symlinked root is followed.
// Each call walks from scratch.
// A walk error is yielded once and ends the sequence.
func Walk(root string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		err := filepath.WalkDir(walkRoot(root), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), string(deb.ExtDeb)) {
				return nil
			}
			if !yield(Entry{Path: path, Name: d.Name()}, nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(Entry{}, err)
		}
	}
}

// walkRoot returns root with a trailing separator when it is a symlink, so
// that WalkDir descends into its target. Yielded paths keep the root prefix.
func walkRoot(root string) string {
	info, err := os.Lstat(root)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return root
	}
	return root + string(filepath.Separator)
}

// MatchEntry reports whether the package of entry is listed in wanted.
// Directories never match. A file name without '_' is an error; any other
// name that does not parse simply does not match.
func MatchEntry(entry Entry, wanted []string) (Match, bool, error) {
	if entry.IsDir {
		return Match{}, false, nil
	}
	pkg, err := deb.PackageName(entry.Name)
	if err != nil {
		return Match{}, false, err
	}
	idx := slices.Index(wanted, pkg)
	if idx < 0 {
		return Match{}, false, nil
	}
	name, err := deb.Parse(entry.Name)
	if err != nil {
		name = deb.ParsedName{Filename: entry.Name, Package: pkg, DisplayPackage: pkg}
	}
	return Match{Path: entry.Path, Index: idx, Name: name}, true, nil
}

// Locate walks root once and returns, for each wanted package, the path of
// the first matching .deb in traversal order, or "" when none was found.
func Locate(root string, wanted []string) ([]string, error) {
	paths := make([]string, len(wanted))
	found := 0
	for entry, err := range Walk(root) {
		if err != nil {
			return nil, err
		}
		m, ok, err := MatchEntry(entry, wanted)
		if err != nil {
			return nil, err
		}
		if !ok || paths[m.Index] != "" {
			continue
		}
		paths[m.Index] = m.Path
		found++
		if found == len(wanted) {
			break
		}
	}
	return paths, nil
}

// Collect walks root and returns every .deb whose package is in wanted.
// Results are ordered by wanted index, then newest Debian version first,
// then path. Versions that cannot be parsed sort last.
func Collect(root string, wanted []string) ([]Match, error) {
	var matches []Match
	for entry, err := range Walk(root) {
		if err != nil {
			return nil, err
		}
		m, ok, err := MatchEntry(entry, wanted)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, m)
		}
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		if a.Index != b.Index {
			return a.Index - b.Index
		}
		if c := compareNewestFirst(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return matches, nil
}

func compareNewestFirst(a, b deb.ParsedName) int {
	va, errA := a.DebianVersion()
	vb, errB := b.DebianVersion()
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	return version.Compare(vb, va)
}
