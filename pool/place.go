package pool

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/renameio"
	log "github.com/sirupsen/logrus"

	"github.com/etnz/apt-pool/deb"
)

// Action transfers the file at src to dst. dst's directory exists when it is called.
type Action func(src, dst string) error

// Move renames src to dst. It fails when both are not on the same filesystem.
func Move(src, dst string) error {
	return os.Rename(src, dst)
}

// Copy duplicates src to dst, keeping src. The copy is written to a temporary
// file and renamed over dst, so readers never observe a partial file.
// Permission bits of src are preserved.
func Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := renameio.TempFile(filepath.Dir(dst), dst)
	if err != nil {
		return err
	}
	defer out.Cleanup()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	return out.CloseAtomicallyReplace()
}

// Placement records one artifact written to the pool.
type Placement struct {
	Source      string
	Name        deb.ParsedName
	Destination Destination
}

// Placer scatters the files of a flat build output directory into the pool.
type Placer struct {
	// Root is the archive root holding the pool directory.
	Root string
	// Action moves or copies each file. Nil means Move.
	Action Action
	// Log receives progress messages. Nil means the logrus standard logger.
	Log log.FieldLogger
	// OnPlace is called after each successful action.
	OnPlace func(Placement)
	// OnSkip is called for entries whose name is not valid UTF-8.
	OnSkip func(path string)
}

// Place places every regular file directly inside sourceDir into the pool of
// archive. Subdirectories are ignored. The first error aborts the batch;
// files placed before it stay in the pool.
func (p *Placer) Place(sourceDir, archive string) error {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return err
	}

	resolver := Resolver{Root: p.Root}
	action := p.Action
	if action == nil {
		action = Move
	}
	logger := p.logger()

	for _, entry := range entries {
		src := filepath.Join(sourceDir, entry.Name())
		if isDir(src, entry) {
			continue
		}

		name := entry.Name()
		if !utf8.ValidString(name) {
			logger.WithField("path", src).Warn("skipping file with a name that is not valid UTF-8")
			if p.OnSkip != nil {
				p.OnSkip(src)
			}
			continue
		}

		parsed, err := deb.Parse(name)
		if err != nil {
			return fmt.Errorf("placing %s: %w", src, err)
		}
		dest := resolver.Resolve(parsed, archive)

		logger.WithField("dir", dest.Dir).Debug("creating in pool")
		if err := os.MkdirAll(dest.Dir, 0755); err != nil {
			return err
		}
		if err := action(src, dest.Path); err != nil {
			return fmt.Errorf("placing %s: %w", src, err)
		}
		logger.WithFields(log.Fields{"file": name, "archive": archive}).Info("placed in pool")

		if p.OnPlace != nil {
			p.OnPlace(Placement{Source: src, Name: parsed, Destination: dest})
		}
	}
	return nil
}

// isDir reports whether entry is a directory, following symlinks.
func isDir(path string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir()
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (p *Placer) logger() log.FieldLogger {
	if p.Log == nil {
		return log.StandardLogger()
	}
	return p.Log
}

// MoveToPool moves the files of dir into the pool under root.
func MoveToPool(root, dir, archive string) error {
	p := &Placer{Root: root, Action: Move}
	return p.Place(dir, archive)
}

// CopyToPool copies the files of dir into the pool under root.
func CopyToPool(root, dir, archive string) error {
	p := &Placer{Root: root, Action: Copy}
	return p.Place(dir, archive)
}
