package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/etnz/apt-pool/deb"
)

// ErrUnsupportedArchive is returned by Extract for archive formats it does not handle.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

// Extractor unpacks source archives with external tools.
type Extractor struct {
	// Runner runs unzip and tar. Nil means ExecRunner.
	Runner Runner
	// Log receives progress messages. Nil means the logrus standard logger.
	Log log.FieldLogger
}

// Extract unpacks archive into dest, choosing the tool from the file suffix:
// .zip uses unzip, .tar.gz and .tar.xz use tar.
func (e Extractor) Extract(archive, dest string) error {
	name := filepath.Base(archive)
	switch {
	case strings.HasSuffix(name, string(deb.ExtZip)):
		return e.Unzip(archive, dest)
	case strings.HasSuffix(name, string(deb.ExtTarGz)), strings.HasSuffix(name, string(deb.ExtTarXz)):
		return e.Untar(archive, dest)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, name)
	}
}

// Unzip replaces dest with the content of a zip archive.
func (e Extractor) Unzip(archive, dest string) error {
	if err := resetDir(dest); err != nil {
		return err
	}
	e.logger().WithFields(log.Fields{"archive": archive, "dest": dest}).Info("extracting")
	return runnerOrDefault(e.Runner).Run("unzip", archive, "-d", dest)
}

// Untar replaces dest with the content of a tarball. The first path
// component of every entry is stripped, as source tarballs wrap their content
// in a single top-level directory.
func (e Extractor) Untar(archive, dest string) error {
	if err := resetDir(dest); err != nil {
		return err
	}
	e.logger().WithFields(log.Fields{"archive": archive, "dest": dest}).Info("extracting")
	return runnerOrDefault(e.Runner).Run("tar", "-xvf", archive, "-C", dest, "--strip-components", "1")
}

// Extract unpacks archive into dest with the default Extractor.
func Extract(archive, dest string) error {
	return Extractor{}.Extract(archive, dest)
}

// resetDir removes dir if it exists and creates it empty.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

func (e Extractor) logger() log.FieldLogger {
	if e.Log == nil {
		return log.StandardLogger()
	}
	return e.Log
}
