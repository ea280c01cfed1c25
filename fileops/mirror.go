package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Syncer mirrors directory trees with rsync.
type Syncer struct {
	// Runner runs rsync. Nil means ExecRunner.
	Runner Runner
	// Log receives progress messages. Nil means the logrus standard logger.
	Log log.FieldLogger
}

// Mirror copies src to dst with rsync -avz. src must be an existing
// directory. When dst is a local path its parent directory is created;
// remote destinations (host:path) are left to rsync.
func (s Syncer) Mirror(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("mirror source %s is not a directory", src)
	}

	if !isRemote(dst) {
		if err := os.MkdirAll(filepath.Dir(filepath.Clean(dst)), 0755); err != nil {
			return err
		}
	}

	s.logger().WithFields(log.Fields{"src": src, "dst": dst}).Info("rsyncing")
	return runnerOrDefault(s.Runner).Run("rsync", "-avz", src, dst)
}

// Mirror copies src to dst with the default Syncer.
func Mirror(src, dst string) error {
	return Syncer{}.Mirror(src, dst)
}

// isRemote reports whether an rsync path names a remote location.
// A colon before the first slash marks host:path and rsync://host/path.
func isRemote(path string) bool {
	colon := strings.Index(path, ":")
	if colon < 0 {
		return false
	}
	slash := strings.Index(path, "/")
	return slash < 0 || colon < slash
}

func (s Syncer) logger() log.FieldLogger {
	if s.Log == nil {
		return log.StandardLogger()
	}
	return s.Log
}
