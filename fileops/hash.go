package fileops

import (
	"bufio"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// bufferSize is the chunk size used to stream files through a hash.
const bufferSize = 64 * 1024

// Digest returns the hex MD5 of everything read from r.
func Digest(r io.Reader) (string, error) {
	return sum(md5.New(), r)
}

// DigestFile returns the hex MD5 of the file at path.
func DigestFile(path string) (string, error) {
	return sumFile(md5.New(), path)
}

// SHA256File returns the hex SHA256 of the file at path.
func SHA256File(path string) (string, error) {
	return sumFile(sha256.New(), path)
}

// DigestFiles computes the MD5 of every path concurrently, hashing at most
// one file per CPU at a time. The first error cancels the result.
func DigestFiles(paths []string) (map[string]string, error) {
	var (
		eg      errgroup.Group
		mu      sync.Mutex
		digests = make(map[string]string, len(paths))
	)
	eg.SetLimit(runtime.NumCPU())
	for _, path := range paths {
		eg.Go(func() error {
			d, err := DigestFile(path)
			if err != nil {
				return err
			}
			mu.Lock()
			digests[path] = d
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return digests, nil
}

func sumFile(h hash.Hash, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return sum(h, f)
}

func sum(h hash.Hash, r io.Reader) (string, error) {
	if _, err := io.Copy(h, bufio.NewReaderSize(r, bufferSize)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
