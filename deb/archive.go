package deb

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/blakesmith/ar"
)

// Member describes one entry of the ar container of a .deb file.
type Member struct {
	Name string
	Size int64
}

// Members lists the ar entries of a .deb file read from r, in archive order.
func Members(r io.Reader) ([]Member, error) {
	var members []Member
	err := eachMember(r, func(h *ar.Header, _ io.Reader) error {
		members = append(members, Member{Name: h.Name, Size: h.Size})
		return nil
	})
	return members, err
}

// ContentDigest computes the SHA256 of the payload members (debian-binary,
// control.tar, data.tar) of a .deb read from r.
// Archive headers (timestamps, UID/GID) are ignored so that reproducible
// builds yield the same digest even when the container is rebuilt.
func ContentDigest(r io.Reader) (string, error) {
	h := sha256.New()
	err := eachMember(r, func(_ *ar.Header, body io.Reader) error {
		_, err := io.Copy(h, body)
		return err
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ContentDigestFile is ContentDigest for the .deb at path.
func ContentDigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	digest, err := ContentDigest(f)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return digest, nil
}

// eachMember iterates through the AR archive structure of a .deb and calls fn
// for every entry.
func eachMember(r io.Reader, fn func(*ar.Header, io.Reader) error) error {
	arR := ar.NewReader(r)
	count := 0
	for {
		header, err := arR.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := fn(header, arR); err != nil {
			return err
		}
		count++
	}
	if count == 0 {
		return fmt.Errorf("empty ar archive")
	}
	return nil
}
