// Package pool maintains the on-disk pool of a Debian archive.
//
// Artifacts are placed under
//
//	{root}/pool/{archive}/main/source/{bucket}/{package}/{filename}
//	{root}/pool/{archive}/main/binary-{arch}/{bucket}/{package}/{filename}
//
// where bucket is the first character of the package name.
//
// Reference: https://wiki.debian.org/DebianRepository/Format#A.22Filename.22
package pool

import (
	"path/filepath"

	"github.com/etnz/apt-pool/deb"
)

const (
	poolDir      = "pool"
	component    = "main"
	sourceDir    = "source"
	binaryPrefix = "binary-"
)

// Destination is the location of an artifact inside the pool.
type Destination struct {
	// Dir is the directory holding the artifact. It must exist before the
	// artifact is written.
	Dir string
	// Path is Dir joined with the original filename.
	Path string
	// RelPath is Path relative to the archive root, as referenced by index files.
	RelPath string
}

// Resolver computes pool destinations under Root.
// An empty Root resolves paths relative to the working directory.
type Resolver struct {
	Root string
}

// Resolve computes the destination of p in archive. It does not touch the
// filesystem. archive and package names are used verbatim.
func (r Resolver) Resolve(p deb.ParsedName, archive string) Destination {
	kind := sourceDir
	if !p.IsSource {
		kind = binaryPrefix + p.Arch
	}
	rel := filepath.Join(poolDir, archive, component, kind, Bucket(p.DisplayPackage), p.DisplayPackage)
	dir := filepath.Join(r.Root, rel)
	return Destination{
		Dir:     dir,
		Path:    filepath.Join(dir, p.Filename),
		RelPath: filepath.Join(rel, p.Filename),
	}
}

// ResolveName parses filename and resolves it.
func (r Resolver) ResolveName(filename, archive string) (Destination, error) {
	p, err := deb.Parse(filename)
	if err != nil {
		return Destination{}, err
	}
	return r.Resolve(p, archive), nil
}

// Bucket returns the first character of name, or "" for an empty name.
func Bucket(name string) string {
	for _, r := range name {
		return string(r)
	}
	return ""
}
