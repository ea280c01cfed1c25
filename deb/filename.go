package deb

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"pault.ag/go/debian/version"
)

var (
	// ErrMalformedName is returned when a filename does not follow the
	// <package>_<version>_<arch>.<ext> naming convention.
	ErrMalformedName = errors.New("debian package lacks _ character")
	// ErrEmptyPackage is returned when the package part of a filename is empty.
	// It wraps ErrMalformedName.
	ErrEmptyPackage = fmt.Errorf("%w: empty package name", ErrMalformedName)
)

// ParsedName is the view of an artifact filename used to place it in a pool.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-binary.html#the-package-filename
type ParsedName struct {
	// Filename is the untouched input, always the name written to disk.
	Filename string
	// Package is the text before the first '_'.
	Package string
	// DisplayPackage is Package without the -dbgsym suffix. It is the name
	// used to bucket the artifact in the pool.
	DisplayPackage string
	// Version is the version segment of the filename.
	Version string
	// Stem is Filename without its final dot extension.
	Stem string
	// IsSource is true for .dsc and .tar.xz artifacts.
	IsSource bool
	// Arch is the last '_' segment of Stem. Empty for source artifacts.
	Arch string
}

// Parse splits an artifact filename into its components.
// Only the base name of filename is considered.
func Parse(filename string) (ParsedName, error) {
	filename = filepath.Base(filename)
	pkg, rest, found := strings.Cut(filename, "_")
	if !found {
		return ParsedName{}, fmt.Errorf("%w: %q", ErrMalformedName, filename)
	}
	if pkg == "" {
		return ParsedName{}, fmt.Errorf("%w: %q", ErrEmptyPackage, filename)
	}

	p := ParsedName{
		Filename:       filename,
		Package:        pkg,
		DisplayPackage: strings.TrimSuffix(pkg, DebugSymbolsSuffix),
		Stem:           stem(filename),
		IsSource:       isSource(filename),
	}
	if !p.IsSource {
		p.Arch = p.Stem[strings.LastIndex(p.Stem, "_")+1:]
	}
	p.Version = versionOf(rest, p.IsSource)
	return p, nil
}

// PackageName returns the text before the first '_' of a filename.
func PackageName(filename string) (string, error) {
	filename = filepath.Base(filename)
	pkg, _, found := strings.Cut(filename, "_")
	if !found {
		return "", fmt.Errorf("%w: %q", ErrMalformedName, filename)
	}
	return pkg, nil
}

// IsDebugSymbols reports whether the artifact belongs to an automatic -dbgsym package.
func (p ParsedName) IsDebugSymbols() bool {
	return p.Package != p.DisplayPackage
}

// DebianVersion parses the Version segment using Debian comparison rules.
func (p ParsedName) DebianVersion() (version.Version, error) {
	return version.Parse(p.Version)
}

// String returns the original filename.
func (p ParsedName) String() string { return p.Filename }

func stem(filename string) string {
	ext := filepath.Ext(filename)
	if ext == filename {
		// dot files have no extension
		return filename
	}
	return strings.TrimSuffix(filename, ext)
}

func isSource(filename string) bool {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(filename, string(ext)) {
			return true
		}
	}
	return false
}

// versionOf extracts the version from the text following the package name.
func versionOf(rest string, source bool) string {
	if v, _, found := strings.Cut(rest, "_"); found {
		return v
	}
	if !source {
		return stem(rest)
	}
	for _, ext := range versionSuffixes {
		if strings.HasSuffix(rest, string(ext)) {
			return strings.TrimSuffix(rest, string(ext))
		}
	}
	return rest
}
