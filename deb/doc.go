// Package deb understands the artifacts produced by a Debian package build.
//
// # Filenames
//
// Build outputs follow the naming convention <package>_<version>_<arch>.<ext>
// for binary artifacts (.deb, .udeb, .changes, .buildinfo) and
// <package>_<version>.<ext> for source artifacts (.dsc, .orig.tar.xz,
// .debian.tar.xz). Parse splits a filename into these components and is the
// only place where the convention is interpreted. Names that lack the '_'
// separator are rejected with ErrMalformedName: no best-effort recovery is
// attempted.
//
// Automatic debug symbol packages (<package>-dbgsym) are reported with their
// suffix stripped in ParsedName.DisplayPackage so they share the pool
// directory of the package they were built from.
//
// # Archives
//
// Members and ContentDigest read the ar container of a .deb without
// interpreting control metadata.
package deb
