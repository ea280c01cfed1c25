package deb

// Extension is a filename suffix of an artifact produced by a Debian build.
type Extension string

const (
	ExtDeb         Extension = ".deb"
	ExtDsc         Extension = ".dsc"
	ExtChanges     Extension = ".changes"
	ExtBuildinfo   Extension = ".buildinfo"
	ExtTarXz       Extension = ".tar.xz"
	ExtOrigTarXz   Extension = ".orig.tar.xz"
	ExtDebianTarXz Extension = ".debian.tar.xz"
	ExtTarGz       Extension = ".tar.gz"
	ExtZip         Extension = ".zip"
)

// DebugSymbolsSuffix ends the name of automatic debug symbol packages.
const DebugSymbolsSuffix = "-dbgsym"

// sourceExtensions mark an artifact as belonging to the source tree of the pool.
var sourceExtensions = []Extension{ExtDsc, ExtTarXz}

// versionSuffixes are stripped from the tail of a source artifact to recover its version.
// Longest suffixes come first.
var versionSuffixes = []Extension{ExtOrigTarXz, ExtDebianTarXz, ExtTarXz, ExtDsc}

// PackageFile represents a standard file found in the .deb archive (ar format).
type PackageFile string

const (
	PkgDebianBinary PackageFile = "debian-binary"
	PkgControlTarGz PackageFile = "control.tar.gz"
	PkgDataTarGz    PackageFile = "data.tar.gz"
)
