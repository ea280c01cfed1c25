package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/etnz/apt-pool/deb"
	"github.com/etnz/apt-pool/fileops"
	"github.com/etnz/apt-pool/manifest"
	"github.com/etnz/apt-pool/pool"
)

// arrayFlags collects repeated flags.
type arrayFlags []string

// String implements the flag.Value interface.
func (i *arrayFlags) String() string {
	return strings.Join(*i, ", ")
}

// Set implements the flag.Value interface.
func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	switch os.Args[1] {
	case "place":
		runPlace(os.Args[2:])
	case "find":
		runFind(os.Args[2:])
	case "hash":
		runHash(os.Args[2:])
	case "extract":
		runExtract(os.Args[2:])
	case "mirror":
		runMirror(os.Args[2:])
	case "unlink":
		runUnlink(os.Args[2:])
	case "sign":
		runSign(os.Args[2:])
	case "run":
		runPipeline(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: apt-pool <command> [flags]")
	fmt.Println("\nCommands:")
	fmt.Println("  place    Move or copy build outputs into the pool")
	fmt.Println("  find     Locate .deb files by package name")
	fmt.Println("  hash     Print file digests")
	fmt.Println("  extract  Unpack a .zip, .tar.gz or .tar.xz archive")
	fmt.Println("  mirror   rsync a directory to a destination")
	fmt.Println("  unlink   Remove links")
	fmt.Println("  sign     Sign files with GPG_PRIVATE_KEY")
	fmt.Println("  run      Run a pipeline file")
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// newFlagSet creates a subcommand flag set with the shared -v flag.
func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose logging")
	return fs, verbose
}

func setVerbose(verbose bool) {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

func runPlace(args []string) {
	fs, verbose := newFlagSet("place")
	root := fs.String("root", "repo", "Archive root holding the pool directory")
	var srcs arrayFlags
	fs.Var(&srcs, "src", "Directory containing build outputs (repeatable)")
	archive := fs.String("archive", "", "Archive name (e.g. jammy)")
	copyFiles := fs.Bool("copy", false, "Copy files instead of moving them")
	fs.Parse(args)
	setVerbose(*verbose)

	if *archive == "" {
		fatalf("-archive is required")
	}
	if len(srcs) == 0 {
		srcs = arrayFlags{"./build"}
	}

	placer := &pool.Placer{Root: *root, Action: pool.Move}
	if *copyFiles {
		placer.Action = pool.Copy
	}
	for _, src := range srcs {
		if err := placer.Place(src, *archive); err != nil {
			fatalf("%v", err)
		}
	}
}

func runFind(args []string) {
	fs, verbose := newFlagSet("find")
	root := fs.String("root", "repo/pool", "Directory to search")
	all := fs.Bool("all", false, "Print every match, newest version first")
	fs.Parse(args)
	setVerbose(*verbose)

	wanted := fs.Args()
	if len(wanted) == 0 {
		fatalf("at least one package name is required")
	}

	if *all {
		matches, err := pool.Collect(*root, wanted)
		if err != nil {
			fatalf("%v", err)
		}
		for _, m := range matches {
			fmt.Printf("%s\t%s\n", wanted[m.Index], m.Path)
		}
		return
	}

	paths, err := pool.Locate(*root, wanted)
	if err != nil {
		fatalf("%v", err)
	}
	missing := false
	for i, path := range paths {
		if path == "" {
			log.WithField("package", wanted[i]).Warn("not found")
			missing = true
			continue
		}
		fmt.Printf("%s\t%s\n", wanted[i], path)
	}
	if missing {
		os.Exit(1)
	}
}

func runHash(args []string) {
	fs, verbose := newFlagSet("hash")
	sha := fs.Bool("sha256", false, "Print SHA256 instead of MD5")
	content := fs.Bool("content", false, "Hash the payload members of .deb files, ignoring ar headers")
	fs.Parse(args)
	setVerbose(*verbose)

	files := fs.Args()
	if len(files) == 0 {
		fatalf("at least one file is required")
	}

	var digest func(string) (string, error)
	switch {
	case *content:
		digest = deb.ContentDigestFile
	case *sha:
		digest = fileops.SHA256File
	}

	if digest == nil {
		digests, err := fileops.DigestFiles(files)
		if err != nil {
			fatalf("%v", err)
		}
		sorted := make([]string, 0, len(digests))
		for f := range digests {
			sorted = append(sorted, f)
		}
		sort.Strings(sorted)
		for _, f := range sorted {
			fmt.Printf("%s  %s\n", digests[f], f)
		}
		return
	}

	for _, f := range files {
		d, err := digest(f)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("%s  %s\n", d, f)
	}
}

func runExtract(args []string) {
	fs, verbose := newFlagSet("extract")
	dest := fs.String("dest", "", "Destination directory (replaced)")
	fs.Parse(args)
	setVerbose(*verbose)

	if *dest == "" || fs.NArg() != 1 {
		fatalf("usage: apt-pool extract -dest DIR ARCHIVE")
	}
	if err := fileops.Extract(fs.Arg(0), *dest); err != nil {
		fatalf("%v", err)
	}
}

func runMirror(args []string) {
	fs, verbose := newFlagSet("mirror")
	fs.Parse(args)
	setVerbose(*verbose)

	if fs.NArg() != 2 {
		fatalf("usage: apt-pool mirror SRC DST")
	}
	if err := fileops.Mirror(fs.Arg(0), fs.Arg(1)); err != nil {
		fatalf("%v", err)
	}
}

func runUnlink(args []string) {
	fs, verbose := newFlagSet("unlink")
	fs.Parse(args)
	setVerbose(*verbose)

	for _, path := range fs.Args() {
		if err := fileops.Unlink(path); err != nil {
			fatalf("%v", err)
		}
		log.WithField("path", path).Debug("unlinked")
	}
}

func runSign(args []string) {
	fs, verbose := newFlagSet("sign")
	pubOut := fs.String("export", "", "Also write the armored public key to this file")
	fs.Parse(args)
	setVerbose(*verbose)

	key := os.Getenv("GPG_PRIVATE_KEY")
	if key == "" {
		fatalf("GPG_PRIVATE_KEY is not set")
	}
	signer, err := fileops.NewSigner(key)
	if err != nil {
		fatalf("could not load GPG key: %v", err)
	}

	for _, path := range fs.Args() {
		sig, err := signer.SignFile(path)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Println(sig)
	}

	if *pubOut != "" {
		pub, err := signer.PublicKey(true)
		if err != nil {
			fatalf("%v", err)
		}
		if err := fileops.WriteFile(*pubOut, pub); err != nil {
			fatalf("%v", err)
		}
	}
}

func runPipeline(args []string) {
	fs, verbose := newFlagSet("run")
	path := fs.String("pipeline", "apt-pool.yaml", "Path to pipeline file")
	fs.Parse(args)
	setVerbose(*verbose)

	p, err := manifest.NewPipeline(*path)
	if err != nil {
		fatalf("%v", err)
	}
	err = p.Run(os.Getenv("GPG_PRIVATE_KEY"), func(e fmt.Stringer) {
		fmt.Println(e)
	})
	if err != nil {
		fatalf("%v", err)
	}
}
