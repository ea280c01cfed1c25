// Package manifest runs packaging pipelines described in declarative files.
//
// A pipeline extracts uploaded archives, places build outputs into the pool,
// signs and hashes selected packages, and finally mirrors the archive root.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/etnz/apt-pool/fileops"
	"github.com/etnz/apt-pool/pool"
)

// Action names accepted in a batch.
const (
	ActionMove = "move"
	ActionCopy = "copy"
)

// Pipeline is the configuration of a packaging pipeline.
type Pipeline struct {
	// Root is the archive root holding the pool directory.
	Root string `json:"root" yaml:"root"`
	// Defines is a map of variables available to templates in every string field.
	Defines map[string]string `json:"defines" yaml:"defines"`
	// Extract lists archives to unpack before placement.
	Extract []Extraction `json:"extract" yaml:"extract"`
	// Batches lists build output directories to place into the pool, in order.
	Batches []Batch `json:"batches" yaml:"batches"`
	// Sign selects packages of the pool to sign.
	Sign *Selection `json:"sign" yaml:"sign"`
	// Hash selects packages of the pool to report digests for.
	Hash *Selection `json:"hash" yaml:"hash"`
	// Mirror copies the archive root elsewhere once everything else succeeded.
	Mirror *Mirror `json:"mirror" yaml:"mirror"`

	filePath string
	engine   *templateEngine

	// extractor and syncer are replaced in tests.
	extractor fileops.Extractor
	syncer    fileops.Syncer
}

// Extraction unpacks Archive into Dest.
type Extraction struct {
	Archive string `json:"archive" yaml:"archive"`
	Dest    string `json:"dest" yaml:"dest"`
}

// Batch places the files of Source into the pool of Archive.
type Batch struct {
	Source  string `json:"source" yaml:"source"`
	Archive string `json:"archive" yaml:"archive"`
	// Action is "move" (default) or "copy".
	Action string `json:"action" yaml:"action"`
}

// Selection names packages to look up in a directory tree.
type Selection struct {
	// Search is the directory to walk. It defaults to the pool directory.
	Search   string   `json:"search" yaml:"search"`
	Packages []string `json:"packages" yaml:"packages"`
}

// Mirror is an rsync destination for the archive root.
type Mirror struct {
	// Source defaults to the pipeline Root.
	Source string `json:"source" yaml:"source"`
	Dest   string `json:"dest" yaml:"dest"`
}

// NewPipeline loads and parses a Pipeline from the specified file path.
// It supports both JSON and YAML formats based on the file extension.
func NewPipeline(path string) (*Pipeline, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline: %w", err)
	}

	var p Pipeline
	if err := unmarshal(path, content, &p); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline: %w", err)
	}
	p.filePath = path
	p.engine = newTemplateEngine(p.Defines)

	if p.Root == "" {
		return nil, fmt.Errorf("pipeline must specify 'root'")
	}
	if p.Mirror != nil && p.Mirror.Dest == "" {
		return nil, fmt.Errorf("mirror must specify 'dest'")
	}
	for i, b := range p.Batches {
		if b.Action != "" && b.Action != ActionMove && b.Action != ActionCopy {
			return nil, fmt.Errorf("batch %d: unknown action %q", i, b.Action)
		}
	}
	return &p, nil
}

// Run executes the pipeline steps in order: extract, place, sign, hash,
// mirror. The first failure stops the run; completed steps are not undone.
// gpgKey is required only when the pipeline signs packages.
func (p *Pipeline) Run(gpgKey string, l Listener) error {
	if l == nil {
		l = func(fmt.Stringer) {}
	}
	root, err := p.path("root", p.Root)
	if err != nil {
		return err
	}

	for _, x := range p.Extract {
		archive, err := p.path("extract archive", x.Archive)
		if err != nil {
			return err
		}
		dest, err := p.path("extract dest", x.Dest)
		if err != nil {
			return err
		}
		if err := p.extractor.Extract(archive, dest); err != nil {
			return fmt.Errorf("failed to extract %s: %w", archive, err)
		}
		l(EventExtractSuccess{Archive: archive, Dest: dest})
	}

	for _, b := range p.Batches {
		if err := p.place(root, b, l); err != nil {
			return err
		}
	}

	if p.Sign != nil {
		if err := p.sign(root, gpgKey, l); err != nil {
			return err
		}
	}

	if p.Hash != nil {
		if err := p.hash(root, l); err != nil {
			return err
		}
	}

	if p.Mirror != nil {
		src := root
		if p.Mirror.Source != "" {
			if src, err = p.path("mirror source", p.Mirror.Source); err != nil {
				return err
			}
		}
		dest, err := p.engine.render("mirror dest", p.Mirror.Dest)
		if err != nil {
			return err
		}
		if err := p.syncer.Mirror(src, dest); err != nil {
			return fmt.Errorf("failed to mirror %s: %w", src, err)
		}
		l(EventMirrorSuccess{Source: src, Dest: dest})
	}
	return nil
}

func (p *Pipeline) place(root string, b Batch, l Listener) error {
	source, err := p.path("batch source", b.Source)
	if err != nil {
		return err
	}
	archive, err := p.engine.render("batch archive", b.Archive)
	if err != nil {
		return err
	}

	action := pool.Move
	if b.Action == ActionCopy {
		action = pool.Copy
	}
	placer := &pool.Placer{
		Root:   root,
		Action: action,
		OnPlace: func(pl pool.Placement) {
			l(EventFilePlaced{
				Source:  pl.Source,
				Path:    pl.Destination.Path,
				Package: pl.Name.Package,
				Version: pl.Name.Version,
				Arch:    pl.Name.Arch,
				Archive: archive,
			})
		},
		OnSkip: func(path string) { l(EventFileSkipped{Path: path}) },
	}
	if err := placer.Place(source, archive); err != nil {
		return fmt.Errorf("failed to place %s: %w", source, err)
	}
	return nil
}

func (p *Pipeline) sign(root, gpgKey string, l Listener) error {
	if gpgKey == "" {
		return fmt.Errorf("signing requested but no GPG key provided")
	}
	signer, err := fileops.NewSigner(gpgKey)
	if err != nil {
		return fmt.Errorf("failed to load GPG key: %w", err)
	}
	paths, err := p.locate(root, p.Sign)
	if err != nil {
		return err
	}
	for _, path := range paths {
		sig, err := signer.SignFile(path)
		if err != nil {
			return err
		}
		l(EventFileSigned{Path: path, Signature: sig})
	}
	return nil
}

func (p *Pipeline) hash(root string, l Listener) error {
	paths, err := p.locate(root, p.Hash)
	if err != nil {
		return err
	}
	digests, err := fileops.DigestFiles(paths)
	if err != nil {
		return err
	}
	for _, path := range paths {
		l(EventFileDigest{Path: path, MD5: digests[path]})
	}
	return nil
}

// locate resolves a selection to the paths of the wanted packages. A missing
// package is an error.
func (p *Pipeline) locate(root string, s *Selection) ([]string, error) {
	search := filepath.Join(root, "pool")
	if s.Search != "" {
		var err error
		if search, err = p.path("search", s.Search); err != nil {
			return nil, err
		}
	}
	wanted := make([]string, len(s.Packages))
	for i, name := range s.Packages {
		var err error
		if wanted[i], err = p.engine.render("package", name); err != nil {
			return nil, err
		}
	}

	paths, err := pool.Locate(search, wanted)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", search, err)
	}
	for i, path := range paths {
		if path == "" {
			return nil, fmt.Errorf("package %q not found in %s", wanted[i], search)
		}
	}
	return paths, nil
}

// path renders a templated path and resolves it relative to the pipeline file.
func (p *Pipeline) path(name, text string) (string, error) {
	rendered, err := p.engine.render(name, text)
	if err != nil {
		return "", fmt.Errorf("rendering %s %q: %w", name, text, err)
	}
	return p.resolve(rendered), nil
}

func (p *Pipeline) resolve(path string) string {
	if filepath.IsAbs(path) || p.filePath == "" {
		return path
	}
	return filepath.Join(filepath.Dir(p.filePath), path)
}

// unmarshal parses JSON or YAML based on file extension.
func unmarshal(path string, data []byte, v interface{}) error {
	ext := strings.ToLower(filepath.Ext(path))
	r := bytes.NewReader(data)
	if ext == ".yaml" || ext == ".yml" {
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		return dec.Decode(v)
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
