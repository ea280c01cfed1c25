package fileops

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"

	"github.com/etnz/apt-pool/deb"
)

// SignatureSuffix is appended to a file name to store its signature.
const SignatureSuffix = ".asc"

// clearsignSuffixes are text artifacts that are signed inline.
var clearsignSuffixes = []deb.Extension{deb.ExtDsc, deb.ExtChanges, deb.ExtBuildinfo}

// Signer signs pool artifacts with an OpenPGP private key.
type Signer struct {
	entity *openpgp.Entity
}

// NewSigner loads the first private key of an ASCII-armored key ring.
func NewSigner(armoredKey string) (*Signer, error) {
	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKey))
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if e.PrivateKey != nil {
			return &Signer{entity: e}, nil
		}
	}
	return nil, fmt.Errorf("no private key found")
}

// SignFile signs the file at path and returns the path of the signature.
// Text artifacts (.dsc, .changes, .buildinfo) are clearsigned, everything
// else gets a detached armored signature.
func (s *Signer) SignFile(path string) (string, error) {
	for _, suffix := range clearsignSuffixes {
		if strings.HasSuffix(path, string(suffix)) {
			return s.Clearsign(path)
		}
	}
	return s.SignDetached(path)
}

// SignDetached writes an armored detached signature of path to path.asc.
func (s *Signer) SignDetached(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var out bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&out, s.entity, f, nil); err != nil {
		return "", fmt.Errorf("signing %s: %w", path, err)
	}
	sigPath := path + SignatureSuffix
	return sigPath, WriteFile(sigPath, out.Bytes())
}

// Clearsign writes the clearsigned content of path to path.asc.
func (s *Signer) Clearsign(path string) (string, error) {
	input, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	w, err := clearsign.Encode(&out, s.entity.PrivateKey, nil)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(input); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("signing %s: %w", path, err)
	}
	sigPath := path + SignatureSuffix
	return sigPath, WriteFile(sigPath, out.Bytes())
}

// PublicKey returns the public part of the signing key.
// If armored is true, it returns the public key in ASCII-armored format.
// Otherwise, it returns the binary serialized public key.
func (s *Signer) PublicKey(armored bool) ([]byte, error) {
	var buf bytes.Buffer
	if !armored {
		if err := s.entity.Serialize(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, err
	}
	if err := s.entity.Serialize(w); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
