package manifest

import (
	"encoding/json"
	"fmt"
)

// Listener is a callback function that receives events during a pipeline run.
type Listener func(fmt.Stringer)

func jsonString(v interface{}) string {
	b, _ := json.Marshal(map[string]interface{}{
		fmt.Sprintf("%T", v): v,
	})
	return string(b)
}

// EventExtractSuccess is emitted when an archive has been unpacked.
type EventExtractSuccess struct {
	Archive string `json:"archive,omitempty"`
	Dest    string `json:"dest,omitempty"`
}

func (e EventExtractSuccess) String() string { return jsonString(e) }

// EventFilePlaced is emitted when a build output lands in the pool.
type EventFilePlaced struct {
	Source  string `json:"source,omitempty"`
	Path    string `json:"path,omitempty"`
	Package string `json:"package,omitempty"`
	Version string `json:"version,omitempty"`
	Arch    string `json:"arch,omitempty"`
	Archive string `json:"archive,omitempty"`
}

func (e EventFilePlaced) String() string { return jsonString(e) }

// EventFileSkipped is emitted when a build output cannot be named as text.
type EventFileSkipped struct {
	Path string `json:"path,omitempty"`
}

func (e EventFileSkipped) String() string { return jsonString(e) }

// EventFileSigned is emitted when a signature has been written.
type EventFileSigned struct {
	Path      string `json:"path,omitempty"`
	Signature string `json:"signature,omitempty"`
}

func (e EventFileSigned) String() string { return jsonString(e) }

// EventFileDigest reports the digest of a selected package.
type EventFileDigest struct {
	Path string `json:"path,omitempty"`
	MD5  string `json:"md5,omitempty"`
}

func (e EventFileDigest) String() string { return jsonString(e) }

// EventMirrorSuccess is emitted when the archive has been mirrored.
type EventMirrorSuccess struct {
	Source string `json:"source,omitempty"`
	Dest   string `json:"dest,omitempty"`
}

func (e EventMirrorSuccess) String() string { return jsonString(e) }
