package deb

import (
	"errors"
	"testing"

	"pault.ag/go/debian/version"
)

func TestParse(t *testing.T) {
	tests := []struct {
		filename string
		want     ParsedName
	}{
		{
			filename: "foo_1.0-1_amd64.deb",
			want: ParsedName{
				Filename:       "foo_1.0-1_amd64.deb",
				Package:        "foo",
				DisplayPackage: "foo",
				Version:        "1.0-1",
				Stem:           "foo_1.0-1_amd64",
				Arch:           "amd64",
			},
		},
		{
			filename: "libfoo-dbgsym_2.3_arm64.deb",
			want: ParsedName{
				Filename:       "libfoo-dbgsym_2.3_arm64.deb",
				Package:        "libfoo-dbgsym",
				DisplayPackage: "libfoo",
				Version:        "2.3",
				Stem:           "libfoo-dbgsym_2.3_arm64",
				Arch:           "arm64",
			},
		},
		{
			filename: "foo_1.0-1.dsc",
			want: ParsedName{
				Filename:       "foo_1.0-1.dsc",
				Package:        "foo",
				DisplayPackage: "foo",
				Version:        "1.0-1",
				Stem:           "foo_1.0-1",
				IsSource:       true,
			},
		},
		{
			filename: "foo_1.0.orig.tar.xz",
			want: ParsedName{
				Filename:       "foo_1.0.orig.tar.xz",
				Package:        "foo",
				DisplayPackage: "foo",
				Version:        "1.0",
				Stem:           "foo_1.0.orig.tar",
				IsSource:       true,
			},
		},
		{
			filename: "foo_1.0-1.debian.tar.xz",
			want: ParsedName{
				Filename:       "foo_1.0-1.debian.tar.xz",
				Package:        "foo",
				DisplayPackage: "foo",
				Version:        "1.0-1",
				Stem:           "foo_1.0-1.debian.tar",
				IsSource:       true,
			},
		},
		{
			filename: "foo_1.0-1_amd64.changes",
			want: ParsedName{
				Filename:       "foo_1.0-1_amd64.changes",
				Package:        "foo",
				DisplayPackage: "foo",
				Version:        "1.0-1",
				Stem:           "foo_1.0-1_amd64",
				Arch:           "amd64",
			},
		},
		{
			// the only '_' lives in the extension, arch falls back to the stem
			filename: "foo.a_b",
			want: ParsedName{
				Filename:       "foo.a_b",
				Package:        "foo.a",
				DisplayPackage: "foo.a",
				Version:        "b",
				Stem:           "foo",
				Arch:           "foo",
			},
		},
		{
			filename: "/srv/build/bar_3_all.deb",
			want: ParsedName{
				Filename:       "bar_3_all.deb",
				Package:        "bar",
				DisplayPackage: "bar",
				Version:        "3",
				Stem:           "bar_3_all",
				Arch:           "all",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := Parse(tt.filename)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.filename, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q)\n got: %+v\nwant: %+v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, name := range []string{"foo.deb", "README", "", "_1.0_amd64.deb"} {
		_, err := Parse(name)
		if !errors.Is(err, ErrMalformedName) {
			t.Errorf("Parse(%q): expected ErrMalformedName, got %v", name, err)
		}
	}

	_, err := Parse("_1.0_amd64.deb")
	if !errors.Is(err, ErrEmptyPackage) {
		t.Errorf("expected ErrEmptyPackage, got %v", err)
	}
}

func TestParsedName_IsDebugSymbols(t *testing.T) {
	p, err := Parse("foo-dbgsym_1_amd64.deb")
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsDebugSymbols() {
		t.Error("expected debug symbols package")
	}
	p, err = Parse("foo_1_amd64.deb")
	if err != nil {
		t.Fatal(err)
	}
	if p.IsDebugSymbols() {
		t.Error("did not expect debug symbols package")
	}
}

func TestParsedName_DebianVersion(t *testing.T) {
	older, err := Parse("foo_1.0-1_amd64.deb")
	if err != nil {
		t.Fatal(err)
	}
	newer, err := Parse("foo_1.0-10_amd64.deb")
	if err != nil {
		t.Fatal(err)
	}
	vo, err := older.DebianVersion()
	if err != nil {
		t.Fatalf("DebianVersion failed: %v", err)
	}
	vn, err := newer.DebianVersion()
	if err != nil {
		t.Fatalf("DebianVersion failed: %v", err)
	}
	if vo.Version != "1.0" || vo.Revision != "1" {
		t.Errorf("unexpected version split: %+v", vo)
	}
	if version.Compare(vn, vo) <= 0 {
		t.Errorf("expected %s > %s", vn, vo)
	}
}

func TestPackageName(t *testing.T) {
	got, err := PackageName("pool/main/f/foo/foo_1.0_amd64.deb")
	if err != nil {
		t.Fatal(err)
	}
	if got != "foo" {
		t.Errorf("expected foo, got %s", got)
	}
	if _, err := PackageName("foo.deb"); !errors.Is(err, ErrMalformedName) {
		t.Errorf("expected ErrMalformedName, got %v", err)
	}
}
