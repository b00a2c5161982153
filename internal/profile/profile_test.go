package profile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestGet_Builtin(t *testing.T) {
	p := Get("web")
	if p.ComponentsX != 4 || p.ComponentsY != 3 {
		t.Errorf("web components = %dx%d, want 4x3", p.ComponentsX, p.ComponentsY)
	}
	for _, name := range Builtin().Names() {
		if err := Get(name).Validate(); err != nil {
			t.Errorf("builtin %s: %v", name, err)
		}
	}
}

func TestGet_UnknownFallsBack(t *testing.T) {
	p := Get("nope")
	if p.Name != "nope" {
		t.Errorf("Name = %q, want requested name", p.Name)
	}
	if p.ComponentsX != Get(DefaultName).ComponentsX {
		t.Error("unknown profile did not fall back to default")
	}
	if Get("").Name != DefaultName {
		t.Errorf("empty name = %q, want %q", Get("").Name, DefaultName)
	}
}

func TestMerge_OverrideAndAdd(t *testing.T) {
	s := Builtin()
	err := s.Merge([]byte(`
profiles:
  web:
    components_x: 5
  hero:
    base: detailed
    preview_width: 96
    preview_format: JPEG
  plain:
    max_dim: 16
`))
	if err != nil {
		t.Fatal(err)
	}

	web := s.Get("web")
	if web.ComponentsX != 5 || web.ComponentsY != 3 {
		t.Errorf("web = %dx%d, want 5x3", web.ComponentsX, web.ComponentsY)
	}

	hero, ok := s.Lookup("hero")
	if !ok {
		t.Fatal("hero not added")
	}
	if hero.ComponentsX != 6 || hero.PreviewWidth != 96 || hero.PreviewFormat != "jpeg" || hero.Name != "hero" {
		t.Errorf("hero = %+v", hero)
	}

	plain, _ := s.Lookup("plain")
	if plain.MaxDim != 16 || plain.ComponentsX != 4 {
		t.Errorf("plain = %+v, want default profile with max_dim 16", plain)
	}
}

func TestMerge_Invalid(t *testing.T) {
	cases := []string{
		"profiles:\n  web:\n    components_x: 10\n",
		"profiles:\n  web:\n    preview_format: webp\n",
		"profiles:\n  x:\n    base: missing\n",
		"profiles:\n  web:\n    punch: -1\n",
		"profiles: [",
	}
	for _, c := range cases {
		s := Builtin()
		if err := s.Merge([]byte(c)); err == nil {
			t.Errorf("Merge(%q): expected error", c)
		}
		if got := s.Get("web"); !reflect.DeepEqual(got, builtin["web"]) {
			t.Errorf("Merge(%q) partially applied: %+v", c, got)
		}
	}
	err := Builtin().Merge([]byte("profiles:\n  web:\n    max_dim: 0\n"))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte("profiles:\n  tiny:\n    base: minimal\n    components_y: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := s.Lookup("tiny")
	if !ok || p.ComponentsX != 3 || p.ComponentsY != 1 {
		t.Errorf("tiny = %+v, ok=%v", p, ok)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDump_RoundTrips(t *testing.T) {
	s := Builtin()
	data, err := s.Dump()
	if err != nil {
		t.Fatal(err)
	}
	back := &Set{profiles: map[string]Profile{DefaultName: builtin[DefaultName]}}
	if err := back.Merge(data); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.profiles, s.profiles) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", back.profiles, s.profiles)
	}
}

func TestPreviewSize(t *testing.T) {
	p := Profile{PreviewWidth: 32}
	cases := []struct{ w, h, ww, wh int }{
		{640, 480, 32, 24},
		{480, 640, 24, 32},
		{20, 10, 20, 10},
		{1000, 1, 32, 1},
		{0, 10, 0, 0},
	}
	for _, c := range cases {
		if w, h := p.PreviewSize(c.w, c.h); w != c.ww || h != c.wh {
			t.Errorf("PreviewSize(%d,%d) = %d,%d, want %d,%d", c.w, c.h, w, h, c.ww, c.wh)
		}
	}
}
