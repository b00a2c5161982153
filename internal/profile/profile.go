// Package profile holds named placeholder presets. Built-in profiles cover
// common cases; a YAML file can add new ones or override fields of existing
// ones.
package profile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile defines placeholder parameters for a target surface.
type Profile struct {
	Name          string  `yaml:"name"`
	ComponentsX   int     `yaml:"components_x"`   // horizontal components, 1-9
	ComponentsY   int     `yaml:"components_y"`   // vertical components, 1-9
	MaxDim        int     `yaml:"max_dim"`        // longest side after downscale, before encode
	Punch         float64 `yaml:"punch"`          // contrast for rendered previews
	PreviewWidth  int     `yaml:"preview_width"`  // longest side of rendered previews
	PreviewFormat string  `yaml:"preview_format"` // png, jpeg, gif, bmp or tiff
}

// DefaultName is used when no profile is requested.
const DefaultName = "web"

// Built-in profiles.
var builtin = map[string]Profile{
	"web": {
		Name:          "web",
		ComponentsX:   4,
		ComponentsY:   3,
		MaxDim:        64,
		Punch:         1,
		PreviewWidth:  32,
		PreviewFormat: "png",
	},
	"detailed": {
		Name:          "detailed",
		ComponentsX:   6,
		ComponentsY:   5,
		MaxDim:        128,
		Punch:         1.1,
		PreviewWidth:  64,
		PreviewFormat: "png",
	},
	"minimal": {
		Name:          "minimal",
		ComponentsX:   3,
		ComponentsY:   2,
		MaxDim:        32,
		Punch:         1,
		PreviewWidth:  16,
		PreviewFormat: "jpeg",
	},
}

var previewFormats = map[string]bool{"png": true, "jpeg": true, "jpg": true, "gif": true, "bmp": true, "tiff": true}

// ErrInvalid reports a profile whose fields are out of range.
var ErrInvalid = errors.New("profile: invalid")

// Set is a collection of profiles keyed by name.
type Set struct {
	profiles map[string]Profile
}

// Builtin returns a Set containing only the built-in profiles.
func Builtin() *Set {
	s := &Set{profiles: make(map[string]Profile, len(builtin))}
	for k, v := range builtin {
		s.profiles[k] = v
	}
	return s
}

// Get returns a profile by name. Falls back to the default profile if
// unknown.
func Get(name string) Profile {
	return Builtin().Get(name)
}

// Get returns a profile by name. Falls back to the default profile if
// unknown, keeping the requested name.
func (s *Set) Get(name string) Profile {
	if name == "" {
		name = DefaultName
	}
	if p, ok := s.profiles[name]; ok {
		return p
	}
	p := s.profiles[DefaultName]
	p.Name = name // preserve requested name
	return p
}

// Lookup is Get without the fallback.
func (s *Set) Lookup(name string) (Profile, bool) {
	p, ok := s.profiles[name]
	return p, ok
}

// Names returns profile names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for k := range s.profiles {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// file is the on-disk YAML layout:
//
//	profiles:
//	  thumb:
//	    base: web
//	    components_x: 5
type file struct {
	Profiles map[string]override `yaml:"profiles"`
}

// override carries only the fields set in YAML. base names the profile to
// start from; without it an existing profile of the same name is used, or
// the default.
type override struct {
	Base          string   `yaml:"base"`
	ComponentsX   *int     `yaml:"components_x"`
	ComponentsY   *int     `yaml:"components_y"`
	MaxDim        *int     `yaml:"max_dim"`
	Punch         *float64 `yaml:"punch"`
	PreviewWidth  *int     `yaml:"preview_width"`
	PreviewFormat *string  `yaml:"preview_format"`
}

// Load reads a YAML profile file and merges it over the built-in profiles.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles %s: %w", path, err)
	}
	s := Builtin()
	if err := s.Merge(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Merge applies YAML profile overrides to s. Nothing is applied if any
// resulting profile is invalid.
func (s *Set) Merge(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing profiles: %w", err)
	}

	names := make([]string, 0, len(f.Profiles))
	for k := range f.Profiles {
		names = append(names, k)
	}
	sort.Strings(names)

	merged := make(map[string]Profile, len(names))
	for _, name := range names {
		o := f.Profiles[name]
		base, ok := s.profiles[name]
		if o.Base != "" {
			if base, ok = merged[o.Base]; !ok {
				if base, ok = s.profiles[o.Base]; !ok {
					return fmt.Errorf("%w: %s: unknown base %q", ErrInvalid, name, o.Base)
				}
			}
		} else if !ok {
			base = s.profiles[DefaultName]
		}
		p := o.apply(base)
		p.Name = name
		if err := p.Validate(); err != nil {
			return err
		}
		merged[name] = p
	}
	for k, v := range merged {
		s.profiles[k] = v
	}
	return nil
}

func (o override) apply(p Profile) Profile {
	if o.ComponentsX != nil {
		p.ComponentsX = *o.ComponentsX
	}
	if o.ComponentsY != nil {
		p.ComponentsY = *o.ComponentsY
	}
	if o.MaxDim != nil {
		p.MaxDim = *o.MaxDim
	}
	if o.Punch != nil {
		p.Punch = *o.Punch
	}
	if o.PreviewWidth != nil {
		p.PreviewWidth = *o.PreviewWidth
	}
	if o.PreviewFormat != nil {
		p.PreviewFormat = strings.ToLower(*o.PreviewFormat)
	}
	return p
}

// Validate checks field ranges.
func (p Profile) Validate() error {
	switch {
	case p.ComponentsX < 1 || p.ComponentsX > 9 || p.ComponentsY < 1 || p.ComponentsY > 9:
		return fmt.Errorf("%w: %s: components %dx%d (each must be 1..9)", ErrInvalid, p.Name, p.ComponentsX, p.ComponentsY)
	case p.MaxDim < 1:
		return fmt.Errorf("%w: %s: max_dim %d", ErrInvalid, p.Name, p.MaxDim)
	case p.Punch < 0:
		return fmt.Errorf("%w: %s: punch %g", ErrInvalid, p.Name, p.Punch)
	case p.PreviewWidth < 1:
		return fmt.Errorf("%w: %s: preview_width %d", ErrInvalid, p.Name, p.PreviewWidth)
	case !previewFormats[p.PreviewFormat]:
		return fmt.Errorf("%w: %s: preview_format %q", ErrInvalid, p.Name, p.PreviewFormat)
	}
	return nil
}

// PreviewSize returns preview dimensions for an original of w×h: the longest
// side becomes PreviewWidth, aspect ratio is kept and nothing is upscaled.
func (p Profile) PreviewSize(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	long := max(w, h)
	if long <= p.PreviewWidth {
		return w, h // don't upscale
	}
	if w >= h {
		return p.PreviewWidth, max(1, (h*p.PreviewWidth+w/2)/w)
	}
	return max(1, (w*p.PreviewWidth+h/2)/h), p.PreviewWidth
}

// Dump renders every profile in the same layout Load accepts.
func (s *Set) Dump() ([]byte, error) {
	out := struct {
		Profiles map[string]Profile `yaml:"profiles"`
	}{Profiles: s.profiles}
	return yaml.Marshal(out)
}
