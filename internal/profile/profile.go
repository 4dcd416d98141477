// Package profile reads personal preference profiles: which factors matter
// and what comfortable looks like for each, kept in a YAML file so a run can
// be repeated without retyping flags.
//
//	factors: [Air_Temp, RH, Wind_Speed]
//	preferences:
//	  Air_Temp: {ideal: 72, tolerance: 8}
//	  RH: {low: 0.25, high: 0.45}
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Entry is one variable's preference: either ideal and tolerance, or a
// comfortable low..high range.
type Entry struct {
	Ideal     *float64 `yaml:"ideal,omitempty"`
	Tolerance *float64 `yaml:"tolerance,omitempty"`
	Low       *float64 `yaml:"low,omitempty"`
	High      *float64 `yaml:"high,omitempty"`
}

// IsRange reports whether the entry is given as a range.
func (e Entry) IsRange() bool { return e.Low != nil || e.High != nil }

func (e Entry) validate() error {
	explicit := e.Ideal != nil || e.Tolerance != nil
	switch {
	case explicit && e.IsRange():
		return errors.New("set either ideal/tolerance or low/high, not both")
	case e.IsRange() && (e.Low == nil || e.High == nil):
		return errors.New("a range needs both low and high")
	case explicit && (e.Ideal == nil || e.Tolerance == nil):
		return errors.New("an explicit preference needs both ideal and tolerance")
	case !explicit && !e.IsRange():
		return errors.New("empty preference")
	}
	return nil
}

// Profile is a parsed preference profile.
type Profile struct {
	Factors     []string         `yaml:"factors"`
	Preferences map[string]Entry `yaml:"preferences"`
}

// Target receives a profile. *analyzer.Analyzer satisfies it.
type Target interface {
	SetPreference(name string, ideal, tolerance float64) error
	SetPreferenceRange(name string, low, high float64) error
	AddFactor(names ...string) error
}

// Load reads and validates the profile at path.
func Load(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a profile. Unknown keys are rejected so a typo does not
// silently drop a preference.
func Parse(r io.Reader) (Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	for _, name := range p.names() {
		if err := p.Preferences[name].validate(); err != nil {
			return Profile{}, fmt.Errorf("preference %s: %w", name, err)
		}
	}
	return p, nil
}

func (p Profile) names() []string {
	names := make([]string, 0, len(p.Preferences))
	for name := range p.Preferences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply sets explicit preferences first, then ranges, then selects the
// factors. Single-value ranges widen by the tolerance already in place, so
// ranges must come after explicit values. Apply stops at the first error.
func (p Profile) Apply(t Target) error {
	names := p.names()
	for _, name := range names {
		e := p.Preferences[name]
		if e.IsRange() {
			continue
		}
		if err := t.SetPreference(name, *e.Ideal, *e.Tolerance); err != nil {
			return fmt.Errorf("apply profile: %w", err)
		}
	}
	for _, name := range names {
		e := p.Preferences[name]
		if !e.IsRange() {
			continue
		}
		if err := t.SetPreferenceRange(name, *e.Low, *e.High); err != nil {
			return fmt.Errorf("apply profile: %w", err)
		}
	}
	if len(p.Factors) > 0 {
		if err := t.AddFactor(p.Factors...); err != nil {
			return fmt.Errorf("apply profile: %w", err)
		}
	}
	return nil
}
