// Package scenario loads YAML workload descriptions and runs them against
// the rtl containers.
//
// A scenario has up to four sections, one per container:
//
//	name: roundtrip
//	seed: 7
//	hash:
//	  shift: 2
//	  insert: {from: 1, to: 1000}
//	  remove: {from: 2, to: 1000, step: 2}
//	  lookup: {from: 1, to: 1000}
//	  enumerate: weak
//
// Run executes every present section and returns a Report.
package scenario

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// MaxRangeLen bounds the number of values a Range may expand to.
const MaxRangeLen = 1 << 20

// Range is an inclusive integer range with a positive step.
type Range struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
	Step int `yaml:"step,omitempty"`
}

// Values expands the range. A zero step means 1.
func (r *Range) Values() []int {
	if r == nil {
		return nil
	}
	step := r.Step
	if step == 0 {
		step = 1
	}
	var out []int
	for v := r.From; v <= r.To; v += step {
		out = append(out, v)
		if uint64(r.To)-uint64(v) < uint64(step) {
			break
		}
	}
	return out
}

// span returns how many values the range expands to, saturating at
// MaxRangeLen+1. From <= To and Step >= 0 must hold.
func (r *Range) span() uint64 {
	step := uint64(r.Step)
	if step == 0 {
		step = 1
	}
	n := (uint64(r.To) - uint64(r.From)) / step
	return min(n, MaxRangeLen) + 1
}

func (r *Range) validate(field string) error {
	if r == nil {
		return nil
	}
	if r.Step < 0 {
		return fmt.Errorf("%w: %s: negative step %d", ErrInvalid, field, r.Step)
	}
	if r.From > r.To {
		return fmt.Errorf("%w: %s: from %d > to %d", ErrInvalid, field, r.From, r.To)
	}
	if r.span() > MaxRangeLen {
		return fmt.Errorf("%w: %s: more than %d values", ErrInvalid, field, MaxRangeLen)
	}
	return nil
}

// Table kinds.
const (
	KindAVL   = "avl"
	KindSplay = "splay"
)

// TableSection drives an ordered table.
type TableSection struct {
	Kind    string `yaml:"kind"`
	Insert  *Range `yaml:"insert"`
	Delete  *Range `yaml:"delete"`
	Nth     []int  `yaml:"nth"`
	Shuffle bool   `yaml:"shuffle"`
}

// Enumeration kinds.
const (
	EnumWeak        = "weak"
	EnumStrong      = "strong"
	EnumDestructive = "destructive"
)

// Signature functions.
const (
	SigIdentity = "identity"
	SigFNV      = "fnv"
	SigX65599   = "x65599"
)

// HashSection drives a dynamic hash table.
type HashSection struct {
	Shift     uint   `yaml:"shift"`
	Signature string `yaml:"signature"`
	Insert    *Range `yaml:"insert"`
	Remove    *Range `yaml:"remove"`
	Lookup    *Range `yaml:"lookup"`
	Enumerate string `yaml:"enumerate"`
	NoExpand  bool   `yaml:"no_expand"`
	NoShrink  bool   `yaml:"no_contract"`
}

// BitmapSection drives a bit vector.
type BitmapSection struct {
	Size    int   `yaml:"size"`
	Word    int   `yaml:"word"`
	Mapped  bool  `yaml:"mapped"`
	Claims  []int `yaml:"claims"`
	Release []int `yaml:"release"` // indices into Claims
}

// Query is one longest-prefix lookup.
type Query struct {
	Name            string `yaml:"name"`
	CaseInsensitive bool   `yaml:"case_insensitive"`
}

// PrefixSection drives a prefix table.
type PrefixSection struct {
	Prefixes []string `yaml:"prefixes"`
	Remove   []string `yaml:"remove"`
	Queries  []Query  `yaml:"queries"`
}

// Scenario is a parsed workload file.
type Scenario struct {
	Name   string         `yaml:"name"`
	Seed   uint64         `yaml:"seed"`
	Table  *TableSection  `yaml:"table"`
	Hash   *HashSection   `yaml:"hash"`
	Bitmap *BitmapSection `yaml:"bitmap"`
	Prefix *PrefixSection `yaml:"prefix"`
}

// Load reads and parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario and fills in defaults.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Marshal encodes the scenario as YAML.
func (s *Scenario) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}

func (s *Scenario) applyDefaults() {
	if s.Table != nil && s.Table.Kind == "" {
		s.Table.Kind = KindAVL
	}
	if s.Hash != nil {
		if s.Hash.Signature == "" {
			s.Hash.Signature = SigIdentity
		}
	}
	if s.Bitmap != nil && s.Bitmap.Word == 0 {
		s.Bitmap.Word = 64
	}
}

// Validate reports the first problem with the scenario.
func (s *Scenario) Validate() error {
	if s.Table == nil && s.Hash == nil && s.Bitmap == nil && s.Prefix == nil {
		return ErrEmpty
	}
	if t := s.Table; t != nil {
		if !slices.Contains([]string{KindAVL, KindSplay}, t.Kind) {
			return fmt.Errorf("%w: table.kind %q", ErrInvalid, t.Kind)
		}
		if err := t.Insert.validate("table.insert"); err != nil {
			return err
		}
		if err := t.Delete.validate("table.delete"); err != nil {
			return err
		}
	}
	if h := s.Hash; h != nil {
		if !slices.Contains([]string{SigIdentity, SigFNV, SigX65599}, h.Signature) {
			return fmt.Errorf("%w: hash.signature %q", ErrInvalid, h.Signature)
		}
		if h.Enumerate != "" && !slices.Contains([]string{EnumWeak, EnumStrong, EnumDestructive}, h.Enumerate) {
			return fmt.Errorf("%w: hash.enumerate %q", ErrInvalid, h.Enumerate)
		}
		ranges := []struct {
			field string
			r     *Range
		}{
			{"hash.insert", h.Insert},
			{"hash.remove", h.Remove},
			{"hash.lookup", h.Lookup},
		}
		for _, fr := range ranges {
			if err := fr.r.validate(fr.field); err != nil {
				return err
			}
		}
	}
	if b := s.Bitmap; b != nil {
		if b.Size <= 0 {
			return fmt.Errorf("%w: bitmap.size %d", ErrInvalid, b.Size)
		}
		if b.Word != 32 && b.Word != 64 {
			return fmt.Errorf("%w: bitmap.word %d (want 32 or 64)", ErrInvalid, b.Word)
		}
		for _, i := range b.Release {
			if i < 0 || i >= len(b.Claims) {
				return fmt.Errorf("%w: bitmap.release index %d", ErrInvalid, i)
			}
		}
	}
	return nil
}
