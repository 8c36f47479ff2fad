// Package roster reads classroom rosters from YAML or JSON files.
//
// Documents are checked against an embedded JSON schema before they are
// decoded, so shape errors point at the offending field; rating and role
// rules are then enforced by profile.New.
package roster

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/okian/teamforge/internal/domain/profile"
)

//go:embed roster.schema.json
var schemaJSON []byte

var schema = gojsonschema.NewBytesLoader(schemaJSON)

// Format is a roster encoding.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// File is the document layout.
type File struct {
	Class        string   `json:"class,omitempty" yaml:"class,omitempty"`
	Participants []Record `json:"participants" yaml:"participants"`
}

// Record is one participant as written in a roster file.
type Record struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name" yaml:"name"`
	Role            string         `json:"role" yaml:"role"`
	Skills          map[string]int `json:"skills" yaml:"skills"`
	PriorGroupmates []string       `json:"prior_groupmates,omitempty" yaml:"prior_groupmates,omitempty"`
}

// Profile converts the record.
func (r Record) Profile() (profile.Profile, error) {
	role, err := profile.ParseRole(r.Role)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("participant %q: %w", r.ID, err)
	}
	skills := make(map[profile.Skill]int, len(r.Skills))
	for name, v := range r.Skills {
		s, err := profile.ParseSkill(name)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("participant %q: %w", r.ID, err)
		}
		skills[s] = v
	}
	return profile.New(r.ID, r.Name, skills, role, profile.WithPriorGroupmates(r.PriorGroupmates...))
}

// FromProfile is the inverse of Record.Profile.
func FromProfile(p profile.Profile) Record {
	skills := make(map[string]int, len(profile.Dimensions()))
	for s, v := range p.Skills() {
		skills[string(s)] = v
	}
	return Record{
		ID:              p.ID(),
		Name:            p.DisplayName(),
		Role:            string(p.Role()),
		Skills:          skills,
		PriorGroupmates: p.PriorGroupmates(),
	}
}

// Build converts records and checks roster-level rules.
func Build(records []Record) ([]profile.Profile, error) {
	out := make([]profile.Profile, 0, len(records))
	for _, r := range records {
		p, err := r.Profile()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := profile.ValidateRoster(out); err != nil {
		return nil, err
	}
	return out, nil
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrFormat)
	}
}

// LoadFile reads a roster by extension.
func LoadFile(path string) ([]profile.Profile, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	out, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Decode reads, checks and converts a roster document.
func Decode(r io.Reader, format Format) ([]profile.Profile, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var doc File
	switch format {
	case JSON:
		if err := check(gojsonschema.NewBytesLoader(raw)); err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case YAML:
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		if err := check(gojsonschema.NewGoLoader(generic)); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrFormat)
	}
	return Build(doc.Participants)
}

// Encode writes profiles as a roster document.
func Encode(w io.Writer, format Format, class string, profiles []profile.Profile) error {
	doc := File{Class: class, Participants: make([]Record, 0, len(profiles))}
	for _, p := range profiles {
		doc.Participants = append(doc.Participants, FromProfile(p))
	}
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%q: %w", format, ErrFormat)
	}
}

func check(doc gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schema, doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, field+": "+desc.Description())
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
}
