// Package catalog reads tree definition files and imports them into the
// store.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/skilltree/internal/skillgraph"
)

// ErrUnknownFormat is returned for files that are neither YAML nor TOML.
var ErrUnknownFormat = errors.New("unknown definition format")

// Definition is an authored tree: its metadata, the skills it uses, the
// nodes placing those skills and the prerequisite edges between nodes.
type Definition struct {
	Tree   TreeInfo   `yaml:"tree" toml:"tree"`
	Skills []SkillDef `yaml:"skills" toml:"skills"`
	Nodes  []NodeDef  `yaml:"nodes" toml:"nodes"`
	Edges  []EdgeDef  `yaml:"edges" toml:"edges"`
}

type TreeInfo struct {
	Title         string `yaml:"title" toml:"title"`
	Description   string `yaml:"description" toml:"description"`
	IntroVideoURL string `yaml:"intro_video_url" toml:"intro_video_url"`
	IsFree        bool   `yaml:"is_free" toml:"is_free"`
}

type SkillDef struct {
	Title    string `yaml:"title" toml:"title"`
	VideoURL string `yaml:"video_url" toml:"video_url"`
	Text     string `yaml:"text" toml:"text"`
	Duration int    `yaml:"duration" toml:"duration"`
}

// NodeDef places a skill in the tree. The same skill may back several nodes.
type NodeDef struct {
	Key   string `yaml:"key" toml:"key"`
	Skill string `yaml:"skill" toml:"skill"`
}

// EdgeDef declares that From must be learned before To.
type EdgeDef struct {
	From     string `yaml:"from" toml:"from"`
	To       string `yaml:"to" toml:"to"`
	Priority int    `yaml:"priority" toml:"priority"`
	Optional bool   `yaml:"optional" toml:"optional"`
}

// Format is a definition file encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Parse reads a definition file.
func Parse(path string) (*Definition, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition: %w", err)
	}
	def, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Decode parses definition bytes. Unknown fields are rejected.
func Decode(data []byte, format Format) (*Definition, error) {
	var def Definition
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case TOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return &def, nil
}

// Encode writes def in the given format.
func Encode(def *Definition, format Format) ([]byte, error) {
	switch format {
	case YAML:
		return yaml.Marshal(def)
	case TOML:
		return toml.Marshal(def)
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
}

// Check reports reference problems: missing titles, duplicate or empty
// keys, nodes naming undefined skills and edges naming undefined nodes.
func (d *Definition) Check() error {
	var errs []error
	if strings.TrimSpace(d.Tree.Title) == "" {
		errs = append(errs, errors.New("tree title is required"))
	}

	skills := make(map[string]bool, len(d.Skills))
	for i, s := range d.Skills {
		switch {
		case s.Title == "":
			errs = append(errs, fmt.Errorf("skill #%d has no title", i+1))
		case skills[s.Title]:
			errs = append(errs, fmt.Errorf("skill %q defined twice", s.Title))
		case s.Duration < 0:
			errs = append(errs, fmt.Errorf("skill %q: duration must be >= 0", s.Title))
		}
		skills[s.Title] = true
	}

	keys := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		switch {
		case n.Key == "":
			errs = append(errs, fmt.Errorf("node #%d has no key", i+1))
		case keys[n.Key]:
			errs = append(errs, fmt.Errorf("node key %q used twice", n.Key))
		case !skills[n.Skill]:
			errs = append(errs, fmt.Errorf("node %q: unknown skill %q", n.Key, n.Skill))
		}
		keys[n.Key] = true
	}

	for _, e := range d.Edges {
		if !keys[e.From] {
			errs = append(errs, fmt.Errorf("edge %s -> %s: unknown node %q", e.From, e.To, e.From))
		}
		if !keys[e.To] {
			errs = append(errs, fmt.Errorf("edge %s -> %s: unknown node %q", e.From, e.To, e.To))
		}
	}
	return errors.Join(errs...)
}

// Graph builds a provisional graph with IDs assigned in file order so that
// the structure can be validated and sequenced before anything is stored.
// Node IDs are 1-based node positions; skill IDs are 1-based skill positions.
func (d *Definition) Graph() (*skillgraph.Graph, error) {
	if err := d.Check(); err != nil {
		return nil, err
	}
	skillIDs := make(map[string]int, len(d.Skills))
	for i, s := range d.Skills {
		skillIDs[s.Title] = i + 1
	}
	nodeIDs := make(map[string]int, len(d.Nodes))
	nodes := make([]skillgraph.Node, len(d.Nodes))
	for i, n := range d.Nodes {
		nodeIDs[n.Key] = i + 1
		nodes[i] = skillgraph.Node{ID: i + 1, SkillID: skillIDs[n.Skill], Title: n.Skill}
	}
	edges := make([]skillgraph.Edge, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = skillgraph.Edge{
			ID:       i + 1,
			From:     nodeIDs[e.From],
			To:       nodeIDs[e.To],
			Priority: e.Priority,
			Optional: e.Optional,
		}
	}
	return skillgraph.New(nodes, edges), nil
}

// Validate checks references and tree structure.
func (d *Definition) Validate() error {
	g, err := d.Graph()
	if err != nil {
		return err
	}
	return g.Validate()
}
