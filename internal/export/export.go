// Package export serializes decoded archives, listings and levels as JSON,
// YAML or CBOR.
//
// Navigation graph nodes are written as {kind, node} pairs so the variant
// of each node survives serialization.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/dyuri/fabledec/internal/model"
)

// Format is an output format name
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// Formats lists the supported formats
var Formats = []Format{JSON, YAML, CBOR}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want json, yaml or cbor)", s)
}

// encMode uses Core Deterministic Encoding: the same value always produces
// the same bytes. Node kinds are written as text via MarshalText.
var encMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.TextMarshaler = cbor.TextMarshalerTextString

	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

// Write serializes v to w in the given format. A *model.Level is
// converted so that its graph nodes carry their kind.
func Write(w io.Writer, format Format, v any) error {
	if lvl, ok := v.(*model.Level); ok && lvl != nil {
		v = convertLevel(lvl)
	}

	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	case CBOR:
		if err := encMode.NewEncoder(w).Encode(v); err != nil {
			return fmt.Errorf("encode cbor: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	return nil
}

// level mirrors model.Level with tagged graph nodes
type level struct {
	Header     model.LevelHeader       `json:"header" yaml:"header"`
	Heightmap  []model.HeightmapCell   `json:"heightmap,omitempty" yaml:"heightmap,omitempty"`
	Soundmap   []model.SoundmapCell    `json:"soundmap,omitempty" yaml:"soundmap,omitempty"`
	Navigation *model.NavigationHeader `json:"navigation,omitempty" yaml:"navigation,omitempty"`
	Sections   []section               `json:"sections,omitempty" yaml:"sections,omitempty"`
}

type section struct {
	Size             uint32                  `json:"size" yaml:"size"`
	Version          uint32                  `json:"version" yaml:"version"`
	LevelWidth       uint32                  `json:"levelWidth" yaml:"levelWidth"`
	LevelHeight      uint32                  `json:"levelHeight" yaml:"levelHeight"`
	InteractiveNodes []model.InteractiveNode `json:"interactiveNodes" yaml:"interactiveNodes"`
	SubsetsCount     uint32                  `json:"subsetsCount" yaml:"subsetsCount"`
	GraphNodes       []node                  `json:"graphNodes" yaml:"graphNodes"`
}

type node struct {
	Kind model.NodeKind  `json:"kind" yaml:"kind"`
	Node model.GraphNode `json:"node" yaml:"node"`
}

func convertLevel(l *model.Level) *level {
	out := &level{
		Header:     l.Header,
		Heightmap:  l.Heightmap,
		Soundmap:   l.Soundmap,
		Navigation: l.Navigation,
	}
	for _, s := range l.Sections {
		nodes := make([]node, len(s.GraphNodes))
		for i, n := range s.GraphNodes {
			nodes[i] = node{Kind: n.Kind(), Node: n}
		}
		out.Sections = append(out.Sections, section{
			Size:             s.Size,
			Version:          s.Version,
			LevelWidth:       s.LevelWidth,
			LevelHeight:      s.LevelHeight,
			InteractiveNodes: s.InteractiveNodes,
			SubsetsCount:     s.SubsetsCount,
			GraphNodes:       nodes,
		})
	}
	return out
}
