package export

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/dyuri/fabledec/internal/model"
)

func testLevel() *model.Level {
	return &model.Level{
		Header: model.LevelHeader{Width: 4, Height: 4, SoundThemes: []string{"forest"}},
		Sections: []model.NavigationSection{{
			Version: 1,
			GraphNodes: []model.GraphNode{
				&model.RegularNode{NodeHeader: model.NodeHeader{NodeID: 1}, Children: model.ChildNodes{TopLeft: 2}},
				&model.BlankNode{Root: 1},
			},
		}},
	}
}

// TestParseFormat tests format name validation
func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %q, %v", f, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) succeeded")
	}
}

// TestWriteJSON tests that graph nodes are tagged with their kind
func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, JSON, testLevel()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var out struct {
		Sections []struct {
			GraphNodes []struct {
				Kind string          `json:"kind"`
				Node json.RawMessage `json:"node"`
			} `json:"graphNodes"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal failed: %v\n%s", err, buf.String())
	}

	nodes := out.Sections[0].GraphNodes
	if len(nodes) != 2 {
		t.Fatalf("len(graphNodes) = %d, want 2", len(nodes))
	}
	if nodes[0].Kind != "regular" || nodes[1].Kind != "blank" {
		t.Errorf("kinds = %q, %q, want regular, blank", nodes[0].Kind, nodes[1].Kind)
	}
	if !strings.Contains(string(nodes[0].Node), `"topLeft":2`) {
		t.Errorf("regular node = %s, want topLeft 2", nodes[0].Node)
	}
}

// TestWriteYAML tests YAML output of a level and an archive
func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, YAML, testLevel()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var out map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal failed: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "kind: regular") {
		t.Errorf("output missing node kind:\n%s", buf.String())
	}

	buf.Reset()
	a := &model.Archive{Banks: []model.Bank{{BankIndexEntry: model.BankIndexEntry{Name: "textures"}}}}
	if err := Write(&buf, YAML, a); err != nil {
		t.Fatalf("Write archive failed: %v", err)
	}
	// Bank entry fields are inlined
	if !strings.Contains(buf.String(), "- name: textures") {
		t.Errorf("archive output missing inline bank name:\n%s", buf.String())
	}
}

// TestWriteCBOR tests deterministic CBOR output
func TestWriteCBOR(t *testing.T) {
	var first, second bytes.Buffer
	if err := Write(&first, CBOR, testLevel()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := Write(&second, CBOR, testLevel()); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("CBOR output differs between runs")
	}

	dec, err := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]any(nil))}.DecMode()
	if err != nil {
		t.Fatalf("DecMode failed: %v", err)
	}
	var out map[string]any
	if err := dec.Unmarshal(first.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	sections := out["sections"].([]any)
	nodes := sections[0].(map[string]any)["graphNodes"].([]any)
	if kind := nodes[1].(map[string]any)["kind"]; kind != "blank" {
		t.Errorf("second node kind = %v, want blank", kind)
	}
}

// TestWriteUnknownFormat tests rejection of unsupported formats
func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Format("xml"), testLevel()); err == nil {
		t.Error("Write with format xml succeeded")
	}
}
