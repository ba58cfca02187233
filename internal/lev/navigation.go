package lev

import (
	"bytes"

	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

// DecodeNavigationHeader decodes the navigation header: the section count
// followed by (name, start offset) pairs. Names are raw bytes.
func DecodeNavigationHeader(view []byte) (model.NavigationHeader, []byte, error) {
	r := binary.NewReader(view)
	h := model.NavigationHeader{
		SectionsStart: r.U32("sections start"),
		SectionsCount: r.U32("sections count"),
	}
	h.Sections = binary.Sequence(r, "sections", h.SectionsCount, decodeSectionRef)
	if err := r.Err(); err != nil {
		return model.NavigationHeader{}, view, err
	}
	return h, r.Rest(), nil
}

func decodeSectionRef(view []byte) (model.SectionRef, []byte, error) {
	r := binary.NewReader(view)
	s := model.SectionRef{
		Name:        r.LengthPrefixed("name"),
		StartOffset: r.U32("start offset"),
	}
	if err := r.Err(); err != nil {
		return model.SectionRef{}, view, err
	}
	return s, r.Rest(), nil
}

// DecodeNavigationSection decodes one navigation section and its graph
func DecodeNavigationSection(view []byte) (model.NavigationSection, []byte, error) {
	r := binary.NewReader(view)
	s := model.NavigationSection{
		Size:        r.U32("size"),
		Version:     r.U32("version"),
		LevelWidth:  r.U32("level width"),
		LevelHeight: r.U32("level height"),
	}
	r.Skip("reserved", 4) // Number of levels

	interactiveCount := r.U32("interactive nodes count")
	s.InteractiveNodes = binary.Sequence(r, "interactive nodes", interactiveCount, decodeInteractiveNode)
	s.SubsetsCount = r.U32("subsets count")

	nodeCount := r.U32("graph nodes count")
	s.GraphNodes = binary.Sequence(r, "graph nodes", nodeCount, DecodeGraphNode)

	if err := r.Err(); err != nil {
		return model.NavigationSection{}, view, err
	}
	return s, r.Rest(), nil
}

func decodeInteractiveNode(view []byte) (model.InteractiveNode, []byte, error) {
	r := binary.NewReader(view)
	n := model.InteractiveNode{
		X:      r.U32("x"),
		Y:      r.U32("y"),
		Subset: r.U32("subset"),
	}
	if err := r.Err(); err != nil {
		return model.InteractiveNode{}, view, err
	}
	return n, r.Rest(), nil
}

// nodeVariant pairs a literal record prefix with the decoder for the rest
// of the record.
type nodeVariant struct {
	kind   model.NodeKind
	prefix []byte
	decode func(r *binary.Reader) model.GraphNode
}

// nodeVariants is tried in order. The prefixes are not a proven-exclusive
// discriminant, so the order decides which variant wins on ambiguous input.
var nodeVariants = []nodeVariant{
	{model.RegularKind, []byte{0, 0, 0, 0, 0, 1, 0, 0}, decodeRegularNode},
	{model.NavigationKind, []byte{0, 0, 0, 1, 0, 1, 0, 1}, decodeNavigationNode},
	{model.ExitKind, []byte{1, 0, 0, 1, 1, 0, 1, 1}, decodeExitNode},
	{model.BlankKind, []byte{0, 1, 1}, decodeBlankNode},
}

// maxVariantPrefix bounds the bytes reported for an unknown variant
const maxVariantPrefix = 8

// DecodeGraphNode decodes one navigation graph node.
//
// The first variant whose prefix matches commits; a later field failure is
// returned as is and no other variant is tried. When no prefix matches the
// result is an UnknownNodeVariant error carrying the offending bytes.
func DecodeGraphNode(view []byte) (model.GraphNode, []byte, error) {
	for _, v := range nodeVariants {
		if !bytes.HasPrefix(view, v.prefix) {
			continue
		}
		r := binary.NewReader(view)
		r.Tag(v.kind.String()+" node tag", v.prefix)
		node := v.decode(r)
		if err := r.Err(); err != nil {
			return nil, view, err
		}
		return node, r.Rest(), nil
	}
	return nil, view, unmatchedNode(view)
}

func unmatchedNode(view []byte) error {
	for _, v := range nodeVariants {
		// A short view that could still grow into this variant's tag
		if len(view) < len(v.prefix) && bytes.HasPrefix(v.prefix, view) {
			return &binary.Error{
				Kind:    binary.InsufficientInput,
				Field:   "node tag",
				Message: "input ends inside a " + v.kind.String() + " node tag",
			}
		}
	}
	return &binary.Error{
		Kind:  binary.UnknownNodeVariant,
		Field: "node tag",
		Got:   bytes.Clone(view[:min(len(view), maxVariantPrefix)]),
	}
}

func decodeNodeHeader(r *binary.Reader) model.NodeHeader {
	var h model.NodeHeader
	r.Skip("reserved", 1)
	h.Root = r.U8("root")
	r.Skip("reserved", 1)
	h.End = r.U8("end")
	h.Layer = r.U8("layer")
	h.Subset = r.U8("subset")
	h.X = r.F32("x")
	h.Y = r.F32("y")
	h.NodeID = r.U32("node id")
	return h
}

func decodeRegularNode(r *binary.Reader) model.GraphNode {
	n := &model.RegularNode{NodeHeader: decodeNodeHeader(r)}
	n.Children = model.ChildNodes{
		TopRight:    r.U32("top right child"),
		TopLeft:     r.U32("top left child"),
		BottomRight: r.U32("bottom right child"),
		BottomLeft:  r.U32("bottom left child"),
	}
	return n
}

func decodeNavigationNode(r *binary.Reader) model.GraphNode {
	n := &model.NavigationNode{NodeHeader: decodeNodeHeader(r)}
	n.NodeLevel = r.U32("node level")
	r.Skip("reserved", 1) // Subset 0 = 0 or 128, subset 1+ = 64
	n.Neighbors = r.U32s("neighbors", r.U32("neighbors count"))
	return n
}

func decodeExitNode(r *binary.Reader) model.GraphNode {
	n := &model.ExitNode{NodeHeader: decodeNodeHeader(r)}
	n.NodeLevel = r.U32("node level")
	r.Skip("reserved", 1)
	n.Neighbors = r.U32s("neighbors", r.U32("neighbors count"))
	n.UniqueIDs = r.U64s("unique ids", r.U32("unique ids count"))
	return n
}

func decodeBlankNode(r *binary.Reader) model.GraphNode {
	n := &model.BlankNode{}
	r.Skip("reserved", 1)
	n.Root = r.U8("root")
	r.Skip("reserved", 1)
	return n
}
