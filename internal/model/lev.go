package model

// Level is a decoded LEV file. Heightmap and Soundmap are only present when
// the cell grids were requested; Navigation is nil when the level has no
// navigation data.
type Level struct {
	Header     LevelHeader         `json:"header" yaml:"header"`
	Heightmap  []HeightmapCell     `json:"heightmap,omitempty" yaml:"heightmap,omitempty"`
	Soundmap   []SoundmapCell      `json:"soundmap,omitempty" yaml:"soundmap,omitempty"`
	Navigation *NavigationHeader   `json:"navigation,omitempty" yaml:"navigation,omitempty"`
	Sections   []NavigationSection `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// LevelHeader is the LEV file header. The heightmap and sound palettes are
// consumed during decoding but not retained.
type LevelHeader struct {
	HeaderSize          uint32   `json:"headerSize" yaml:"headerSize"`
	Version             uint16   `json:"version" yaml:"version"`
	ObsoleteOffset      uint32   `json:"obsoleteOffset" yaml:"obsoleteOffset"`
	NavigationOffset    uint32   `json:"navigationOffset" yaml:"navigationOffset"` // Absolute offset of the navigation header
	UniqueIDCount       uint64   `json:"uniqueIdCount" yaml:"uniqueIdCount"`
	Width               uint32   `json:"width" yaml:"width"`
	Height              uint32   `json:"height" yaml:"height"`
	MapVersion          uint32   `json:"mapVersion" yaml:"mapVersion"`
	AmbientSoundVersion uint32   `json:"ambientSoundVersion" yaml:"ambientSoundVersion"`
	Checksum            uint32   `json:"checksum" yaml:"checksum"`
	SoundThemes         []string `json:"soundThemes" yaml:"soundThemes"`
}

// HeightmapCell is one vertex of the terrain grid
type HeightmapCell struct {
	Size                uint32   `json:"size" yaml:"size"`
	Version             uint8    `json:"version" yaml:"version"`
	Height              float32  `json:"height" yaml:"height"`
	GroundTheme         [3]uint8 `json:"groundTheme" yaml:"groundTheme"`
	GroundThemeStrength [2]uint8 `json:"groundThemeStrength" yaml:"groundThemeStrength"`
	Walkable            bool     `json:"walkable" yaml:"walkable"`
	Passover            bool     `json:"passover" yaml:"passover"`
	SoundTheme          uint8    `json:"soundTheme" yaml:"soundTheme"`
	Shore               bool     `json:"shore" yaml:"shore"`
}

// SoundmapCell is one cell of the ambient sound grid
type SoundmapCell struct {
	Size               uint32   `json:"size" yaml:"size"`
	Version            uint8    `json:"version" yaml:"version"`
	SoundTheme         [3]uint8 `json:"soundTheme" yaml:"soundTheme"`
	SoundThemeStrength [2]uint8 `json:"soundThemeStrength" yaml:"soundThemeStrength"`
	SoundIndex         uint8    `json:"soundIndex" yaml:"soundIndex"`
}

// NavigationHeader lists the navigation sections of a level
type NavigationHeader struct {
	SectionsStart uint32       `json:"sectionsStart" yaml:"sectionsStart"`
	SectionsCount uint32       `json:"sectionsCount" yaml:"sectionsCount"`
	Sections      []SectionRef `json:"sections" yaml:"sections"`
}

// SectionRef names a navigation section and where it starts.
// Name is kept as raw bytes; it is not validated as text.
type SectionRef struct {
	Name        []byte `json:"name" yaml:"name"`
	StartOffset uint32 `json:"startOffset" yaml:"startOffset"`
}

// NavigationSection is the walkability graph of one section.
//
// A subset has 7 layers (0-6), each defining blocks of walkable area:
// layer 0 is 32x32, layer 1 16x16, down to layer 6 at 0.5x0.5.
type NavigationSection struct {
	Size             uint32            `json:"size" yaml:"size"`
	Version          uint32            `json:"version" yaml:"version"`
	LevelWidth       uint32            `json:"levelWidth" yaml:"levelWidth"`
	LevelHeight      uint32            `json:"levelHeight" yaml:"levelHeight"`
	InteractiveNodes []InteractiveNode `json:"interactiveNodes" yaml:"interactiveNodes"`
	SubsetsCount     uint32            `json:"subsetsCount" yaml:"subsetsCount"`
	GraphNodes       []GraphNode       `json:"graphNodes" yaml:"graphNodes"`
}

// InteractiveNode marks an interactive point of the grid
type InteractiveNode struct {
	X      uint32 `json:"x" yaml:"x"`
	Y      uint32 `json:"y" yaml:"y"`
	Subset uint32 `json:"subset" yaml:"subset"`
}

// NodeKind identifies a navigation graph node variant
type NodeKind int

const (
	RegularKind NodeKind = iota + 1
	NavigationKind
	ExitKind
	BlankKind
)

func (k NodeKind) String() string {
	switch k {
	case RegularKind:
		return "regular"
	case NavigationKind:
		return "navigation"
	case ExitKind:
		return "exit"
	case BlankKind:
		return "blank"
	}
	return "unknown"
}

// MarshalText encodes the kind by name
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// GraphNode is a navigation graph node. The set of variants is closed:
// *RegularNode, *NavigationNode, *ExitNode and *BlankNode.
type GraphNode interface {
	Kind() NodeKind
	graphNode()
}

// NodeHeader holds the fields shared by regular, navigation and exit nodes
type NodeHeader struct {
	Root   uint8   `json:"root" yaml:"root"`
	End    uint8   `json:"end" yaml:"end"`
	Layer  uint8   `json:"layer" yaml:"layer"`
	Subset uint8   `json:"subset" yaml:"subset"`
	X      float32 `json:"x" yaml:"x"`
	Y      float32 `json:"y" yaml:"y"`
	NodeID uint32  `json:"nodeId" yaml:"nodeId"`
}

// ChildNodes are the ids of a regular node's four quadrants
type ChildNodes struct {
	TopRight    uint32 `json:"topRight" yaml:"topRight"`
	TopLeft     uint32 `json:"topLeft" yaml:"topLeft"`
	BottomRight uint32 `json:"bottomRight" yaml:"bottomRight"`
	BottomLeft  uint32 `json:"bottomLeft" yaml:"bottomLeft"`
}

// RegularNode subdivides a block into four children
type RegularNode struct {
	NodeHeader `yaml:",inline"`
	Children   ChildNodes `json:"children" yaml:"children"`
}

// NavigationNode is a walkable node linked to its neighbours
type NavigationNode struct {
	NodeHeader `yaml:",inline"`
	NodeLevel  uint32   `json:"nodeLevel" yaml:"nodeLevel"` // Some sort of z level
	Neighbors  []uint32 `json:"neighbors" yaml:"neighbors"`
}

// ExitNode is a navigation node that leads out of the level. UniqueIDs are
// stored stripped; see RealUniqueID.
type ExitNode struct {
	NodeHeader `yaml:",inline"`
	NodeLevel  uint32   `json:"nodeLevel" yaml:"nodeLevel"`
	Neighbors  []uint32 `json:"neighbors" yaml:"neighbors"`
	UniqueIDs  []uint64 `json:"uniqueIds" yaml:"uniqueIds"`
}

// BlankNode is an empty placeholder node
type BlankNode struct {
	Root uint8 `json:"root" yaml:"root"`
}

func (*RegularNode) Kind() NodeKind    { return RegularKind }
func (*NavigationNode) Kind() NodeKind { return NavigationKind }
func (*ExitNode) Kind() NodeKind       { return ExitKind }
func (*BlankNode) Kind() NodeKind      { return BlankKind }

func (*RegularNode) graphNode()    {}
func (*NavigationNode) graphNode() {}
func (*ExitNode) graphNode()       {}
func (*BlankNode) graphNode()      {}

// UniqueIDBase is added to a stripped exit-node unique id to obtain the
// real 64-bit id.
const UniqueIDBase uint64 = 0xFFFFFE0000000000

// RealUniqueID reconstructs a real unique id from its stripped form
func RealUniqueID(stripped uint64) uint64 {
	return stripped + UniqueIDBase
}
