package lev

import (
	"github.com/dyuri/fabledec/internal/binary"
	"github.com/dyuri/fabledec/internal/model"
)

const (
	HeightmapCellSize = 24
	SoundmapCellSize  = 11
)

// DecodeHeightmapCell decodes one 24-byte heightmap cell
func DecodeHeightmapCell(view []byte) (model.HeightmapCell, []byte, error) {
	r := binary.NewReader(view)
	c := model.HeightmapCell{
		Size:    r.U32("size"),
		Version: r.U8("version"),
		Height:  r.F32("height"),
	}
	r.Skip("reserved", 4)
	c.GroundTheme = [3]uint8{r.U8("ground theme"), r.U8("ground theme"), r.U8("ground theme")}
	c.GroundThemeStrength = [2]uint8{r.U8("ground theme strength"), r.U8("ground theme strength")}
	c.Walkable = r.Bool("walkable")
	c.Passover = r.Bool("passover")
	c.SoundTheme = r.U8("sound theme")
	r.Skip("reserved", 1)
	c.Shore = r.Bool("shore")
	r.Skip("reserved", 1)
	if err := r.Err(); err != nil {
		return model.HeightmapCell{}, view, err
	}
	return c, r.Rest(), nil
}

// DecodeSoundmapCell decodes one 11-byte soundmap cell
func DecodeSoundmapCell(view []byte) (model.SoundmapCell, []byte, error) {
	r := binary.NewReader(view)
	c := model.SoundmapCell{
		Size:    r.U32("size"),
		Version: r.U8("version"),
	}
	c.SoundTheme = [3]uint8{r.U8("sound theme"), r.U8("sound theme"), r.U8("sound theme")}
	c.SoundThemeStrength = [2]uint8{r.U8("sound theme strength"), r.U8("sound theme strength")}
	c.SoundIndex = r.U8("sound index")
	if err := r.Err(); err != nil {
		return model.SoundmapCell{}, view, err
	}
	return c, r.Rest(), nil
}

// DecodeHeightmap decodes n consecutive heightmap cells
func DecodeHeightmap(view []byte, n uint32) ([]model.HeightmapCell, []byte, error) {
	r := binary.NewReader(view)
	cells := binary.Sequence(r, "heightmap cells", n, DecodeHeightmapCell)
	if err := r.Err(); err != nil {
		return nil, view, err
	}
	return cells, r.Rest(), nil
}

// DecodeSoundmap decodes n consecutive soundmap cells
func DecodeSoundmap(view []byte, n uint32) ([]model.SoundmapCell, []byte, error) {
	r := binary.NewReader(view)
	cells := binary.Sequence(r, "soundmap cells", n, DecodeSoundmapCell)
	if err := r.Err(); err != nil {
		return nil, view, err
	}
	return cells, r.Rest(), nil
}
