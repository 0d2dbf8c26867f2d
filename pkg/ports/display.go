package ports

// PaletteMode selects the colour index space used for cells.
type PaletteMode string

const (
	// PaletteCube is the 6x6x6 colour cube at indices 16..231.
	PaletteCube PaletteMode = "cube"
	// PaletteBase8 is the eight base hues at indices 0..7.
	PaletteBase8 PaletteMode = "base8"
	// PaletteMono is a single default-colour entry at index 0.
	PaletteMono PaletteMode = "mono"
)

// PaletteEntry binds a colour index to the RGB value it represents.
type PaletteEntry struct {
	Index   int
	R, G, B uint8
}

// PaletteMapping is the complete set of colour indices registered with a display.
type PaletteMapping struct {
	Mode    PaletteMode
	Entries []PaletteEntry
}

// Has reports whether index is part of the mapping.
func (m PaletteMapping) Has(index int) bool {
	for _, e := range m.Entries {
		if e.Index == index {
			return true
		}
	}
	return false
}

// Display abstracts a character-cell output device.
type Display interface {
	// Dimensions returns the size of the drawable area in cells.
	Dimensions() (rows, cols int, err error)

	// RegisterPalette declares the colour indices used by SetCell.
	// It must be called exactly once, before the first frame.
	RegisterPalette(m PaletteMapping) error

	// SetCell stores a glyph and colour for one cell of the pending frame.
	SetCell(row, col int, glyph rune, colorIndex int)

	// Flush presents the pending frame.
	Flush() error

	// Close restores the device.
	Close() error
}

// ResizeWatcher is implemented by displays that can detect a size change
// after Dimensions was read.
type ResizeWatcher interface {
	Resized() (rows, cols int, changed bool)
}
