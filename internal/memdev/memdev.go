// Package memdev implements the fixed memory primitives NES components are
// built from: plain RAM, address-mirrored RAM, read-only ROM, and the
// PPU's palette RAM with its universal-background mirroring rule.
package memdev

// Device is the minimal contract the bus fabric dispatches to.
type Device interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// RAM is a fixed-size byte array addressable by index.
type RAM struct {
	data []uint8
}

// NewRAM allocates an n-byte RAM bank.
func NewRAM(n int) *RAM {
	return &RAM{data: make([]uint8, n)}
}

func (r *RAM) Read(addr uint16) uint8 {
	return r.data[int(addr)%len(r.data)]
}

func (r *RAM) Write(addr uint16, value uint8) {
	r.data[int(addr)%len(r.data)] = value
}

// Len reports the backing size in bytes.
func (r *RAM) Len() int { return len(r.data) }

// MirroredRAM behaves as an n-byte RAM bank but claims a larger `window`
// byte address range; effective index is addr mod n, so
// read(a) == read(a+n) for any in-range a.
type MirroredRAM struct {
	ram    *RAM
	window int
}

// NewMirroredRAM creates an n-byte backing store exposed across `window`
// bytes of address space.
func NewMirroredRAM(n, window int) *MirroredRAM {
	return &MirroredRAM{ram: NewRAM(n), window: window}
}

func (m *MirroredRAM) Read(addr uint16) uint8 {
	return m.ram.Read(addr)
}

func (m *MirroredRAM) Write(addr uint16, value uint8) {
	m.ram.Write(addr, value)
}

// Window reports the exposed address-space size.
func (m *MirroredRAM) Window() int { return m.window }

// ROM is a read-only byte array; writes are silently ignored.
type ROM struct {
	data []uint8
}

// NewROM wraps an existing byte slice as read-only memory. The slice is not
// copied.
func NewROM(data []uint8) *ROM {
	return &ROM{data: data}
}

func (r *ROM) Read(addr uint16) uint8 {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[int(addr)%len(r.data)]
}

func (r *ROM) Write(addr uint16, value uint8) {
	// Writes to ROM are ignored.
}

// Len reports the backing size in bytes.
func (r *ROM) Len() int { return len(r.data) }

// PaletteRAM is the PPU's 32-byte palette memory. Reads mask off bits 7-6
// (palette entries are 6-bit) and the four universal-background mirror
// addresses ($10, $14, $18, $1C) alias their base entries ($00, $04, $08,
// $0C) on both read and write.
type PaletteRAM struct {
	data [32]uint8
}

// NewPaletteRAM creates palette RAM with every fourth entry ($00, $04, ...,
// $1C) set to $0F (black) and the rest zero, matching the NES power-up state.
func NewPaletteRAM() *PaletteRAM {
	p := &PaletteRAM{}
	for i := 0; i < 32; i += 4 {
		p.data[i] = 0x0F
	}
	return p
}

func (p *PaletteRAM) index(addr uint16) int {
	idx := int(addr) & 0x1F
	if idx&0x13 == 0x10 {
		// $10, $14, $18, $1C alias $00, $04, $08, $0C.
		idx &= 0x0F
	}
	return idx
}

func (p *PaletteRAM) Read(addr uint16) uint8 {
	return p.data[p.index(addr)] & 0x3F
}

func (p *PaletteRAM) Write(addr uint16, value uint8) {
	p.data[p.index(addr)] = value & 0x3F
}

// Raw returns a copy of the 32 raw (unmirrored-index) entries. The PPU
// itself reads palette entries through its bus, not through Raw.
func (p *PaletteRAM) Raw() [32]uint8 {
	return p.data
}

// MirrorMode selects how Nametable folds its four logical 1KB nametables
// down onto physical VRAM. Values match cartridge.MirrorMode; duplicated
// here rather than imported so this leaf package stays dependency-free.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// Nametable is the PPU's 2KB (or 4KB for four-screen carts) nametable VRAM,
// exposed across the $2000-$2FFF window with the cartridge's mirroring
// mode folding the four logical nametables onto physical banks.
type Nametable struct {
	vram    []uint8
	mirror  MirrorMode
}

// NewNametable allocates VRAM sized for mirror (2KB for horizontal/
// vertical/single-screen carts, 4KB for four-screen carts with on-board
// extra RAM).
func NewNametable(mirror MirrorMode) *Nametable {
	size := 0x800
	if mirror == MirrorFourScreen {
		size = 0x1000
	}
	return &Nametable{vram: make([]uint8, size), mirror: mirror}
}

func (n *Nametable) index(addr uint16) uint16 {
	addr &= 0x0FFF
	table := (addr >> 10) & 0x03
	offset := addr & 0x03FF

	switch n.mirror {
	case MirrorHorizontal:
		if table >= 2 {
			return 0x400 + offset
		}
		return offset
	case MirrorVertical:
		if table == 1 || table == 3 {
			return 0x400 + offset
		}
		return offset
	case MirrorSingleScreen0:
		return offset
	case MirrorSingleScreen1:
		return 0x400 + offset
	case MirrorFourScreen:
		return table*0x400 + offset
	default:
		return offset
	}
}

func (n *Nametable) Read(addr uint16) uint8 {
	return n.vram[n.index(addr)]
}

func (n *Nametable) Write(addr uint16, value uint8) {
	n.vram[n.index(addr)] = value
}
