package ppu

// bgPipeline holds the background rendering shift registers. Pattern and
// attribute bits for the tile two positions ahead of the current pixel are
// loaded into the low byte of each 16-bit register every 8 dots, then
// shifted left once per dot so bit 15 (adjusted by fine X) is always the
// bit about to be drawn.
type bgPipeline struct {
	patternLo, patternHi uint16
	attrLo, attrHi       uint16

	nextTileID    uint8
	nextAttr      uint8
	nextPatternLo uint8
	nextPatternHi uint8
}

func (bg *bgPipeline) shift() {
	bg.patternLo <<= 1
	bg.patternHi <<= 1
	bg.attrLo <<= 1
	bg.attrHi <<= 1
}

func (bg *bgPipeline) reload() {
	bg.patternLo = (bg.patternLo & 0xFF00) | uint16(bg.nextPatternLo)
	bg.patternHi = (bg.patternHi & 0xFF00) | uint16(bg.nextPatternHi)
	var lo, hi uint16
	if bg.nextAttr&0x01 != 0 {
		lo = 0xFF
	}
	if bg.nextAttr&0x02 != 0 {
		hi = 0xFF
	}
	bg.attrLo = (bg.attrLo & 0xFF00) | lo
	bg.attrHi = (bg.attrHi & 0xFF00) | hi
}

// backgroundFetchCycle runs the nametable/attribute/pattern fetch sequence
// and scroll-register updates for one dot of a rendered scanline. Called
// only while rendering is enabled.
func (p *PPU) backgroundFetchCycle() {
	inFetchWindow := (p.dot >= 1 && p.dot <= 256) || (p.dot >= 321 && p.dot <= 336)

	if inFetchWindow {
		p.bg.shift()

		switch p.dot % 8 {
		case 1:
			p.bg.reload()
			p.bg.nextTileID = p.bus.Read(0x2000 | (p.v.raw() & 0x0FFF))
		case 3:
			p.bg.nextAttr = p.fetchAttribute()
		case 5:
			p.bg.nextPatternLo = p.fetchPattern(0)
		case 7:
			p.bg.nextPatternHi = p.fetchPattern(8)
		case 0:
			p.v.incCoarseX()
		}
	}

	if p.dot == 256 {
		p.v.incFineY()
	}
}

func (p *PPU) fetchAttribute() uint8 {
	addr := uint16(0x23C0) |
		(p.v.nametable() << 10) |
		((p.v.coarseY() >> 2) << 3) |
		(p.v.coarseX() >> 2)
	value := p.bus.Read(addr)
	shift := ((p.v.coarseY() & 0x02) << 1) | (p.v.coarseX() & 0x02)
	return (value >> shift) & 0x03
}

func (p *PPU) fetchPattern(planeOffset uint16) uint8 {
	base := uint16(0)
	if p.ctrl&ctrlBGTable != 0 {
		base = 0x1000
	}
	addr := base + uint16(p.bg.nextTileID)*16 + p.v.fineY() + planeOffset
	return p.bus.Read(addr)
}

// backgroundPixel returns the 0-3 color index and its resolved RGB for
// screen column x, honoring fine X scroll.
func (p *PPU) backgroundPixel(x int) (uint8, uint32) {
	if !p.showBackground() {
		return 0, 0
	}
	shift := uint(15 - p.x)
	lo := uint8((p.bg.patternLo >> shift) & 1)
	hi := uint8((p.bg.patternHi >> shift) & 1)
	idx := hi<<1 | lo
	if idx == 0 {
		return 0, rgbOf(p.readPalette(0))
	}
	paletteLo := uint8((p.bg.attrLo >> shift) & 1)
	paletteHi := uint8((p.bg.attrHi >> shift) & 1)
	palette := paletteHi<<1 | paletteLo
	color := p.readPalette(uint16(palette)*4 + uint16(idx))
	return idx, rgbOf(color)
}
