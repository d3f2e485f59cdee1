// Package ppu implements the NES Picture Processing Unit (Ricoh 2C02):
// the $2000-$2007 CPU-visible register file, the background and sprite
// shift-register pipelines, and the 262-scanline/341-dot frame timing that
// drives VBlank and NMI.
package ppu

import "github.com/golang/glog"

// Bus is the PPU's view of its own address space: pattern tables (via the
// cartridge mapper), nametables (mirrored per cartridge), and palette RAM.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

const (
	ctrlNMIEnable     = 0x80
	ctrlSpriteHeight  = 0x20
	ctrlBGTable       = 0x10
	ctrlSpriteTable   = 0x08
	ctrlIncrement32   = 0x04

	maskShowBG      = 0x08
	maskShowSprites = 0x10
	maskGreyscale   = 0x01
	maskBGLeft      = 0x02
	maskSpriteLeft  = 0x04

	statusVBlank    = 0x80
	statusSprite0   = 0x40
	statusOverflow  = 0x20
)

// PPU is the 2C02 core.
type PPU struct {
	bus Bus

	ctrl   uint8
	mask   uint8
	status uint8

	oamAddr uint8
	oam     [256]uint8

	v, t loopyReg
	x    uint8
	w    bool

	readBuffer uint8

	scanline int // -1 (pre-render) .. 260
	dot      int // 0 .. 340
	odd      bool
	frame    uint64

	bg  bgPipeline
	spr sprPipeline

	frameBuffer [256 * 240]uint32

	nmiCallback   func()
	frameCallback func()
}

// New creates a PPU with no bus attached; call SetBus before Step.
func New() *PPU {
	return &PPU{scanline: -1}
}

// SetBus attaches the PPU address space (nametables, pattern tables,
// palette RAM).
func (p *PPU) SetBus(bus Bus) { p.bus = bus }

// SetNMICallback installs the function invoked when VBlank NMI fires.
func (p *PPU) SetNMICallback(cb func()) { p.nmiCallback = cb }

// SetFrameCallback installs the function invoked once per completed frame.
func (p *PPU) SetFrameCallback(cb func()) { p.frameCallback = cb }

// Reset returns the PPU to its power-up state.
func (p *PPU) Reset() {
	p.ctrl, p.mask, p.status = 0, 0, 0
	p.oamAddr = 0
	p.v, p.t = loopyReg{}, loopyReg{}
	p.x, p.w = 0, false
	p.readBuffer = 0
	p.scanline, p.dot = -1, 0
	p.odd = false
	p.frame = 0
	p.bg = bgPipeline{}
	p.spr = sprPipeline{}
	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.frameBuffer {
		p.frameBuffer[i] = 0
	}
}

// FrameBuffer returns the 256x240 RGB frame rendered so far.
func (p *PPU) FrameBuffer() *[256 * 240]uint32 { return &p.frameBuffer }

// Frame reports the number of frames completed.
func (p *PPU) Frame() uint64 { return p.frame }

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskShowBG|maskShowSprites) != 0
}

func (p *PPU) showBackground() bool { return p.mask&maskShowBG != 0 }
func (p *PPU) showSprites() bool    { return p.mask&maskShowSprites != 0 }

// Step advances the PPU by a single dot. The caller (the system clock) is
// responsible for calling this three times per CPU cycle.
func (p *PPU) Step() {
	p.dot++
	// The odd-frame skip shortens the pre-render scanline by one dot, but
	// only when rendering is enabled; the NTSC PPU otherwise runs a full
	// 341 dots per line.
	if p.scanline == -1 && p.dot == 340 && p.odd && p.renderingEnabled() {
		p.dot++
	}
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > 260 {
			p.scanline = -1
			p.frame++
			p.odd = !p.odd
			if p.frameCallback != nil {
				p.frameCallback()
			}
		}
	}

	p.runScanline()
}

func (p *PPU) runScanline() {
	switch {
	case p.scanline == -1:
		p.preRenderScanline()
	case p.scanline >= 0 && p.scanline < 240:
		p.visibleScanline()
	case p.scanline == 241 && p.dot == 1:
		p.status |= statusVBlank
		if p.ctrl&ctrlNMIEnable != 0 && p.nmiCallback != nil {
			p.nmiCallback()
		}
	}
}

func (p *PPU) preRenderScanline() {
	if p.dot == 1 {
		p.status &^= statusVBlank | statusSprite0 | statusOverflow
	}
	if p.renderingEnabled() {
		p.backgroundFetchCycle()
		if p.dot >= 280 && p.dot <= 304 {
			p.v.copyY(p.t)
		}
		if p.dot == 257 {
			p.v.copyX(p.t)
		}
	}
}

func (p *PPU) visibleScanline() {
	if p.renderingEnabled() {
		p.backgroundFetchCycle()
		p.evaluateSprites()
		if p.dot == 257 {
			p.v.copyX(p.t)
		}
	}
	if p.dot >= 1 && p.dot <= 256 {
		x := p.dot - 1
		p.renderPixel(x, p.scanline)
	}
}

func (p *PPU) renderPixel(x, y int) {
	bgIdx, bgColor := p.backgroundPixel(x)
	sprIdx, sprColor, sprPriority, sprIsZero := p.spritePixel(x)

	if x < 8 {
		if p.mask&maskBGLeft == 0 {
			bgIdx = 0
		}
		if p.mask&maskSpriteLeft == 0 {
			sprIdx = 0
		}
	}

	if sprIsZero && bgIdx != 0 && sprIdx != 0 && x != 255 && p.renderingEnabled() {
		p.status |= statusSprite0
	}

	var out uint32
	switch {
	case bgIdx == 0 && sprIdx == 0:
		out = rgbOf(p.readPalette(0))
	case bgIdx == 0:
		out = sprColor
	case sprIdx == 0:
		out = bgColor
	case sprPriority:
		out = bgColor
	default:
		out = sprColor
	}
	p.frameBuffer[y*256+x] = out
}

func (p *PPU) readPalette(addr uint16) uint8 {
	return p.bus.Read(0x3F00 | addr)
}

// WriteOAM writes one byte directly into primary OAM at addr, leaving
// OAMADDR unchanged. OAM DMA does not use it; it writes through $2004.
func (p *PPU) WriteOAM(addr uint8, value uint8) {
	p.oam[addr] = value
}

// ReadRegister services a CPU read of $2000-$2007.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr & 7 {
	case 2:
		v := p.status
		p.status &^= statusVBlank
		p.w = false
		return v
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		return p.readData()
	default:
		return 0
	}
}

// WriteRegister services a CPU write of $2000-$2007.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr & 7 {
	case 0:
		p.ctrl = value
		p.t.setNametable(uint16(value) & 0x03)
	case 1:
		p.mask = value
	case 3:
		p.oamAddr = value
	case 4:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5:
		p.writeScroll(value)
	case 6:
		p.writeAddr(value)
	case 7:
		p.writeData(value)
	}
}

func (p *PPU) writeScroll(value uint8) {
	if !p.w {
		p.t.setCoarseX(uint16(value) >> 3)
		p.x = value & 0x07
		p.w = true
	} else {
		p.t.setFineY(uint16(value) & 0x07)
		p.t.setCoarseY(uint16(value) >> 3)
		p.w = false
	}
}

func (p *PPU) writeAddr(value uint8) {
	if !p.w {
		p.t.setHigh(uint16(value) & 0x3F)
		p.w = true
	} else {
		p.t.setLow(uint16(value))
		p.v = p.t
		if glog.V(3) {
			glog.Infof("ppu: PPUADDR composed v=$%04X", p.v.raw())
		}
		p.w = false
	}
}

func (p *PPU) vramIncrement() uint16 {
	if p.ctrl&ctrlIncrement32 != 0 {
		return 32
	}
	return 1
}

func (p *PPU) readData() uint8 {
	addr := p.v.raw() & 0x3FFF
	var data uint8
	if addr >= 0x3F00 {
		data = p.bus.Read(addr)
		p.readBuffer = p.bus.Read(addr & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.bus.Read(addr)
	}
	p.v.add(p.vramIncrement())
	return data
}

func (p *PPU) writeData(value uint8) {
	p.bus.Write(p.v.raw()&0x3FFF, value)
	p.v.add(p.vramIncrement())
}
