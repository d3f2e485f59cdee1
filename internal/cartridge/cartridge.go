// Package cartridge parses iNES ROM images and exposes them through the
// Mapper abstraction, decoupling the bus and CPU from bank-switching
// details.
package cartridge

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/jotare/nes-emulator/internal/neserr"
)

const prgRAMSize = 8 * 1024

// Cartridge holds a parsed ROM image plus the mapper bound to it.
type Cartridge struct {
	prgROM   []uint8
	chrMem   []uint8
	chrIsRAM bool
	prgRAM   [prgRAMSize]uint8
	mirror   MirrorMode
	battery  bool
	mapperID uint8
	mapper   Mapper
}

// LoadFile reads and parses an iNES ROM image from disk.
func LoadFile(path string) (*Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, neserr.Wrap(neserr.IoError, "reading ROM file "+path, err)
	}
	return Load(bytes.NewReader(data))
}

// Load parses an iNES ROM image from r.
func Load(r io.Reader) (*Cartridge, error) {
	h, err := parseHeader(r)
	if err != nil {
		return nil, err
	}

	if h.hasTrainer() {
		var trainer [trainerSize]byte
		if _, err := io.ReadFull(r, trainer[:]); err != nil {
			return nil, neserr.Wrap(neserr.InvalidHeader, "short read of trainer", err)
		}
	}

	prgSize := int(h.prgUnits) * prgBankSize
	prgROM := make([]uint8, prgSize)
	if _, err := io.ReadFull(r, prgROM); err != nil {
		return nil, neserr.Wrap(neserr.InvalidHeader, "short read of PRG ROM", err)
	}

	var chrMem []uint8
	chrIsRAM := h.chrUnits == 0
	if chrIsRAM {
		chrMem = make([]uint8, chrRAMDefault)
	} else {
		chrMem = make([]uint8, int(h.chrUnits)*chrBankSize)
		if _, err := io.ReadFull(r, chrMem); err != nil {
			return nil, neserr.Wrap(neserr.InvalidHeader, "short read of CHR ROM", err)
		}
	}

	mapperID := h.mapperID()
	ctor, ok := mapperRegistry[mapperID]
	if !ok {
		return nil, neserr.New(neserr.UnsupportedMapper,
			fmt.Sprintf("mapper %d is not registered", mapperID))
	}

	c := &Cartridge{
		prgROM:   prgROM,
		chrMem:   chrMem,
		chrIsRAM: chrIsRAM,
		mirror:   h.mirroring(),
		battery:  h.hasBattery(),
		mapperID: mapperID,
	}
	c.mapper = ctor(c)

	glog.Infof("cartridge: mapper=%d prg=%dKB chr=%dKB chrRAM=%v mirror=%v battery=%v",
		mapperID, len(prgROM)/1024, len(chrMem)/1024, chrIsRAM, c.mirror, c.battery)

	return c, nil
}

// ReadPRG reads through the bound mapper.
func (c *Cartridge) ReadPRG(addr uint16) uint8 { return c.mapper.ReadPRG(addr) }

// WritePRG writes through the bound mapper.
func (c *Cartridge) WritePRG(addr uint16, value uint8) { c.mapper.WritePRG(addr, value) }

// ReadCHR reads through the bound mapper.
func (c *Cartridge) ReadCHR(addr uint16) uint8 { return c.mapper.ReadCHR(addr) }

// WriteCHR writes through the bound mapper.
func (c *Cartridge) WriteCHR(addr uint16, value uint8) { c.mapper.WriteCHR(addr, value) }

// Mirroring reports the cartridge's current nametable mirroring mode.
func (c *Cartridge) Mirroring() MirrorMode { return c.mapper.Mirroring() }

// IRQ reports whether the mapper is asserting a scanline IRQ.
func (c *Cartridge) IRQ() bool { return c.mapper.IRQ() }

// HasBattery reports whether the cartridge declares battery-backed PRG RAM.
func (c *Cartridge) HasBattery() bool { return c.battery }

// MapperID returns the iNES mapper number.
func (c *Cartridge) MapperID() uint8 { return c.mapperID }

// SRAM returns the battery-backed PRG RAM contents, for save-file
// persistence by the host.
func (c *Cartridge) SRAM() []uint8 {
	return c.prgRAM[:]
}

// LoadSRAM restores previously saved PRG RAM contents.
func (c *Cartridge) LoadSRAM(data []uint8) {
	copy(c.prgRAM[:], data)
}
