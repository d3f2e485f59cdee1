package cartridge

import (
	"bytes"
	"io"

	"github.com/jotare/nes-emulator/internal/neserr"
)

const (
	prgBankSize   = 16 * 1024
	chrBankSize   = 8 * 1024
	trainerSize   = 512
	headerSize    = 16
	chrRAMDefault = 8 * 1024
)

var magic = [4]byte{'N', 'E', 'S', 0x1A}

// MirrorMode selects how the PPU bus maps its four logical 1KB nametables
// onto VRAM.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// header is the 16-byte iNES file header.
type header struct {
	magic      [4]byte
	prgUnits   uint8 // 16KB units
	chrUnits   uint8 // 8KB units
	flags6     uint8
	flags7     uint8
	prgRAM     uint8
	flags9     uint8
	flags10    uint8
	_reserved  [5]byte
}

func parseHeader(r io.Reader) (header, error) {
	var raw [headerSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return header{}, neserr.Wrap(neserr.InvalidHeader, "short read of iNES header", err)
	}
	if !bytes.Equal(raw[:4], magic[:]) {
		return header{}, neserr.New(neserr.InvalidHeader, "missing NES\\x1A magic")
	}
	h := header{
		prgUnits: raw[4],
		chrUnits: raw[5],
		flags6:   raw[6],
		flags7:   raw[7],
		prgRAM:   raw[8],
		flags9:   raw[9],
		flags10:  raw[10],
	}
	copy(h.magic[:], raw[:4])
	return h, nil
}

func (h header) mapperID() uint8 {
	return (h.flags7 & 0xF0) | (h.flags6 >> 4)
}

func (h header) mirroring() MirrorMode {
	if h.flags6&0x08 != 0 {
		return MirrorFourScreen
	}
	if h.flags6&0x01 != 0 {
		return MirrorVertical
	}
	return MirrorHorizontal
}

func (h header) hasTrainer() bool {
	return h.flags6&0x04 != 0
}

func (h header) hasBattery() bool {
	return h.flags6&0x02 != 0
}

func (m MirrorMode) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorSingleScreen0:
		return "single-screen-0"
	case MirrorSingleScreen1:
		return "single-screen-1"
	case MirrorFourScreen:
		return "four-screen"
	default:
		return "unknown"
	}
}
