// Package bus implements the address-decoded device fabric shared by the
// CPU-visible and PPU-visible memory maps.
package bus

import (
	"github.com/golang/glog"

	"github.com/jotare/nes-emulator/internal/memdev"
	"github.com/jotare/nes-emulator/internal/neserr"
)

// attachment records one device's claimed half-open address range
// [Lo, Hi).
type attachment struct {
	id     string
	lo, hi uint16
	device memdev.Device
}

// Bus is an address-decoded aggregator over attached devices. Each device
// claims a half-open range; a single Read or Write dispatches to exactly
// one device, receiving the global address. Ranges must be disjoint —
// Attach fails at registration time on overlap, never at dispatch time.
type Bus struct {
	name         string
	attachments  []attachment
	openBus      uint8
	hasOpenBus   bool
}

// New creates an empty bus. name identifies the bus in log output (e.g.
// "cpu" or "ppu").
func New(name string) *Bus {
	return &Bus{name: name}
}

// Attach registers a device across the half-open range [lo, hi). It
// returns a *neserr.Error of kind BusConflict if the range overlaps an
// already-attached device.
func (b *Bus) Attach(lo, hi uint16, id string, device memdev.Device) error {
	if hi <= lo {
		return neserr.New(neserr.BusConflict, "empty or inverted range for "+id)
	}
	for _, a := range b.attachments {
		if lo < a.hi && a.lo < hi {
			glog.Warningf("%s bus: attach of %s conflicts with %s", b.name, id, a.id)
			return neserr.New(neserr.BusConflict,
				id+" overlaps "+a.id+" on "+b.name+" bus")
		}
	}
	b.attachments = append(b.attachments, attachment{id: id, lo: lo, hi: hi, device: device})
	return nil
}

// MustAttach is Attach but panics on conflict; used during fixed system
// wiring where an overlap is a programming error, not a runtime condition.
func (b *Bus) MustAttach(lo, hi uint16, id string, device memdev.Device) {
	if err := b.Attach(lo, hi, id, device); err != nil {
		panic(err)
	}
}

func (b *Bus) find(addr uint16) *attachment {
	for i := range b.attachments {
		a := &b.attachments[i]
		if addr >= a.lo && addr < a.hi {
			return a
		}
	}
	return nil
}

// Read dispatches a read to the single device claiming addr. Unmapped
// addresses return the open-bus value (the last byte read or written on
// this bus) rather than failing.
func (b *Bus) Read(addr uint16) uint8 {
	if a := b.find(addr); a != nil {
		value := a.device.Read(addr)
		b.openBus = value
		b.hasOpenBus = true
		return value
	}
	if glog.V(2) {
		glog.Warningf("%s bus: read of unmapped address $%04X, returning open bus", b.name, addr)
	}
	return b.openBus
}

// Write dispatches a write to the single device claiming addr. Writes to
// unmapped addresses are dropped and logged, not fatal.
func (b *Bus) Write(addr uint16, value uint8) {
	if a := b.find(addr); a != nil {
		a.device.Write(addr, value)
		b.openBus = value
		b.hasOpenBus = true
		return
	}
	glog.Warningf("%s bus: dropped write of $%02X to unmapped address $%04X", b.name, value, addr)
}

// OpenBus returns the last value observed on the bus (read or written),
// and whether any access has happened yet.
func (b *Bus) OpenBus() (uint8, bool) {
	return b.openBus, b.hasOpenBus
}
