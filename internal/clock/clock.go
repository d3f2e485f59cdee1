package clock

import (
	"github.com/golang/glog"

	"github.com/jotare/nes-emulator/internal/input"
)

// InputEvent carries one controller button transition from the host.
type InputEvent struct {
	Controller int
	Button     input.Button
	Pressed    bool
	Shutdown   bool
}

// frameChannelDepth bounds the frame-ready channel so a slow host drops or
// coalesces frames instead of ever blocking the core.
const frameChannelDepth = 2

// inputChannelDepth bounds the input channel; the core drains it between
// instructions so it rarely backs up, but a burst of events must never
// stall emission of new frames.
const inputChannelDepth = 64

// Clock drives a System with the five-step scheduling loop: advance the
// CPU one instruction, advance the PPU three dots per CPU cycle, drain a
// completed frame to the host, drain host input events, repeat.
type Clock struct {
	sys *System

	Input  chan InputEvent
	Frames chan *[256 * 240]uint32
}

// NewClock creates a Clock around an already-wired System.
func NewClock(sys *System) *Clock {
	return &Clock{
		sys:    sys,
		Input:  make(chan InputEvent, inputChannelDepth),
		Frames: make(chan *[256 * 240]uint32, frameChannelDepth),
	}
}

// Run drives the system until a shutdown event arrives on Input. It
// returns after finishing whatever CPU instruction was in flight, never
// mid-instruction, per the cooperative-cancellation contract.
func (c *Clock) Run() error {
	for {
		shutdown, err := c.Tick()
		if err != nil {
			return err
		}
		if shutdown {
			return nil
		}
	}
}

// Tick advances the system by exactly one CPU instruction (or one dummy
// cycle of DMA stall) and its corresponding PPU dots, then drains any
// frame-ready and host-input events. It reports whether a shutdown event
// was observed. Exported for hosts (such as the headless CLI) that drive
// the clock frame-by-frame instead of via Run's shutdown-only loop.
func (c *Clock) Tick() (bool, error) {
	var cpuCycles uint64

	if c.sys.dmaStall > 0 {
		cpuCycles = 1
		c.sys.dmaStall--
	} else {
		c.sys.cpu.SetIRQ(c.sys.cart.IRQ())
		n, err := c.sys.cpu.Step()
		if err != nil {
			return false, err
		}
		cpuCycles = n
	}
	c.sys.cpuCycles += cpuCycles

	for i := uint64(0); i < cpuCycles*3; i++ {
		c.sys.ppu.Step()
	}

	if c.sys.frameReady {
		c.sys.frameReady = false
		c.deliverFrame()
	}

	return c.drainInput(), nil
}

// deliverFrame sends the current frame buffer to the host, dropping it
// (and logging at a low verbosity, not a warning - the host falling
// behind is expected and not an error) rather than blocking the core if
// the channel is full.
func (c *Clock) deliverFrame() {
	select {
	case c.Frames <- c.sys.FrameBuffer():
	default:
		if glog.V(2) {
			glog.Infof("clock: dropped a frame, host is not keeping up")
		}
	}
}

// drainInput applies every pending host event without blocking, reporting
// whether a shutdown was requested.
func (c *Clock) drainInput() bool {
	for {
		select {
		case ev := <-c.Input:
			if ev.Shutdown {
				return true
			}
			c.sys.SetButton(ev.Controller, ev.Button, ev.Pressed)
		default:
			return false
		}
	}
}
