// Command nesgo runs the headless NES emulation core: it loads a ROM,
// drives the clock for a fixed number of frames, and dumps selected frame
// buffers as PPM images. There is no GUI backend; a host that wants to
// display frames interactively consumes System.FrameBuffer/Clock.Frames
// directly as a library.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/jotare/nes-emulator/internal/cartridge"
	"github.com/jotare/nes-emulator/internal/clock"
	"github.com/jotare/nes-emulator/internal/config"
	"github.com/jotare/nes-emulator/internal/neserr"
)

func main() {
	romFile := flag.String("rom", "", "path to an iNES ROM file (required)")
	configFile := flag.String("config", "", "path to a JSON config file (default: OS config dir)")
	frames := flag.Int("frames", 120, "number of frames to run before exiting")
	dumpEvery := flag.Int("dump-every", 30, "write a PPM screenshot every N frames (0 disables)")
	flag.Parse()
	defer glog.Flush()

	if *romFile == "" {
		glog.Errorf("a ROM file is required: -rom <file>")
		flag.Usage()
		glog.Flush()
		os.Exit(1)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg := config.New()
	if err := cfg.LoadFromFile(configPath); err != nil {
		glog.Errorf("loading config: %v", err)
		glog.Flush()
		os.Exit(1)
	}

	cart, err := cartridge.LoadFile(*romFile)
	if err != nil {
		glog.Errorf("loading ROM %s: %v", *romFile, err)
		glog.Flush()
		os.Exit(exitCodeFor(err))
	}

	sys := clock.NewSystem(cart)
	sys.Reset()
	c := clock.NewClock(sys)

	glog.Infof("nesgo: running %d frames from %s", *frames, *romFile)
	for frame := 0; frame < *frames; frame++ {
		for !frameDelivered(c) {
			if _, err := c.Tick(); err != nil {
				glog.Errorf("fatal error during emulation: %v", err)
				glog.Flush()
				os.Exit(1)
			}
		}

		if *dumpEvery > 0 && (frame+1)%*dumpEvery == 0 {
			name := fmt.Sprintf("frame_%03d.ppm", frame+1)
			if err := writePPM(sys.FrameBuffer(), name); err != nil {
				glog.Warningf("writing %s: %v", name, err)
			} else {
				glog.Infof("wrote %s", name)
			}
		}
	}

	glog.Infof("nesgo: done, %d frames emitted", *frames)
}

// frameDelivered drains one pending frame from the clock's frame channel,
// if any, reporting whether a frame was consumed this call.
func frameDelivered(c *clock.Clock) bool {
	select {
	case <-c.Frames:
		return true
	default:
		return false
	}
}

func exitCodeFor(err error) int {
	switch {
	case neserr.Is(err, neserr.InvalidHeader):
		return 1
	case neserr.Is(err, neserr.UnsupportedMapper):
		return 2
	case neserr.Is(err, neserr.IoError):
		return 3
	default:
		return 1
	}
}

func writePPM(frame *[256 * 240]uint32, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "P3\n256 240\n255\n"); err != nil {
		return err
	}
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frame[y*256+x]
			r := (pixel >> 16) & 0xFF
			g := (pixel >> 8) & 0xFF
			b := pixel & 0xFF
			if _, err := fmt.Fprintf(f, "%d %d %d ", r, g, b); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(f); err != nil {
			return err
		}
	}
	return nil
}
