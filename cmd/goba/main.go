package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime"

	"github.com/thelolagemann/gomeboy-advance/internal/arm"
	"github.com/thelolagemann/gomeboy-advance/internal/audio"
	"github.com/thelolagemann/gomeboy-advance/internal/gba"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
	"github.com/thelolagemann/gomeboy-advance/pkg/utils"
	"github.com/thelolagemann/gomeboy-advance/pkg/wavwriter"
)

func main() {
	// start pprof
	go func() {
		err := http.ListenAndServe("localhost:6060", nil)
		if err != nil {
			return
		}
	}()

	romFile := flag.String("rom", "", "The rom file to load")
	biosFile := flag.String("bios", "", "The bios file to load")
	saveFile := flag.String("save", "", "The save file to bind")
	wavFile := flag.String("wav", "", "Record mixed audio to a wav file")
	seconds := flag.Int("seconds", 10, "Emulated seconds to run")
	debug := flag.Bool("debug", false, "Log at debug level")
	flag.Parse()

	var opts []gba.Opt
	if *debug {
		opts = append(opts, gba.WithLogLevel(log.LevelAll))
	}
	if *saveFile != "" {
		opts = append(opts, gba.WithSaveFile(*saveFile))
	}
	if *wavFile != "" {
		opts = append(opts, gba.WithMixer(wavwriter.New(*wavFile, audio.SampleRate)))
	}

	g := gba.New(opts...)
	cpu := arm.NewCore()
	g.Init(cpu)
	defer g.Destroy()

	runtime.LockOSThread()
	gba.AttachContext(g)
	defer gba.DetachContext()

	if *biosFile != "" {
		f, err := os.Open(*biosFile)
		if err != nil {
			g.Log().Fatalf("%v", err)
		}
		if err := g.LoadBIOS(f); err != nil {
			g.Log().Fatalf("%v", err)
		}
		f.Close()
	}

	f, err := openROM(*romFile)
	if err != nil {
		g.Log().Fatalf("%v", err)
	}
	if err := g.LoadROM(f, *romFile); err != nil {
		g.Log().Fatalf("%v", err)
	}
	f.Close()

	g.Reset()

	// With no interpreter attached, burn straight from event to event
	// for the requested stretch of emulated time.
	target := int64(*seconds) * arm.Frequency
	var total int64
	for total < target {
		step := cpu.NextEvent - cpu.Cycles
		if step < 1 {
			step = 1
		}
		cpu.Advance(step)
		total += int64(step)
	}

	fmt.Printf("ran %d emulated seconds, %d frames\n", *seconds, g.Video.Frames)
}

// openROM opens a ROM image, staging compressed archives through a
// temporary file so the machine can map them.
func openROM(path string) (*os.File, error) {
	switch filepath.Ext(path) {
	case ".gba", ".bin", ".rom", "":
		return os.Open(path)
	}

	data, err := utils.LoadFile(path)
	if err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp("", "goba-*.gba")
	if err != nil {
		return nil, err
	}
	os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		tmp.Close()
		return nil, err
	}
	return tmp, nil
}
