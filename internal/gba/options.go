package gba

import (
	"github.com/thelolagemann/gomeboy-advance/internal/audio"
	"github.com/thelolagemann/gomeboy-advance/internal/memory"
	"github.com/thelolagemann/gomeboy-advance/pkg/log"
)

// Opt configures a machine at creation.
type Opt func(g *GBA)

// WithLogger replaces the machine's logger.
func WithLogger(l *log.Logger) Opt {
	return func(g *GBA) {
		g.log = l
	}
}

// WithLogLevel sets the logger's level mask.
func WithLogLevel(mask log.Level) Opt {
	return func(g *GBA) {
		g.log.Level = mask
	}
}

// WithSaveFile binds a save file; savedata initialized at ROM attach
// loads from and flushes to it.
func WithSaveFile(path string) Opt {
	return func(g *GBA) {
		g.savefile = path
	}
}

// WithDebugger attaches a debugger before init.
func WithDebugger(d Debugger) Opt {
	return func(g *GBA) {
		g.debugger = d
	}
}

// WithKeySource supplies the host's key state handle.
func WithKeySource(k KeySource) Opt {
	return func(g *GBA) {
		g.KeySource = k
	}
}

// WithRotationSource supplies the host's gyroscope handle.
func WithRotationSource(r memory.RotationSource) Opt {
	return func(g *GBA) {
		g.RotationSource = r
	}
}

// WithRumble supplies the host's rumble handle.
func WithRumble(r memory.Rumble) Opt {
	return func(g *GBA) {
		g.Rumble = r
	}
}

// WithMixer records the audio unit's mixed output.
func WithMixer(m audio.Mixer) Opt {
	return func(g *GBA) {
		g.mixer = m
	}
}
