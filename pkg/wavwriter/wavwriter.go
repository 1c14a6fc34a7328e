// Package wavwriter records the audio unit's mixed output to disk as a
// WAV file. Samples are buffered in memory in their entirety and
// encoded when mixing ends, so it is best suited to captures and tests.
package wavwriter

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WavWriter buffers stereo samples until EndMixing encodes them.
type WavWriter struct {
	filename   string
	sampleRate int
	buffer     []int
}

// New returns a writer that will encode to the given file.
func New(filename string, sampleRate int) *WavWriter {
	return &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
	}
}

// SetAudio appends one stereo sample.
func (w *WavWriter) SetAudio(left, right int16) error {
	w.buffer = append(w.buffer, int(left), int(right))
	return nil
}

// EndMixing encodes the buffered samples and closes the file.
func (w *WavWriter) EndMixing() (rerr error) {
	f, err := os.Create(w.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	enc := wav.NewEncoder(f, w.sampleRate, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  w.sampleRate,
		},
		Data:           w.buffer,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	return nil
}
