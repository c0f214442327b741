package audio

import "time"

const (
	SampleRate    = 48000
	Channels      = 2
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960                  // samples per channel per 20ms frame
	FrameSamples  = FrameSize * Channels // total interleaved samples per frame
	FrameBytes    = FrameSamples * 2     // bytes per frame (int16 = 2 bytes)
)

// Clip is one decoded stimulus recording.
type Clip struct {
	Name    string // file name relative to the asset directory
	Samples []int16
}

// Duration is the clip's playing time.
func (c Clip) Duration() time.Duration {
	return time.Duration(len(c.Samples)/Channels) * time.Second / SampleRate
}

// Frames splits interleaved samples into 20ms frames. The last frame is
// zero-padded to full length.
func Frames(samples []int16) [][]int16 {
	n := (len(samples) + FrameSamples - 1) / FrameSamples
	out := make([][]int16, n)
	for i := range out {
		start := i * FrameSamples
		end := start + FrameSamples
		if end <= len(samples) {
			out[i] = samples[start:end]
			continue
		}
		last := make([]int16, FrameSamples)
		copy(last, samples[start:])
		out[i] = last
	}
	return out
}
