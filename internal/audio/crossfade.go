package audio

import "time"

// Smoothstep returns the smoothstep interpolation for t in [0,1]: 3t^2 - 2t^3.
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// Join concatenates clips, overlapping consecutive clips by up to overlap
// with a smoothstep crossfade. The overlap is capped at half the shorter
// of the two clips. It also returns the sample offset at which each clip
// starts in the joined output.
func Join(clips []Clip, overlap time.Duration) ([]int16, []int) {
	want := max(0, int(overlap*SampleRate/time.Second)*Channels)

	var out []int16
	starts := make([]int, len(clips))
	for i, c := range clips {
		if i == 0 || len(out) == 0 {
			starts[i] = len(out)
			out = append(out, c.Samples...)
			continue
		}
		n := min(want, len(clips[i-1].Samples)/2, len(c.Samples)/2, len(out))
		n -= n % Channels
		start := len(out) - n
		starts[i] = start

		frames := n / Channels
		for f := 0; f < frames; f++ {
			gain := Smoothstep(float64(f) / float64(frames))
			for ch := 0; ch < Channels; ch++ {
				j := f*Channels + ch
				out[start+j] = mix(out[start+j], c.Samples[j], gain)
			}
		}
		out = append(out, c.Samples[n:]...)
	}
	return out, starts
}

// mix blends two samples at gain (0 = all a, 1 = all b), clipped to int16.
func mix(a, b int16, gain float64) int16 {
	v := float64(a)*(1-gain) + float64(b)*gain
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
