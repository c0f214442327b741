package audio

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// Playback paces a sequence of clips out as 20ms PCM frames at real-time
// rate. Clips are joined with a short crossfade.
type Playback struct {
	frames  [][]int16
	starts  []int // first frame of each clip
	names   []string
	frameCh chan []int16
	stopCh  chan struct{}
	stop    sync.Once

	mu       sync.RWMutex
	position time.Duration
}

// NewPlayback prepares clips for playback. overlap is the crossfade
// between consecutive clips.
func NewPlayback(clips []Clip, overlap time.Duration) *Playback {
	samples, offsets := Join(clips, overlap)
	p := &Playback{
		frames:  Frames(samples),
		starts:  make([]int, len(clips)),
		names:   make([]string, len(clips)),
		frameCh: make(chan []int16, 25),
		stopCh:  make(chan struct{}),
	}
	for i, c := range clips {
		p.starts[i] = offsets[i] / FrameSamples
		p.names[i] = c.Name
	}
	return p
}

// Frames returns the channel of outgoing PCM frames. It is closed when
// playback ends.
func (p *Playback) Frames() <-chan []int16 {
	return p.frameCh
}

// Duration is the total playing time.
func (p *Playback) Duration() time.Duration {
	return time.Duration(len(p.frames)) * FrameDuration
}

// Stop ends playback early. Safe to call more than once.
func (p *Playback) Stop() {
	p.stop.Do(func() { close(p.stopCh) })
}

// Status is a playback's progress through its sequence.
type Status struct {
	Clip     string
	Position time.Duration
	Duration time.Duration
}

// Status returns the clip being played and the position in the sequence.
func (p *Playback) Status() Status {
	p.mu.RLock()
	pos := p.position
	p.mu.RUnlock()
	return Status{Clip: p.clipAt(int(pos / FrameDuration)), Position: pos, Duration: p.Duration()}
}

func (p *Playback) clipAt(frame int) string {
	i := sort.Search(len(p.starts), func(i int) bool { return p.starts[i] > frame }) - 1
	if i < 0 {
		return ""
	}
	return p.names[i]
}

// Run sends every frame, one per tick. Blocks until the sequence ends, Stop
// is called, or ctx is cancelled.
func (p *Playback) Run(ctx context.Context) {
	defer close(p.frameCh)

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	current := ""
	for i, frame := range p.frames {
		if name := p.clipAt(i); name != current {
			current = name
			log.Printf("Now auditioning: %s", name)
		}
		if !p.sendFrame(ctx, ticker, frame) {
			return
		}
		p.mu.Lock()
		p.position = time.Duration(i+1) * FrameDuration
		p.mu.Unlock()
	}
}

// sendFrame waits for the ticker then sends a frame. Returns false on stop or cancel.
func (p *Playback) sendFrame(ctx context.Context, ticker *time.Ticker, frame []int16) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.stopCh:
		return false
	case <-ticker.C:
	}

	select {
	case p.frameCh <- frame:
		return true
	case <-ctx.Done():
		return false
	case <-p.stopCh:
		return false
	}
}
