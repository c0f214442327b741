package stream

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/satindergrewal/voicemds/internal/audio"
	"github.com/satindergrewal/voicemds/internal/interact"
)

var (
	ErrNoClips      = errors.New("no clips requested")
	ErrClipNotFound = errors.New("clip not found")
)

// clipOverlap is the crossfade between consecutive clips of one point.
const clipOverlap = 150 * time.Millisecond

// Clips decodes audition clips from an asset directory.
type Clips struct {
	dir    string
	assets fs.FS
}

// NewClips serves clips from dir.
func NewClips(dir string) *Clips {
	return &Clips{dir: dir, assets: os.DirFS(dir)}
}

// Check verifies that every name is present in the asset directory.
func (c *Clips) Check(names []string) error {
	if len(names) == 0 {
		return ErrNoClips
	}
	for _, n := range names {
		if !interact.Exists(c.assets, n) {
			return fmt.Errorf("%w: %s", ErrClipNotFound, n)
		}
	}
	return nil
}

// Playback checks and decodes names into a ready-to-run playback.
func (c *Clips) Playback(ctx context.Context, names []string) (*audio.Playback, error) {
	if err := c.Check(names); err != nil {
		return nil, err
	}
	clips, err := audio.DecodeClips(ctx, c.dir, names)
	if err != nil {
		return nil, err
	}
	for _, c := range clips {
		log.Printf("Decoded %s (%v)", c.Name, c.Duration().Round(time.Millisecond))
	}
	return audio.NewPlayback(clips, clipOverlap), nil
}

// clipStatus maps clip errors to HTTP status codes.
func clipStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoClips):
		return http.StatusBadRequest
	case errors.Is(err, ErrClipNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
