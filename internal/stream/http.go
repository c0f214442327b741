package stream

import (
	"context"
	"io"
	"log"
	"net/http"
	"os/exec"

	"github.com/satindergrewal/voicemds/internal/audio"
)

// HTTPHandler serves a point's clips as one chunked MP3 stream, for
// browsers without WebRTC. Each request spawns an FFmpeg process to encode
// PCM -> MP3 in real-time. Clips are named by repeated ?file= parameters.
type HTTPHandler struct {
	clips *Clips
}

// NewHTTPHandler creates an HTTP stream handler.
func NewHTTPHandler(c *Clips) *HTTPHandler {
	return &HTTPHandler{clips: c}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	names := r.URL.Query()["file"]
	if err := h.clips.Check(names); err != nil {
		http.Error(w, err.Error(), clipStatus(err))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	playback, err := h.clips.Playback(ctx, names)
	if err != nil {
		log.Printf("HTTP stream: %v", err)
		http.Error(w, err.Error(), clipStatus(err))
		return
	}

	// FFmpeg: PCM stdin -> MP3 stdout
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", "192k",
		"-f", "mp3",
		"-fflags", "nobuffer",
		"-flush_packets", "1",
		"-loglevel", "error",
		"pipe:1",
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Printf("HTTP stream: stdin pipe error: %v", err)
		return
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Printf("HTTP stream: stdout pipe error: %v", err)
		return
	}

	if err := cmd.Start(); err != nil {
		log.Printf("HTTP stream: ffmpeg start error: %v", err)
		http.Error(w, "encoder unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")

	log.Printf("HTTP audition started: %v", names)
	defer log.Printf("HTTP audition finished: %v", names)

	go playback.Run(ctx)

	// Feed PCM frames to FFmpeg; closing stdin lets it flush and exit.
	go func() {
		defer stdin.Close()
		for frame := range playback.Frames() {
			if _, err := stdin.Write(audio.SamplesToBytes(frame)); err != nil {
				playback.Stop()
				return
			}
		}
	}()

	// Read MP3 from FFmpeg and write to HTTP response
	buf := make([]byte, 4096)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				break
			}
			flusher.Flush()
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("HTTP stream: ffmpeg read error: %v", err)
			}
			break
		}
	}

	playback.Stop()
	cmd.Wait()
}
