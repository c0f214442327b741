package stream

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"gopkg.in/hraban/opus.v2"

	"github.com/satindergrewal/voicemds/internal/audio"
)

// Offer is the browser's SDP offer plus the clips it wants to hear.
type Offer struct {
	SDP   string   `json:"sdp"`
	Type  string   `json:"type"`
	File  string   `json:"file,omitempty"`
	Files []string `json:"files,omitempty"`
}

// Names returns the requested clips, File first.
func (o Offer) Names() []string {
	var names []string
	if o.File != "" {
		names = append(names, o.File)
	}
	return append(names, o.Files...)
}

// connectTimeout bounds how long an answered peer may take to connect
// before its audition is dropped.
const connectTimeout = 15 * time.Second

// peerAction is what a peer connection state means for its audition.
type peerAction int

const (
	peerWait peerAction = iota
	peerStart
	peerStop
)

// actionFor maps a connection state to an audition action. Playback starts
// only once the peer is connected.
func actionFor(s webrtc.PeerConnectionState) peerAction {
	switch s {
	case webrtc.PeerConnectionStateConnected:
		return peerStart
	case webrtc.PeerConnectionStateFailed,
		webrtc.PeerConnectionStateClosed,
		webrtc.PeerConnectionStateDisconnected:
		return peerStop
	}
	return peerWait
}

// awaitConnect reports whether the peer connected before timeout.
func awaitConnect(ready <-chan bool, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case ok := <-ready:
		return ok
	case <-t.C:
		return false
	}
}

type audition struct {
	pc       *webrtc.PeerConnection
	playback *audio.Playback
}

// WebRTCHandler negotiates one peer per audition and streams the requested
// clips as Opus, closing the peer when playback ends.
type WebRTCHandler struct {
	clips          *Clips
	connectTimeout time.Duration

	mu    sync.Mutex
	peers []*audition
}

// NewWebRTCHandler creates a WebRTC audition handler.
func NewWebRTCHandler(c *Clips) *WebRTCHandler {
	return &WebRTCHandler{clips: c, connectTimeout: connectTimeout}
}

// PeerCount returns the number of active WebRTC peers.
func (h *WebRTCHandler) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Auditions returns the progress of every active audition.
func (h *WebRTCHandler) Auditions() []audio.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]audio.Status, len(h.peers))
	for i, a := range h.peers {
		out[i] = a.playback.Status()
	}
	return out
}

func (h *WebRTCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var offer Offer
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil || offer.SDP == "" {
		http.Error(w, "invalid SDP offer", http.StatusBadRequest)
		return
	}
	names := offer.Names()

	playback, err := h.clips.Playback(r.Context(), names)
	if err != nil {
		log.Printf("WebRTC: %v", err)
		http.Error(w, err.Error(), clipStatus(err))
		return
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		http.Error(w, "create peer connection failed", http.StatusInternalServerError)
		return
	}

	audioTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio",
		"voicemds-"+uuid.NewString(),
	)
	if err != nil {
		pc.Close()
		http.Error(w, "create audio track failed", http.StatusInternalServerError)
		return
	}

	if _, err := pc.AddTrack(audioTrack); err != nil {
		pc.Close()
		http.Error(w, "add track failed", http.StatusInternalServerError)
		return
	}

	ready := make(chan bool, 1)
	var once sync.Once
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		switch actionFor(s) {
		case peerStart:
			once.Do(func() { ready <- true })
		case peerStop:
			playback.Stop()
			once.Do(func() { ready <- false })
		}
	})

	desc := webrtc.SessionDescription{Type: webrtc.NewSDPType(offer.Type), SDP: offer.SDP}
	if err := pc.SetRemoteDescription(desc); err != nil {
		pc.Close()
		http.Error(w, "set remote description failed", http.StatusBadRequest)
		return
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		http.Error(w, "create answer failed", http.StatusInternalServerError)
		return
	}

	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		http.Error(w, "set local description failed", http.StatusInternalServerError)
		return
	}

	// Wait for ICE gathering to complete
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	<-gatherComplete

	a := &audition{pc: pc, playback: playback}
	h.mu.Lock()
	h.peers = append(h.peers, a)
	h.mu.Unlock()

	// Playback outlives the request.
	go func() {
		defer func() {
			playback.Stop()
			h.removePeer(a)
			pc.Close()
		}()
		if !awaitConnect(ready, h.connectTimeout) {
			log.Printf("WebRTC peer for %v never connected", names)
			return
		}
		log.Printf("WebRTC peer connected for %v (total: %d)", names, h.PeerCount())
		go playback.Run(context.Background())
		streamToPeer(playback.Frames(), audioTrack)
		log.Printf("WebRTC audition finished (remaining: %d)", h.PeerCount()-1)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(pc.LocalDescription()); err != nil {
		log.Printf("WebRTC: write answer: %v", err)
	}
}

func streamToPeer(frames <-chan []int16, track *webrtc.TrackLocalStaticSample) {
	enc, err := opus.NewEncoder(audio.SampleRate, audio.Channels, opus.AppAudio)
	if err != nil {
		log.Printf("WebRTC: opus encoder error: %v", err)
		return
	}
	enc.SetBitrate(128000)

	opusBuf := make([]byte, 4000)

	for frame := range frames {
		n, err := enc.Encode(frame, opusBuf)
		if err != nil {
			log.Printf("WebRTC: opus encode error: %v", err)
			continue
		}
		if err := track.WriteSample(media.Sample{
			Data:     opusBuf[:n],
			Duration: audio.FrameDuration,
		}); err != nil {
			return
		}
	}
}

func (h *WebRTCHandler) removePeer(a *audition) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, p := range h.peers {
		if p == a {
			h.peers = append(h.peers[:i], h.peers[i+1:]...)
			return
		}
	}
}
