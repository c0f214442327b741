package config

import (
	"net"
	"os"
	"strconv"
	"strings"
)

// Data sources for the coordinate store.
const (
	SourcePrecomputed = "precomputed"
	SourceTrials      = "trials"
)

// Axis modes shared by every chart in a session.
const (
	AxisFixed  = "fixed"
	AxisGlobal = "global"
)

// Audio resolver variants.
const (
	AudioSynthesized = "synthesized"
	AudioTrials      = "trials"
)

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Host string
	Port int

	// Input data
	DataDir    string // precomputed {dim}_{stim}_{group}.csv tables
	Manifest   string // optional YAML manifest, overrides DataDir discovery
	TrialsPath string // raw pairwise-trial table
	Source     string // precomputed or trials

	// Presentation
	AssetsDir   string // audio clips, served under /assets/
	CaptionPath string // optional caption document
	AudioMode   string // synthesized or trials
	AxisMode    string // fixed or global
	AxisLimit   float64
	AxisPad     float64

	// WebRTC clip audition
	WebRTC bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Host: envStr("HOST", "0.0.0.0"),
		Port: envInt("PORT", 8050),

		DataDir:    envStr("VOICEMDS_DATA_DIR", "data"),
		Manifest:   envStr("VOICEMDS_MANIFEST", ""),
		TrialsPath: envStr("VOICEMDS_TRIALS", "mds_data.csv"),
		Source:     envChoice("VOICEMDS_SOURCE", SourcePrecomputed, SourcePrecomputed, SourceTrials),

		AssetsDir:   envStr("VOICEMDS_ASSETS_DIR", "assets"),
		CaptionPath: envStr("VOICEMDS_CAPTION", "caption.md"),
		AudioMode:   envChoice("VOICEMDS_AUDIO", AudioSynthesized, AudioSynthesized, AudioTrials),
		AxisMode:    envChoice("VOICEMDS_AXIS", AxisFixed, AxisFixed, AxisGlobal),
		AxisLimit:   envFloat("VOICEMDS_AXIS_LIMIT", 0.8),
		AxisPad:     envFloat("VOICEMDS_AXIS_PAD", 0.5),

		WebRTC: envBool("VOICEMDS_WEBRTC", true),
	}
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NeedsTrials reports whether the trial table must be loaded at startup.
func (c Config) NeedsTrials() bool {
	return c.Source == SourceTrials || c.AudioMode == AudioTrials
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envChoice returns the lowercased env value if it is one of allowed, else fallback.
func envChoice(key, fallback string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}
