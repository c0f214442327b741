package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might interfere
	envVars := []string{
		"HOST", "PORT",
		"VOICEMDS_DATA_DIR", "VOICEMDS_MANIFEST", "VOICEMDS_TRIALS", "VOICEMDS_SOURCE",
		"VOICEMDS_ASSETS_DIR", "VOICEMDS_CAPTION", "VOICEMDS_AUDIO",
		"VOICEMDS_AXIS", "VOICEMDS_AXIS_LIMIT", "VOICEMDS_AXIS_PAD", "VOICEMDS_WEBRTC",
	}
	for _, k := range envVars {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", cfg.Host)
	}
	if cfg.Port != 8050 {
		t.Errorf("Port = %d, want 8050", cfg.Port)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want default", cfg.DataDir)
	}
	if cfg.Manifest != "" {
		t.Errorf("Manifest = %q, want empty default", cfg.Manifest)
	}
	if cfg.TrialsPath != "mds_data.csv" {
		t.Errorf("TrialsPath = %q, want default", cfg.TrialsPath)
	}
	if cfg.Source != SourcePrecomputed {
		t.Errorf("Source = %q, want %q", cfg.Source, SourcePrecomputed)
	}
	if cfg.AssetsDir != "assets" {
		t.Errorf("AssetsDir = %q, want default", cfg.AssetsDir)
	}
	if cfg.CaptionPath != "caption.md" {
		t.Errorf("CaptionPath = %q, want default", cfg.CaptionPath)
	}
	if cfg.AudioMode != AudioSynthesized {
		t.Errorf("AudioMode = %q, want %q", cfg.AudioMode, AudioSynthesized)
	}
	if cfg.AxisMode != AxisFixed {
		t.Errorf("AxisMode = %q, want %q", cfg.AxisMode, AxisFixed)
	}
	if cfg.AxisLimit != 0.8 {
		t.Errorf("AxisLimit = %f, want 0.8", cfg.AxisLimit)
	}
	if cfg.AxisPad != 0.5 {
		t.Errorf("AxisPad = %f, want 0.5", cfg.AxisPad)
	}
	if !cfg.WebRTC {
		t.Error("WebRTC should default to enabled")
	}
	if cfg.NeedsTrials() {
		t.Error("default config should not need the trial table")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9000")
	t.Setenv("VOICEMDS_DATA_DIR", "/srv/coords")
	t.Setenv("VOICEMDS_MANIFEST", "/srv/coords/manifest.yaml")
	t.Setenv("VOICEMDS_TRIALS", "/srv/trials.csv")
	t.Setenv("VOICEMDS_SOURCE", "TRIALS")
	t.Setenv("VOICEMDS_ASSETS_DIR", "/srv/audio")
	t.Setenv("VOICEMDS_CAPTION", "/srv/caption.txt")
	t.Setenv("VOICEMDS_AUDIO", "trials")
	t.Setenv("VOICEMDS_AXIS", "global")
	t.Setenv("VOICEMDS_AXIS_LIMIT", "1.2")
	t.Setenv("VOICEMDS_AXIS_PAD", "0.25")
	t.Setenv("VOICEMDS_WEBRTC", "false")

	cfg := Load()

	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9000", cfg.Addr())
	}
	if cfg.DataDir != "/srv/coords" {
		t.Errorf("DataDir = %q, want env override", cfg.DataDir)
	}
	if cfg.Manifest != "/srv/coords/manifest.yaml" {
		t.Errorf("Manifest = %q, want env override", cfg.Manifest)
	}
	if cfg.TrialsPath != "/srv/trials.csv" {
		t.Errorf("TrialsPath = %q, want env override", cfg.TrialsPath)
	}
	if cfg.Source != SourceTrials {
		t.Errorf("Source = %q, want %q", cfg.Source, SourceTrials)
	}
	if cfg.AssetsDir != "/srv/audio" {
		t.Errorf("AssetsDir = %q, want env override", cfg.AssetsDir)
	}
	if cfg.CaptionPath != "/srv/caption.txt" {
		t.Errorf("CaptionPath = %q, want env override", cfg.CaptionPath)
	}
	if cfg.AudioMode != AudioTrials {
		t.Errorf("AudioMode = %q, want %q", cfg.AudioMode, AudioTrials)
	}
	if cfg.AxisMode != AxisGlobal {
		t.Errorf("AxisMode = %q, want %q", cfg.AxisMode, AxisGlobal)
	}
	if cfg.AxisLimit != 1.2 {
		t.Errorf("AxisLimit = %f, want 1.2", cfg.AxisLimit)
	}
	if cfg.AxisPad != 0.25 {
		t.Errorf("AxisPad = %f, want 0.25", cfg.AxisPad)
	}
	if cfg.WebRTC {
		t.Error("WebRTC = true, want env override false")
	}
	if !cfg.NeedsTrials() {
		t.Error("trials source should need the trial table")
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	cfg := Load()
	if cfg.Port != 8050 {
		t.Errorf("Invalid int env should fallback to default: got %d, want 8050", cfg.Port)
	}
}

func TestEnvChoiceUnknownFallsBack(t *testing.T) {
	t.Setenv("VOICEMDS_AXIS", "logarithmic")
	t.Setenv("VOICEMDS_SOURCE", "database")
	cfg := Load()
	if cfg.AxisMode != AxisFixed {
		t.Errorf("Unknown axis mode should fallback: got %q", cfg.AxisMode)
	}
	if cfg.Source != SourcePrecomputed {
		t.Errorf("Unknown source should fallback: got %q", cfg.Source)
	}
}

func TestEnvStrEmpty(t *testing.T) {
	// Empty string should use fallback
	os.Unsetenv("VOICEMDS_ASSETS_DIR")
	cfg := Load()
	if cfg.AssetsDir != "assets" {
		t.Errorf("Unset env should use fallback: got %q", cfg.AssetsDir)
	}
}
