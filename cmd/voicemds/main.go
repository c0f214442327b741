package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satindergrewal/voicemds/internal/config"
	"github.com/satindergrewal/voicemds/internal/figure"
	"github.com/satindergrewal/voicemds/internal/resolve"
	"github.com/satindergrewal/voicemds/internal/stream"
	"github.com/satindergrewal/voicemds/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "voicemds",
	Short: "Interactive MDS plots of voice-dissimilarity ratings",
	Long: `voicemds serves clickable 2D/3D scatter plots of multidimensional-scaling
coordinates from a voice perception study. Clicking a point plays the
audio clips of that speaker and language.

Configuration comes from the environment (PORT, HOST, VOICEMDS_*).
With no subcommand, voicemds serves.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the faceted MDS page",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("voicemds starting up...")

	// Startup data errors are fatal: never serve a partial data set.
	data, err := loadData(cfg)
	if err != nil {
		log.Fatalf("Load data: %v", err)
	}
	axes := sessionAxes(cfg, data.store)
	log.Printf("Axis ranges (%s): x=[%.2f, %.2f] y=[%.2f, %.2f] z=[%.2f, %.2f]", cfg.AxisMode,
		axes.X.Min, axes.X.Max, axes.Y.Min, axes.Y.Max, axes.Z.Min, axes.Z.Max)

	caption, err := ui.LoadCaption(cfg.CaptionPath)
	if err != nil {
		log.Fatalf("Load caption: %v", err)
	}
	if caption == nil {
		log.Printf("No caption at %q, caption panel disabled", cfg.CaptionPath)
	}

	// Audio auditions over HTTP and (optionally) WebRTC
	clips := stream.NewClips(cfg.AssetsDir)
	sc := ui.ServerConfig{
		Store:   data.store,
		Builder: figure.Builder{Resolver: resolve.New(cfg.AudioMode, data.trials), Axes: axes},
		Caption: caption,
		Assets:  os.DirFS(cfg.AssetsDir),
		Listen:  stream.NewHTTPHandler(clips),
	}
	if cfg.WebRTC {
		sc.WebRTC = stream.NewWebRTCHandler(clips)
	} else {
		log.Println("WebRTC audition disabled")
	}

	srv, err := ui.NewServer(sc)
	if err != nil {
		log.Fatalf("Build server: %v", err)
	}

	addr := cfg.Addr()
	server := &http.Server{Addr: addr, Handler: srv.Handler()}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		server.Close()
	}()

	log.Printf("voicemds live on %s (resolver: %s)", addr, cfg.AudioMode)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
	return nil
}
