// ABOUTME: Entry point for the snddma player
// ABOUTME: Parses CLI flags, loads config and plays sounds through the DMA output
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/snddma/internal/app"
	"github.com/Resonate-Protocol/snddma/internal/config"
	"github.com/Resonate-Protocol/snddma/internal/version"
)

var (
	configPath  = flag.String("config", "", "Config file (default: ~/.snddmarc, then /etc/snddma/config.yaml)")
	saveConfig  = flag.String("save-config", "", "Write the effective config to this path and exit")
	driver      = flag.String("driver", "malgo", "Audio driver: malgo, oto, portaudio, null")
	khz         = flag.Int("khz", 11, "Sample rate selector: 11, 22, 44, 48")
	bufferSize  = flag.Int("buffer-samples", 0x8000, "Ring buffer samples per channel (power of two)")
	mixahead    = flag.Float64("mixahead", 0.1, "Seconds to mix ahead of the device")
	volume      = flag.Int("volume", 100, "Master volume 0-100")
	tone        = flag.Float64("tone", 0, "Play a test tone at this frequency in Hz")
	loop        = flag.Bool("loop", false, "Loop the sound files")
	monitorOn   = flag.Bool("monitor", false, "Serve WebSocket telemetry")
	monitorAddr = flag.String("monitor-addr", ":8928", "Telemetry listen address")
	mdnsOn      = flag.Bool("mdns", false, "Advertise telemetry via mDNS")
	name        = flag.String("name", "", "Monitor friendly name (default: hostname-snddma)")
	logFile     = flag.String("log-file", "snddma.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs  = flag.Bool("stream-logs", false, "Alias for -no-tui")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [sound files...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if *saveConfig != "" {
		if err := cfg.Save(*saveConfig); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}
		fmt.Printf("Config written to %s\n", *saveConfig)
		return
	}

	// Determine if we should use TUI or streaming logs
	useTUI := !(*noTUI || *streamLogs)

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	playerName := *name
	if playerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		playerName = fmt.Sprintf("%s-snddma", hostname)
	}

	log.Printf("Starting %s %s: %s", version.Product, version.Version, playerName)

	player, err := app.New(app.Config{
		Settings: cfg,
		Name:     playerName,
		Files:    flag.Args(),
		Tone:     *tone,
		Loop:     *loop,
		UseTUI:   useTUI,
	})
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}

	if err := player.Start(); err != nil {
		log.Fatalf("Failed to start player: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-player.Done():
	case sig := <-sigChan:
		log.Printf("Received %v signal, shutting down", sig)
	}

	player.Stop()
	log.Printf("Player stopped")
}

// applyFlags overrides config values with flags the user set explicitly
func applyFlags(cfg *config.Config) {
	flagsSet := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		flagsSet[f.Name] = true
	})

	if flagsSet["driver"] {
		cfg.Audio.Driver = *driver
	}
	if flagsSet["khz"] {
		cfg.Audio.KHz = *khz
	}
	if flagsSet["buffer-samples"] {
		cfg.Audio.BufferSamples = *bufferSize
	}
	if flagsSet["mixahead"] {
		cfg.Mixer.Mixahead = *mixahead
	}
	if flagsSet["volume"] {
		cfg.Mixer.Volume = *volume
	}
	if flagsSet["monitor"] {
		cfg.Monitor.Enabled = *monitorOn
	}
	if flagsSet["monitor-addr"] {
		cfg.Monitor.Addr = *monitorAddr
	}
	if flagsSet["mdns"] {
		cfg.Monitor.MDNS = *mdnsOn
	}
}
