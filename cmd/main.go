// PixelMagic - pixel-grid game state reader and combat rotation runner
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pixelmagic/internal/binding"
	"pixelmagic/internal/bot"
	"pixelmagic/internal/config"
	"pixelmagic/internal/input"
	"pixelmagic/internal/pixel"
	"pixelmagic/internal/rotation"
	_ "pixelmagic/internal/rotation/warrior"
	"pixelmagic/internal/state"
)

var (
	version      = "0.1.0"
	showVer      = flag.Bool("version", false, "Show version")
	listClients  = flag.Bool("list", false, "Find the running game client and print its window")
	listRots     = flag.Bool("rotations", false, "List registered rotations")
	probe        = flag.Bool("probe", false, "Bind to the game and print one game-state snapshot")
	snapshotFile = flag.String("snapshot", "", "Decode the addon grid from a PNG screenshot and print it")
	launch       = flag.Bool("launch", false, "Start the game client if it is not running")
	rotationName = flag.String("rotation", "", "Rotation to run (overrides config)")
	modeFlag     = flag.String("mode", "", "Rotation mode: single or aoe (overrides config)")
	configPath   = flag.String("config", "", "Path to config file")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	logFile      = flag.String("log", "", "Also write JSON logs to this file")
	noTray       = flag.Bool("no-tray", false, "Run without the system tray icon")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("pixelmagic version %s\n", version)
		return
	}

	closer, err := setupLogging(*debug, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	// Initialize config
	cfgMgr, err := newConfigManager(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := cfgMgr.Load(); err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
	}
	if err := applyOverrides(cfgMgr, *rotationName, *modeFlag); err != nil {
		log.Fatal().Err(err).Msg("Invalid command line")
	}

	switch {
	case *listRots:
		printRotations(os.Stdout, rotation.Default)
	case *snapshotFile != "":
		if err := decodeScreenshot(os.Stdout, *snapshotFile, cfgMgr); err != nil {
			log.Fatal().Err(err).Msg("Snapshot failed")
		}
	case *listClients:
		if err := listClient(os.Stdout, cfgMgr); err != nil {
			log.Fatal().Err(err).Msg("No game client found")
		}
	case *probe:
		if err := runProbe(os.Stdout, cfgMgr); err != nil {
			log.Fatal().Err(err).Msg("Probe failed")
		}
	default:
		// Default: run as background service
		runService(cfgMgr)
	}
}

// setupLogging sends human-readable logs to stderr and, when path is set, JSON logs to a file
func setupLogging(debug bool, path string) (io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}}

	var closer io.Closer = nopCloser{}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newConfigManager(path string) (*config.Manager, error) {
	if path != "" {
		return config.NewManagerAt(path), nil
	}
	return config.NewManager()
}

// applyOverrides validates and applies -rotation / -mode for this run only
func applyOverrides(cfgMgr *config.Manager, name, mode string) error {
	if name != "" {
		if _, _, err := rotation.Default.Lookup(name); err != nil {
			return err
		}
	}
	if mode != "" {
		t, err := rotation.ParseType(mode)
		if err != nil {
			return err
		}
		mode = t.String()
	}

	cfg := cfgMgr.Get()
	if name != "" {
		cfg.Rotation.Name = name
	}
	if mode != "" {
		cfg.Rotation.Mode = mode
	}
	cfgMgr.Set(cfg)
	return nil
}

func printRotations(w io.Writer, reg *rotation.Registry) {
	fmt.Fprintln(w, "Registered Rotations:")
	fmt.Fprintln(w, "---------------------")
	for _, d := range reg.Descriptors() {
		fmt.Fprintf(w, "%-10s %s\n", d.Class, d.Name)
	}
}

// connect binds to a running client, launching one first when -launch is set
func connect(cfgMgr *config.Manager, b *binding.Binding) error {
	err := b.Connect()
	if err == nil || !*launch || !errors.Is(err, binding.ErrProcessNotFound) {
		return err
	}

	installPath, perr := cfgMgr.InstallPath()
	if perr != nil {
		return perr
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return b.Launch(ctx, installPath, cfgMgr.Get().Game.Executable, time.Second)
}

func listClient(w io.Writer, cfgMgr *config.Manager) error {
	b := binding.New(cfgMgr.Get().Game.ProcessNames)
	if err := connect(cfgMgr, b); err != nil {
		return err
	}
	win, _ := b.Current()

	fmt.Fprintln(w, "Game Client:")
	fmt.Fprintln(w, "------------")
	fmt.Fprintf(w, "PID:    %d\n", win.PID)
	fmt.Fprintf(w, "Window: 0x%X\n", win.Handle)
	fmt.Fprintf(w, "Exe:    %s\n", b.Executable())
	if addons, err := cfgMgr.AddonPath(); err == nil {
		fmt.Fprintf(w, "AddOns: %s\n", addons)
	}
	return nil
}

func runProbe(w io.Writer, cfgMgr *config.Manager) error {
	rt, err := newApp(cfgMgr)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := connect(cfgMgr, rt.binding); err != nil {
		return err
	}
	snap, err := rt.bot.Snapshot()
	if err != nil {
		return err
	}
	focused, err := rt.state.HasFocus()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		state.Snapshot
		HasFocus bool `json:"has_focus"`
	}{snap, focused})
}

// decodeScreenshot reads the addon grid from a PNG whose top-left corner is the grid
func decodeScreenshot(w io.Writer, path string, cfgMgr *config.Manager) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	b := binding.New(nil)
	b.Bind(binding.Window{Handle: 1})
	st := state.New(pixel.NewSensor(b, pixel.NewImageSurface(img)), b, nil)

	slots := 0
	for _, s := range cfgMgr.Get().Spells {
		slots = max(slots, s.Slot)
	}
	snap, err := st.Snapshot(slots)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// app is the live object graph for one game client
type app struct {
	binding *binding.Binding
	sensor  *pixel.Sensor
	state   *state.State
	bot     *bot.Bot
}

func newApp(cfgMgr *config.Manager) (*app, error) {
	cfg := cfgMgr.Get()

	surface, err := pixel.NewSystemSurface()
	if err != nil {
		return nil, fmt.Errorf("capture surface: %w", err)
	}
	poster, err := input.NewSystemPoster()
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	b := binding.New(cfg.Game.ProcessNames)
	sensor := pixel.NewSensor(b, surface)
	st := state.New(sensor, b, binding.SystemDesktop())

	return &app{
		binding: b,
		sensor:  sensor,
		state:   st,
		bot: bot.New(bot.Options{
			Binding:  b,
			State:    st,
			Input:    input.NewDispatcher(b, poster),
			Registry: rotation.Default,
			Config:   cfgMgr,
		}),
	}, nil
}

func (r *app) Close() error {
	r.bot.Stop()
	r.binding.Dispose()
	return r.sensor.Close()
}

func waitForSignal() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
