package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pixelmagic/internal/api"
	"pixelmagic/internal/bot"
	"pixelmagic/internal/config"
	"pixelmagic/internal/hotkey"
	"pixelmagic/internal/osutils"
	"pixelmagic/internal/rotation"
	"pixelmagic/internal/tray"
)

func runService(cfgMgr *config.Manager) {
	log.Info().Str("version", version).Str("config", cfgMgr.Path()).Msg("PixelMagic Service starting...")
	osutils.WarnIfNotElevated()

	rt, err := newApp(cfgMgr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer rt.Close()

	if err := connect(cfgMgr, rt.binding); err != nil {
		log.Warn().Err(err).Msg("Service: No game client yet, will connect when a rotation starts")
	} else {
		w, _ := rt.binding.Current()
		log.Info().Uint32("pid", w.PID).Str("exe", rt.binding.Executable()).Msg("Service: Bound to game client")
	}

	cfg := cfgMgr.Get()

	// Start API server if enabled
	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(rt.bot, cfg.API.Token)
		go func() {
			if err := apiServer.Start(cfg.API.Port); err != nil {
				log.Error().Err(err).Msg("API server error")
			}
		}()
	}

	// System tray
	var t *tray.Tray
	var toggleItem, singleItem, aoeItem int
	if !*noTray {
		t = tray.New("PixelMagic")
		toggleItem = t.AddMenuItem("Start Rotation", func() {
			if err := rt.bot.Toggle(); err != nil {
				log.Error().Err(err).Msg("Tray: Toggle failed")
			}
		})
		t.AddSeparator()
		singleItem = t.AddMenuItem("Single Target", func() { rt.bot.SetMode(rotation.SingleTarget) })
		aoeItem = t.AddMenuItem("AOE", func() { rt.bot.SetMode(rotation.AOE) })
		t.AddSeparator()
		t.AddMenuItem("Quit", func() { t.Stop() })
	}

	// Status fan-out to tray and WebSocket clients
	updateStatus := func(st bot.Status) {
		if apiServer != nil {
			apiServer.BroadcastStatus(st)
		}
		if t == nil {
			return
		}
		if st.Running {
			t.SetItemTitle(toggleItem, fmt.Sprintf("Stop %s", st.Rotation))
			t.SetTooltip(fmt.Sprintf("PixelMagic - %s (%s)", st.Rotation, st.Mode))
		} else {
			t.SetItemTitle(toggleItem, "Start Rotation")
			t.SetTooltip("PixelMagic - idle")
		}
		t.SetItemChecked(singleItem, st.Mode == rotation.SingleTarget.String())
		t.SetItemChecked(aoeItem, st.Mode == rotation.AOE.String())
	}
	rt.bot.SetOnChange(updateStatus)
	updateStatus(rt.bot.Status())

	// Hotkey manager
	hkMgr := hotkey.NewManager()
	if err := hkMgr.Start(); err != nil {
		log.Warn().Err(err).Msg("Hotkey Engine failed to start")
	}

	// Debounce hotkeys
	var hkMux sync.Mutex
	var lastHkTime time.Time
	debounce := func() bool {
		hkMux.Lock()
		defer hkMux.Unlock()
		if time.Since(lastHkTime) < 500*time.Millisecond {
			return false
		}
		lastHkTime = time.Now()
		return true
	}

	// Helper to refresh hotkeys on config change
	refreshShortcuts := func() {
		cfg := cfgMgr.Get()
		hkMgr.Clear()

		if _, err := hkMgr.Register(cfg.Hotkeys.Toggle, func() {
			if !debounce() {
				return
			}
			if err := rt.bot.Toggle(); err != nil {
				log.Error().Err(err).Msg("Hotkey: Toggle failed")
			}
		}); err != nil {
			log.Warn().Err(err).Msg("Failed to register toggle hotkey")
		}

		if _, err := hkMgr.Register(cfg.Hotkeys.Mode, func() {
			if !debounce() {
				return
			}
			rt.bot.ToggleMode()
		}); err != nil {
			log.Warn().Err(err).Msg("Failed to register mode hotkey")
		}
		log.Info().Str("toggle", cfg.Hotkeys.Toggle).Str("mode", cfg.Hotkeys.Mode).Msg("Shortcuts: Refreshed")
	}

	// Initial shortcut setup
	refreshShortcuts()

	// Persist mode changes and re-register hotkeys when config changes
	cfgMgr.RegisterChangeCallback(func() {
		refreshShortcuts()
		if err := cfgMgr.Save(); err != nil {
			log.Warn().Err(err).Msg("Failed to save config")
		}
	})

	if cfg.Rotation.AutoStart {
		if err := rt.bot.Start(""); err != nil {
			log.Error().Err(err).Msg("Service: Auto start failed")
		}
	}

	shutdown := func() {
		log.Info().Msg("Shutting down...")
		hkMgr.Stop()
		rt.bot.Stop()
		if apiServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			apiServer.Shutdown(ctx)
		}
	}

	sigCh := waitForSignal()
	log.Info().Msg("PixelMagic Service running. Press Ctrl+C to stop.")

	if t == nil {
		<-sigCh
		shutdown()
		return
	}

	go func() {
		<-sigCh
		t.Stop()
	}()
	t.Run()
	shutdown()
}
