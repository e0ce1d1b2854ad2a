package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"jp8080ctl/config"
	"jp8080ctl/debug"
	"jp8080ctl/engine"
	"jp8080ctl/mcpserver"
	"jp8080ctl/midi"
	"jp8080ctl/params"
	"jp8080ctl/processor"
	"jp8080ctl/state"
	"jp8080ctl/theme"
	"jp8080ctl/tui"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.Debug || os.Getenv("JP8080_DEBUG") != "" {
		if err := debug.Enable(); err != nil {
			log.Printf("debug log unavailable: %v", err)
		}
		defer debug.Disable()
	}

	cmd := "tui"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "dump":
		dump(newStore(cfg), cfg)
		return
	case "tui", "mcp", "send":
	default:
		log.Fatalf("unknown command %q (want tui, mcp, send or dump)", cmd)
	}

	store := newStore(cfg)
	proc := processor.New(store, midi.NewOutputs(), processor.Options{
		Cycle:      cfg.Cycle(),
		Part:       cfg.Part(),
		AsyncSysEx: cfg.Engine.AsyncSysEx,
		SysExQueue: cfg.Engine.SysExQueue,
	})
	defer proc.Close()

	if cmd == "send" {
		n := proc.Step()
		stats := proc.Stats()
		fmt.Printf("sent %d messages to %q (failed %d)\n", n, store.Device(), stats.Failed)
		if stats.Skipped > 0 || stats.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go proc.Run(ctx)

	if cmd == "mcp" {
		// stdout belongs to the protocol from here on
		if err := mcpserver.New(store, proc, version).Serve(); err != nil {
			log.Printf("server error: %v", err)
		}
		return
	}

	palette, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		log.Printf("palette %q: %v, using built-in", cfg.UI.Palette, err)
		palette = theme.Default()
	}

	m := tui.NewModel(store, proc, theme.New(palette), cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	bank, _ := store.Patch()
	cfg.UI.LastBank = bank.Key()
	cfg.Output.Channel = store.Channel()
	cfg.Output.Part = proc.Part().String()
	if err := cfg.Save(); err != nil {
		log.Printf("failed to save config: %v", err)
	}
}

// newStore builds the parameter store from config, restoring the last
// patch when there is one.
func newStore(cfg *config.Config) *state.Store {
	store := state.NewStore()
	if cfg.UI.LastPatch != "" {
		if _, err := state.LoadPatch(store, cfg.UI.LastPatch); err != nil {
			debug.Warn("main", "restore %s: %v", cfg.UI.LastPatch, err)
		}
	} else if bank, err := params.ParseBank(cfg.UI.LastBank); err == nil {
		store.SetPatch(bank, 1)
	}
	store.SetChannel(cfg.Output.Channel)
	store.SetDevice(cfg.Output.PortName)
	return store
}

// dump prints what a cold start would transmit, without opening a port
func dump(store *state.Store, cfg *config.Config) {
	eng := engine.New(engine.WithPart(cfg.Part()))
	for _, ev := range eng.Cycle(store.Snapshot()) {
		fmt.Printf("%-40s % X\n", midi.DescribeMessage(ev.Bytes()), ev.Bytes())
	}
}
