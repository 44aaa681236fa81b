package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/user-none/osound/cli"
	"github.com/user-none/osound/monitor"
)

func main() {
	romPath := flag.String("rom", "", "ROM set directory or program ROM file (required)")
	pcmPath := flag.String("pcm", "", "sample ROM directory or image (default: ROM directory)")
	volume := flag.Float64("volume", 1.0, "audio volume (0.0-1.0)")
	assertions := flag.Bool("assert", false, "panic on paths the sound data never reaches")
	mute := flag.Uint("mute", 0, "PCM channel mute mask, bit n silences channel n")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("ROM path is required. Usage: osound-mon -rom <path>")
	}

	e, err := cli.OpenEngine(afero.NewOsFs(), cli.Options{
		ROMPath:    *romPath,
		PCMPath:    *pcmPath,
		Assertions: *assertions,
		MutePCM:    uint16(*mute),
	})
	if err != nil {
		log.Fatalf("Failed to initialize sound engine: %v", err)
	}

	runner := cli.NewRunner(e, *volume)
	defer runner.Close()

	if _, err := tea.NewProgram(monitor.NewModel(runner)).Run(); err != nil {
		log.Fatal(err)
	}
}
