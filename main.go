package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"

	"github.com/user-none/osound/cli"
	"github.com/user-none/osound/sound"
)

func main() {
	romPath := flag.String("rom", "", "ROM set directory or program ROM file (required)")
	pcmPath := flag.String("pcm", "", "sample ROM directory or image (default: ROM directory)")
	play := flag.String("play", "", "commands to send at start, e.g. 0x81,COIN_IN")
	pitch := flag.Uint("pitch", 0, "player engine pitch")
	vol := flag.Uint("vol", 0, "player engine volume (0-63)")
	rev := flag.Bool("rev", false, "enable the standing-start rev effect")
	vgmPath := flag.String("vgm", "", "write a VGM log (.vgm or .vgz)")
	ticks := flag.Int("ticks", 0, "render this many ticks without audio and exit")
	statePath := flag.String("state", "", "save state file, loaded at start and written on exit")
	volume := flag.Float64("volume", 1.0, "audio volume (0.0-1.0)")
	assertions := flag.Bool("assert", false, "panic on paths the sound data never reaches")
	mute := flag.Uint("mute", 0, "PCM channel mute mask, bit n silences channel n")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("ROM path is required. Usage: osound -rom <path>")
	}

	cmds, err := cli.ParseCommands(*play)
	if err != nil {
		log.Fatalf("Invalid -play: %v", err)
	}

	fs := afero.NewOsFs()
	e, err := cli.OpenEngine(fs, cli.Options{
		ROMPath:    *romPath,
		PCMPath:    *pcmPath,
		RecordVGM:  *vgmPath != "",
		Assertions: *assertions,
		MutePCM:    uint16(*mute),
	})
	if err != nil {
		log.Fatalf("Failed to initialize sound engine: %v", err)
	}

	if *statePath != "" {
		if data, err := afero.ReadFile(fs, *statePath); err == nil {
			if err := e.Sound.Deserialize(data); err != nil {
				log.Printf("Warning: ignoring save state: %v", err)
			}
		}
	}

	// Save the VGM log and state on exit
	defer func() {
		if e.VGM != nil {
			if err := e.VGM.Save(fs, *vgmPath); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
		if *statePath != "" {
			if data, err := e.Sound.Serialize(); err == nil {
				afero.WriteFile(fs, *statePath, data, 0644)
			}
		}
	}()

	if *ticks > 0 {
		renderHeadless(e, cmds, uint16(*pitch), uint8(*vol), *rev, *ticks)
		return
	}

	runner := cli.NewRunner(e, *volume)
	in := runner.Input()
	in.SetPlayerEngine(uint16(*pitch), uint8(*vol))
	in.SetRevEffect(*rev)
	for _, c := range cmds {
		in.PostCommand(c)
	}

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = sound.CommandName(c)
	}
	log.Printf("Playing %s; interrupt to stop", strings.Join(names, ", "))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	runner.Close()
}

// renderHeadless steps the engine as fast as possible, one command per tick
// until the list is exhausted.
func renderHeadless(e *cli.Engine, cmds []uint8, pitch uint16, vol uint8, rev bool, ticks int) {
	e.Sound.SetPlayerEngine(pitch, vol)
	e.Sound.SetRevEffect(rev)
	for i := 0; i < ticks; i++ {
		if len(cmds) > 0 && e.Sound.PendingCommand() == sound.CmdNone {
			e.Sound.SendCommand(cmds[0])
			cmds = cmds[1:]
		}
		e.Step()
	}
	log.Printf("Rendered %d ticks, %d FM writes dropped", ticks, e.Sound.DroppedFMWrites())
}
