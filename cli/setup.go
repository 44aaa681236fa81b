package cli

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/user-none/osound/romfs"
	"github.com/user-none/osound/segapcm"
	"github.com/user-none/osound/sound"
	"github.com/user-none/osound/ui"
	"github.com/user-none/osound/vgm"
)

// Options selects the ROMs and outputs for OpenEngine.
type Options struct {
	// ROMPath is a ROM set directory or the program ROM file itself.
	ROMPath string
	// PCMPath is a sample ROM directory or a prebuilt sample image. Empty
	// means the directory holding the program ROM.
	PCMPath string
	// SampleRate is the host output rate; 0 means ui.DefaultSampleRate.
	SampleRate int
	// RecordVGM attaches a vgm.Writer as the FM chip.
	RecordVGM bool
	// Assertions enables the engine's precondition checks.
	Assertions bool
	// MutePCM silences PCM chip channels whose bits are set.
	MutePCM uint16
}

// OpenEngine loads the ROMs named by opts and builds a ready Engine.
func OpenEngine(fs afero.Fs, opts Options) (*Engine, error) {
	prog, samples, err := loadROMs(fs, opts)
	if err != nil {
		return nil, err
	}
	if err := sound.ValidateCRC(prog); err != nil {
		log.Printf("Warning: %v", err)
	}
	rom, err := sound.NewROM(prog)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sound program: %w", err)
	}
	if err := sound.CheckLayout(rom, sound.DefaultLayout); err != nil {
		return nil, fmt.Errorf("sound program does not fit the table layout: %w", err)
	}

	rate := opts.SampleRate
	if rate == 0 {
		rate = ui.DefaultSampleRate
	}

	sound.SetAssertions(opts.Assertions)

	var rec *vgm.Writer
	var fm sound.FMChip
	if opts.RecordVGM {
		rec = vgm.NewWriter()
		fm = rec
	}
	snd := sound.New(rom, fm)
	pcm := segapcm.New(segapcm.DefaultClock, rate, samples)
	pcm.SetMute(opts.MutePCM)
	return NewEngine(snd, pcm, rec), nil
}

// loadROMs reads the program and sample images named by opts. A ROM set
// directory with no separate sample path is loaded as a whole.
func loadROMs(fs afero.Fs, opts Options) (prog, samples []byte, err error) {
	isDir, _ := afero.IsDir(fs, opts.ROMPath)
	if isDir {
		if opts.PCMPath == "" {
			set, err := romfs.Load(fs, opts.ROMPath)
			if err != nil {
				return nil, nil, err
			}
			return set.Program, set.Samples, nil
		}
		prog, err = romfs.LoadProgram(fs, filepath.Join(opts.ROMPath, romfs.ProgramFile))
	} else {
		prog, err = romfs.LoadProgram(fs, opts.ROMPath)
	}
	if err != nil {
		return nil, nil, err
	}

	pcmPath := opts.PCMPath
	if pcmPath == "" {
		pcmPath = filepath.Dir(opts.ROMPath)
	}
	samples, err = romfs.LoadSamples(fs, pcmPath)
	if err != nil {
		return nil, nil, err
	}
	return prog, samples, nil
}

// ParseCommands parses a comma-separated list of command bytes or names,
// e.g. "0x81,COIN_IN".
func ParseCommands(list string) ([]uint8, error) {
	var out []uint8
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if cmd, ok := sound.CommandByName(field); ok {
			out = append(out, cmd)
			continue
		}
		v, err := strconv.ParseUint(field, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid command %q", field)
		}
		out = append(out, uint8(v))
	}
	return out, nil
}
