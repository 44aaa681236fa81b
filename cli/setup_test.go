package cli

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/user-none/osound/romfs"
	"github.com/user-none/osound/sound"
)

func writeTestROMs(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	if err := afero.WriteFile(fs, filepath.Join(dir, romfs.ProgramFile), make([]byte, sound.ProgramROMSize), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, name := range romfs.SampleFiles {
		if err := afero.WriteFile(fs, filepath.Join(dir, name), make([]byte, 0x8000), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestOpenEngine_FromDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTestROMs(t, fs, "/roms")

	e, err := OpenEngine(fs, Options{ROMPath: "/roms", RecordVGM: true})
	if err != nil {
		t.Fatalf("OpenEngine failed: %v", err)
	}
	if e.VGM == nil {
		t.Fatal("expected VGM writer attached")
	}
	if e.PCM.ROMSize() != len(romfs.SampleFiles)*0x10000 {
		t.Errorf("expected banked sample image, got %d bytes", e.PCM.ROMSize())
	}
	if len(e.Step()) != 384*2 {
		t.Error("expected one tick of audio at the default rate")
	}
}

func TestOpenEngine_ProgramFileAndImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/a/prog.bin", make([]byte, sound.ProgramROMSize), 0o644)
	afero.WriteFile(fs, "/b/pcm.bin", make([]byte, 0x1000), 0o644)

	e, err := OpenEngine(fs, Options{ROMPath: "/a/prog.bin", PCMPath: "/b/pcm.bin", SampleRate: 44100})
	if err != nil {
		t.Fatalf("OpenEngine failed: %v", err)
	}
	if e.VGM != nil {
		t.Error("expected no VGM writer")
	}
	if e.PCM.SampleRate() != 44100 || e.PCM.ROMSize() != 0x1000 {
		t.Errorf("unexpected chip rate %d size %d", e.PCM.SampleRate(), e.PCM.ROMSize())
	}
}

func TestOpenEngine_MissingSamples(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/a/prog.bin", make([]byte, sound.ProgramROMSize), 0o644)

	if _, err := OpenEngine(fs, Options{ROMPath: "/a/prog.bin"}); err == nil {
		t.Error("expected error without sample ROMs")
	}
}

func TestOpenEngine_RejectsMismatchedLayout(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTestROMs(t, fs, "/roms")

	prog := make([]byte, sound.ProgramROMSize)
	header := uint16(0x2000)
	prog[sound.DefaultLayout.CommandTable] = uint8(header)
	prog[sound.DefaultLayout.CommandTable+1] = uint8(header >> 8)
	prog[header] = 0x40
	afero.WriteFile(fs, filepath.Join("/roms", romfs.ProgramFile), prog, 0o644)

	if _, err := OpenEngine(fs, Options{ROMPath: "/roms"}); err == nil {
		t.Error("expected error for a program image that overruns the channel table")
	}
}

func TestOpenEngine_MutePCM(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTestROMs(t, fs, "/roms")

	for _, mute := range []uint16{0, 1 << 10} {
		e, err := OpenEngine(fs, Options{ROMPath: "/roms", MutePCM: mute})
		if err != nil {
			t.Fatalf("OpenEngine failed: %v", err)
		}
		regs := e.Sound.PCMRegisters()
		regs.SetWave(10, 0x0000, 0x7F)
		regs.SetVolume(10, 0x3F, 0x3F)
		regs.SetPitch(10, 0x80)
		regs.SetFlags(10, 0)

		silent := true
		for _, v := range e.Step() {
			if v != 0 {
				silent = false
			}
		}
		if silent != (mute != 0) {
			t.Errorf("mute 0x%04X: expected silent=%v, got %v", mute, mute != 0, silent)
		}
	}
}

func TestParseCommands(t *testing.T) {
	got, err := ParseCommands("0x81, coin_in,147,")
	if err != nil {
		t.Fatalf("ParseCommands failed: %v", err)
	}
	want := []uint8{0x81, sound.CmdCoinIn, 0x93}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command %d: expected 0x%02X, got 0x%02X", i, want[i], got[i])
		}
	}

	if _, err := ParseCommands("0x100"); err == nil {
		t.Error("expected error for out-of-range byte")
	}
	if _, err := ParseCommands("HONK"); err == nil {
		t.Error("expected error for unknown name")
	}
}
