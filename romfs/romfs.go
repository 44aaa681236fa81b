// Package romfs loads the sound board's ROM set from a filesystem.
package romfs

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// ProgramFile is the Z80 sound program ROM.
const ProgramFile = "epr-10187.88"

// SampleFiles are the PCM sample ROMs in bank order.
var SampleFiles = []string{
	"opr-10193.66",
	"opr-10192.67",
	"opr-10191.68",
	"opr-10190.69",
	"opr-10189.70",
	"opr-10188.71",
}

const (
	sampleROMSize = 0x8000
	bankSize      = 0x10000
)

// Set is a loaded ROM set.
type Set struct {
	Program []byte
	Samples []byte
}

// Load reads the program ROM and sample ROMs from dir.
func Load(fs afero.Fs, dir string) (*Set, error) {
	prog, err := LoadProgram(fs, filepath.Join(dir, ProgramFile))
	if err != nil {
		return nil, err
	}
	samples, err := LoadSamples(fs, dir)
	if err != nil {
		return nil, err
	}
	return &Set{Program: prog, Samples: samples}, nil
}

// LoadProgram reads the sound program ROM.
func LoadProgram(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program ROM: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("program ROM is empty")
	}
	return data, nil
}

// LoadSamples builds the PCM sample address space. A directory holding the
// individual sample ROMs gets one 64KB bank per ROM, each 32KB ROM mirrored
// into the upper half of its bank. A plain file is taken as a prebuilt
// image.
func LoadSamples(fs afero.Fs, path string) ([]byte, error) {
	isDir, err := afero.IsDir(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample ROMs: %w", err)
	}
	if !isDir {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read sample image: %w", err)
		}
		return data, nil
	}

	image := make([]byte, len(SampleFiles)*bankSize)
	for bank, name := range SampleFiles {
		data, err := afero.ReadFile(fs, filepath.Join(path, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read sample ROM %s: %w", name, err)
		}
		if len(data) != sampleROMSize {
			return nil, fmt.Errorf("sample ROM %s: size %d, want %d", name, len(data), sampleROMSize)
		}
		base := bank * bankSize
		copy(image[base:], data)
		copy(image[base+sampleROMSize:], data)
	}
	return image, nil
}
