package romfs

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeROMSet(t *testing.T, fs afero.Fs, dir string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, ProgramFile), []byte{0xF3, 0xC3, 0x00, 0x01}, 0o644))
	for i, name := range SampleFiles {
		data := make([]byte, sampleROMSize)
		data[0] = byte(0x10 + i)
		data[sampleROMSize-1] = byte(0x20 + i)
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, name), data, 0o644))
	}
}

func TestLoad_BanksAndMirrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeROMSet(t, fs, "/roms/outrun")

	set, err := Load(fs, "/roms/outrun")
	require.NoError(t, err)

	assert.Equal(t, []byte{0xF3, 0xC3, 0x00, 0x01}, set.Program)
	require.Len(t, set.Samples, len(SampleFiles)*bankSize)
	for bank := range SampleFiles {
		base := bank * bankSize
		assert.Equalf(t, byte(0x10+bank), set.Samples[base], "bank %d start", bank)
		assert.Equalf(t, byte(0x10+bank), set.Samples[base+sampleROMSize], "bank %d mirror", bank)
		assert.Equalf(t, byte(0x20+bank), set.Samples[base+bankSize-1], "bank %d end", bank)
	}
}

func TestLoad_MissingProgram(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeROMSet(t, fs, "/roms")
	require.NoError(t, fs.Remove(filepath.Join("/roms", ProgramFile)))

	_, err := Load(fs, "/roms")
	assert.ErrorContains(t, err, "failed to read program ROM")
}

func TestLoadProgram_Empty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "prog.bin", nil, 0o644))

	_, err := LoadProgram(fs, "prog.bin")
	assert.EqualError(t, err, "program ROM is empty")
}

func TestLoadSamples_WrongSize(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeROMSet(t, fs, "/roms")
	require.NoError(t, afero.WriteFile(fs, filepath.Join("/roms", SampleFiles[2]), make([]byte, 100), 0o644))

	_, err := LoadSamples(fs, "/roms")
	assert.ErrorContains(t, err, "size 100")
}

func TestLoadSamples_MissingROM(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeROMSet(t, fs, "/roms")
	require.NoError(t, fs.Remove(filepath.Join("/roms", SampleFiles[5])))

	_, err := LoadSamples(fs, "/roms")
	assert.ErrorContains(t, err, SampleFiles[5])
}

func TestLoadSamples_PrebuiltImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	image := []byte{1, 2, 3}
	require.NoError(t, afero.WriteFile(fs, "/pcm.bin", image, 0o644))

	data, err := LoadSamples(fs, "/pcm.bin")
	require.NoError(t, err)
	assert.Equal(t, image, data)
}

func TestLoadSamples_NotFound(t *testing.T) {
	_, err := LoadSamples(afero.NewMemMapFs(), "/nowhere")
	assert.Error(t, err)
}
