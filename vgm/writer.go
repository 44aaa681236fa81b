// Package vgm records the sound board's chip traffic as a VGM 1.51 log:
// YM2151 register writes, Sega PCM control RAM changes and the sample ROM
// the PCM chip reads.
package vgm

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// SampleRate is the VGM timebase in samples per second.
const SampleRate = 44100

// Default chip clocks on the OutRun sound board.
const (
	DefaultYM2151Clock  = 4000000
	DefaultSegaPCMClock = 15625000
)

const (
	version    = 0x151
	headerSize = 0x80

	// Bank shift 12 with bank mask 0x70: 64KB banks selected by flag bits 4-6.
	segaPCMInterface = 0x0070000C

	pcmRegisterSize = 0x100
)

// Header offsets.
const (
	offEOF          = 0x04
	offVersion      = 0x08
	offTotalSamples = 0x18
	offYM2151Clock  = 0x30
	offDataOffset   = 0x34
	offSegaPCMClock = 0x38
	offSegaPCMIntf  = 0x3C
)

// Command bytes.
const (
	cmdYM2151    = 0x54
	cmdWait      = 0x61
	cmdWait735   = 0x62
	cmdWait882   = 0x63
	cmdEnd       = 0x66
	cmdDataBlock = 0x67
	cmdSegaPCM   = 0xC0
	cmdWaitShort = 0x70 // 0x70-0x7F: wait 1-16 samples

	blockSegaPCMROM = 0x80
)

// Writer accumulates a VGM command stream. It implements the FM chip
// interface of the sound program so it can stand in for the YM2151: every
// register write is logged and the chip never reports busy.
type Writer struct {
	ymClock  uint32
	pcmClock uint32

	data         []byte
	totalSamples uint32

	pcmShadow [pcmRegisterSize]byte
	pcmSynced bool
	pcmROM    []byte
}

// NewWriter creates an empty log using the default chip clocks.
func NewWriter() *Writer {
	return &Writer{
		ymClock:  DefaultYM2151Clock,
		pcmClock: DefaultSegaPCMClock,
		data:     make([]byte, 0, 64*1024),
	}
}

// SetPCMROM attaches the sample ROM. It is stored as a data block ahead of
// the command stream so players can render the PCM channels.
func (w *Writer) SetPCMROM(rom []byte) {
	w.pcmROM = rom
}

// WriteRegister logs a YM2151 register write.
func (w *Writer) WriteRegister(reg, val uint8) {
	w.data = append(w.data, cmdYM2151, reg, val)
}

// ReadStatus reports an idle chip with no timer overflow.
func (w *Writer) ReadStatus() uint8 {
	return 0
}

// CapturePCM logs every byte of the PCM control RAM that changed since the
// last capture or sync. The first capture logs the whole register file.
func (w *Writer) CapturePCM(regs []byte) {
	n := min(len(regs), pcmRegisterSize)
	for i := 0; i < n; i++ {
		if w.pcmSynced && regs[i] == w.pcmShadow[i] {
			continue
		}
		w.data = append(w.data, cmdSegaPCM, uint8(i), uint8(i>>8), regs[i])
		w.pcmShadow[i] = regs[i]
	}
	w.pcmSynced = true
}

// SyncPCM records regs as the chip's current state without logging it.
// Hosts call this after their own PCM model has advanced the registers, so
// only the sound program's writes reach the log.
func (w *Writer) SyncPCM(regs []byte) {
	if !w.pcmSynced {
		return
	}
	copy(w.pcmShadow[:], regs)
}

// Wait advances the log by n samples at SampleRate.
func (w *Writer) Wait(n int) {
	if n <= 0 {
		return
	}
	w.totalSamples += uint32(n)
	for n > 0 {
		switch {
		case n == 735:
			w.data = append(w.data, cmdWait735)
			return
		case n == 882:
			w.data = append(w.data, cmdWait882)
			return
		case n <= 16:
			w.data = append(w.data, cmdWaitShort|uint8(n-1))
			return
		}
		step := min(n, 0xFFFF)
		w.data = append(w.data, cmdWait, uint8(step), uint8(step>>8))
		n -= step
	}
}

// TotalSamples returns the length of the log in samples.
func (w *Writer) TotalSamples() uint32 {
	return w.totalSamples
}

// Bytes returns the complete, uncompressed VGM file.
func (w *Writer) Bytes() []byte {
	var block []byte
	if len(w.pcmROM) > 0 {
		block = make([]byte, 7+8, 7+8+len(w.pcmROM))
		block[0] = cmdDataBlock
		block[1] = cmdEnd
		block[2] = blockSegaPCMROM
		binary.LittleEndian.PutUint32(block[3:], uint32(8+len(w.pcmROM)))
		binary.LittleEndian.PutUint32(block[7:], uint32(len(w.pcmROM)))
		binary.LittleEndian.PutUint32(block[11:], 0)
		block = append(block, w.pcmROM...)
	}

	size := headerSize + len(block) + len(w.data) + 1
	out := make([]byte, headerSize, size)
	copy(out, "Vgm ")
	binary.LittleEndian.PutUint32(out[offEOF:], uint32(size-offEOF))
	binary.LittleEndian.PutUint32(out[offVersion:], version)
	binary.LittleEndian.PutUint32(out[offTotalSamples:], w.totalSamples)
	binary.LittleEndian.PutUint32(out[offYM2151Clock:], w.ymClock)
	binary.LittleEndian.PutUint32(out[offDataOffset:], headerSize-offDataOffset)
	binary.LittleEndian.PutUint32(out[offSegaPCMClock:], w.pcmClock)
	binary.LittleEndian.PutUint32(out[offSegaPCMIntf:], segaPCMInterface)

	out = append(out, block...)
	out = append(out, w.data...)
	out = append(out, cmdEnd)
	return out
}

// WriteTo writes the uncompressed file to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := dst.Write(w.Bytes())
	return int64(n), err
}

// Save writes the log to path on fs. Paths ending in .vgz are gzipped.
func (w *Writer) Save(fs afero.Fs, path string) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create vgm: %w", err)
	}
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(path), ".vgz") {
		if _, err := w.WriteTo(f); err != nil {
			return fmt.Errorf("write vgm: %w", err)
		}
		return nil
	}

	gz, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("create vgz: %w", err)
	}
	if _, err := w.WriteTo(gz); err != nil {
		gz.Close()
		return fmt.Errorf("write vgz: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("write vgz: %w", err)
	}
	return nil
}
