package stt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Audio holds PCM samples decoded from a WAV upload alongside their format.
type Audio struct {
	// PCM is raw 16-bit signed little-endian sample data.
	PCM []byte

	// SampleRate in Hz, as declared by the container.
	SampleRate int

	// Channels is the interleaved channel count.
	Channels int
}

// Duration returns the play time of the decoded audio.
func (a Audio) Duration() time.Duration {
	bytesPerSec := a.SampleRate * a.Channels * 2
	if bytesPerSec <= 0 {
		return 0
	}
	return time.Duration(len(a.PCM)) * time.Second / time.Duration(bytesPerSec)
}

// ErrNotWAV is returned by DecodeWAV when the payload is not a RIFF/WAVE
// container with 16-bit PCM audio.
var ErrNotWAV = errors.New("stt: payload is not 16-bit PCM WAV")

// DecodeWAV parses a RIFF/WAVE container and extracts its PCM payload and
// format. Only uncompressed 16-bit PCM is accepted; chunks other than "fmt "
// and "data" are skipped.
func DecodeWAV(wav []byte) (Audio, error) {
	if len(wav) < 12 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return Audio{}, ErrNotWAV
	}

	var audio Audio
	haveFmt := false
	off := 12
	for off+8 <= len(wav) {
		id := string(wav[off : off+4])
		size := int(binary.LittleEndian.Uint32(wav[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(wav) {
			return Audio{}, fmt.Errorf("stt: truncated %q chunk: %w", id, ErrNotWAV)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return Audio{}, fmt.Errorf("stt: short fmt chunk: %w", ErrNotWAV)
			}
			format := binary.LittleEndian.Uint16(wav[body : body+2])
			bits := binary.LittleEndian.Uint16(wav[body+14 : body+16])
			if format != 1 || bits != 16 {
				return Audio{}, fmt.Errorf("stt: format=%d bits=%d: %w", format, bits, ErrNotWAV)
			}
			audio.Channels = int(binary.LittleEndian.Uint16(wav[body+2 : body+4]))
			audio.SampleRate = int(binary.LittleEndian.Uint32(wav[body+4 : body+8]))
			haveFmt = true
		case "data":
			audio.PCM = wav[body : body+size]
		}

		// Chunks are word aligned.
		off = body + size + size%2
	}

	if !haveFmt || audio.PCM == nil {
		return Audio{}, fmt.Errorf("stt: missing fmt or data chunk: %w", ErrNotWAV)
	}
	if audio.SampleRate <= 0 || audio.Channels <= 0 {
		return Audio{}, fmt.Errorf("stt: invalid format header: %w", ErrNotWAV)
	}
	return audio, nil
}

// EncodeWAV wraps raw 16-bit signed little-endian PCM data in a standard
// RIFF/WAV container.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2
	dataSize := len(pcm)

	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(blockAlign*8/channels))

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)

	return buf
}
