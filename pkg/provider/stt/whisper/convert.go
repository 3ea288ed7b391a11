package whisper

import "encoding/binary"

// pcmScale normalises int16 PCM samples into [-1.0, 1.0].
const pcmScale = 1.0 / 32768.0

// pcmToFloat32 converts 16-bit signed little-endian PCM, the format browser
// recorders and the WAV decoder hand us, into the float32 samples whisper.cpp
// wants. A trailing odd byte is ignored.
func pcmToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := range n {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(s) * pcmScale
	}
	return samples
}

// pcmToFloat32Mono averages all channels per frame, since the model only
// takes mono input. With one channel it defers to pcmToFloat32.
func pcmToFloat32Mono(pcm []byte, channels int) []float32 {
	if channels <= 1 {
		return pcmToFloat32(pcm)
	}
	frames := len(pcm) / (2 * channels)
	mono := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range channels {
			idx := (i*channels + ch) * 2
			s := int16(binary.LittleEndian.Uint16(pcm[idx : idx+2]))
			sum += float32(s) * pcmScale
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
