package speech

import (
	"encoding/binary"
	"fmt"
	"os"
)

// ReadWAVFile loads a PCM16 WAV file and returns its samples as float32 in
// [-1, 1] along with the sample rate. Stereo input is downmixed to mono.
func ReadWAVFile(path string) ([]float32, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("speech: read audio file: %w", err)
	}
	return decodeWAV(data)
}

// decodeWAV parses a RIFF/WAVE container. Only 16-bit PCM is accepted;
// unknown chunks are skipped.
func decodeWAV(data []byte) ([]float32, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("speech: not a RIFF/WAVE file")
	}

	var (
		sampleRate int
		channels   int
		haveFmt    bool
	)
	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkLen > len(data) {
			return nil, 0, fmt.Errorf("speech: truncated %s chunk", chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkLen < 16 {
				return nil, 0, fmt.Errorf("speech: malformed fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, 0, fmt.Errorf("speech: unsupported audio format %d, need PCM", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if bits != 16 {
				return nil, 0, fmt.Errorf("speech: unsupported bit depth %d, need 16", bits)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, 0, fmt.Errorf("speech: data chunk before fmt chunk")
			}
			if channels < 1 || sampleRate <= 0 {
				return nil, 0, fmt.Errorf("speech: malformed fmt chunk")
			}
			frames := chunkLen / (2 * channels)
			samples := make([]float32, frames)
			for i := 0; i < frames; i++ {
				var sum float32
				for c := 0; c < channels; c++ {
					off := body + (i*channels+c)*2
					sum += float32(int16(binary.LittleEndian.Uint16(data[off:off+2]))) / 32767
				}
				samples[i] = sum / float32(channels)
			}
			return samples, sampleRate, nil
		}

		// Chunks are word-aligned.
		pos = body + chunkLen
		if chunkLen%2 == 1 {
			pos++
		}
	}
	return nil, 0, fmt.Errorf("speech: no data chunk found")
}
