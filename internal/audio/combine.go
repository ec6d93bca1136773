package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Combine concatenates same-format WAV payloads at the container level: the
// fmt parameters are taken verbatim from the first input and every input's
// raw data chunk is appended in order. Later inputs are NOT validated against
// the first one; feeding segments with differing formats produces a garbled
// result. All segments in this pipeline come from one encoder configuration,
// so the permissive behavior is deliberate.
func Combine(inputs [][]byte) ([]byte, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no WAV inputs to combine")
	}

	fmtChunk, err := findChunk(inputs[0], "fmt ")
	if err != nil {
		return nil, fmt.Errorf("first input: %w", err)
	}

	var payload []byte
	for i, in := range inputs {
		data, err := findChunk(in, "data")
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		payload = append(payload, data...)
	}

	riffSize := 4 + (8 + len(fmtChunk)) + (8 + len(payload))

	out := make([]byte, 0, 8+riffSize)
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(riffSize))
	out = append(out, "WAVE"...)
	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(fmtChunk)))
	out = append(out, fmtChunk...)
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)

	return out, nil
}

// CombineFiles reads every input WAV in order and writes their combination
// (see Combine) to outPath.
func CombineFiles(paths []string, outPath string) error {
	inputs := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read segment: %w", err)
		}
		inputs = append(inputs, data)
	}

	combined, err := Combine(inputs)
	if err != nil {
		return err
	}

	return os.WriteFile(outPath, combined, 0o644)
}

// findChunk walks the RIFF chunk list and returns the body of the first
// sub-chunk with the given 4-byte id.
func findChunk(data []byte, id string) ([]byte, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))

		body := data[offset+8:]
		if size > len(body) {
			size = len(body) // tolerate truncated final chunk
		}
		if chunkID == id {
			return body[:size], nil
		}

		offset += 8 + size
		// Pad to even boundary.
		if size%2 != 0 {
			offset++
		}
	}

	return nil, fmt.Errorf("chunk %q not found", id)
}
