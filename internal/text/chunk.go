package text

import "unicode/utf8"

// DefaultChunkBytes is the maximum payload the external encoder accepts
// per call.
const DefaultChunkBytes = 600

// Split breaks message into ordered chunks whose UTF-8 byte length never
// exceeds maxBytes. Newlines are normalized to spaces first, so the chunks
// concatenate back to Normalize(message).
//
// Each candidate slice starts at maxBytes runes and is trimmed one rune at a
// time until it fits, which handles multi-byte runes that would otherwise
// overflow the limit. A single rune wider than maxBytes cannot be split and
// is skipped. Empty input yields an empty slice.
func Split(message string, maxBytes int) []string {
	message = Normalize(message)
	runes := []rune(message)

	var chunks []string
	pos := 0

	for pos < len(runes) {
		end := pos + maxBytes
		if end > len(runes) {
			end = len(runes)
		}
		candidate := runes[pos:end]

		for len(candidate) > 0 && byteLen(candidate) > maxBytes {
			candidate = candidate[:len(candidate)-1]
		}

		if len(candidate) == 0 {
			// Oversized single rune; skip it rather than loop forever.
			pos++
			continue
		}

		chunks = append(chunks, string(candidate))
		pos += len(candidate)
	}

	return chunks
}

func byteLen(runes []rune) int {
	n := 0
	for _, r := range runes {
		n += utf8.RuneLen(r)
	}

	return n
}
