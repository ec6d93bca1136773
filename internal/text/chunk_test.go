package text

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text unchanged", in: "hello world", want: "hello world"},
		{name: "LF becomes space", in: "a\nb", want: "a b"},
		{name: "CRLF becomes single space", in: "a\r\nb", want: "a b"},
		{name: "bare CR becomes space", in: "a\rb", want: "a b"},
		{name: "consecutive newlines become spaces", in: "a\n\nb", want: "a  b"},
		{name: "empty input", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplit_ShortMessageIsSingleChunk(t *testing.T) {
	msg := "a short message\nwith a newline"

	chunks := Split(msg, DefaultChunkBytes)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != Normalize(msg) {
		t.Errorf("chunk = %q, want normalized message %q", chunks[0], Normalize(msg))
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if chunks := Split("", DefaultChunkBytes); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestSplit_ASCIIExactBoundaries(t *testing.T) {
	// 1250 ASCII characters with limit 600 -> 600 + 600 + 50.
	msg := strings.Repeat("x", 1250)

	chunks := Split(msg, 600)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantLens := []int{600, 600, 50}
	for i, c := range chunks {
		if len(c) != wantLens[i] {
			t.Errorf("chunk %d length = %d, want %d", i, len(c), wantLens[i])
		}
	}
	if strings.Join(chunks, "") != msg {
		t.Error("concatenated chunks do not reproduce the message")
	}
}

func TestSplit_ChunksNeverExceedByteLimit(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		maxBytes int
	}{
		{name: "ascii", msg: strings.Repeat("abc def ", 300), maxBytes: 100},
		{name: "two-byte runes", msg: strings.Repeat("ü", 500), maxBytes: 17},
		{name: "three-byte runes", msg: strings.Repeat("日本語テスト", 100), maxBytes: 50},
		{name: "four-byte runes", msg: strings.Repeat("😀", 80), maxBytes: 10},
		{name: "mixed widths", msg: strings.Repeat("aü日😀", 120), maxBytes: 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.msg, tt.maxBytes)

			for i, c := range chunks {
				if len(c) > tt.maxBytes {
					t.Errorf("chunk %d is %d bytes, limit %d", i, len(c), tt.maxBytes)
				}
				if !utf8.ValidString(c) {
					t.Errorf("chunk %d is not valid UTF-8", i)
				}
			}
			if strings.Join(chunks, "") != Normalize(tt.msg) {
				t.Error("concatenated chunks do not reproduce the normalized message")
			}
		})
	}
}

func TestSplit_MultiByteRuneNeverStraddlesBoundary(t *testing.T) {
	// 599 ASCII bytes followed by a 3-byte rune: the rune does not fit into
	// the first 600-byte chunk and must start the second chunk whole.
	msg := strings.Repeat("a", 599) + "日"

	chunks := Split(msg, 600)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 599 {
		t.Errorf("first chunk is %d bytes, want 599", len(chunks[0]))
	}
	if chunks[1] != "日" {
		t.Errorf("second chunk = %q, want the full rune", chunks[1])
	}
}

func TestSplit_OversizedSingleRuneIsSkipped(t *testing.T) {
	// With a 2-byte limit, a 4-byte emoji cannot be emitted at all.
	msg := "ab😀cd"

	chunks := Split(msg, 2)
	if strings.Join(chunks, "") != "abcd" {
		t.Errorf("expected the oversized rune to be dropped, got %q", strings.Join(chunks, ""))
	}
	for i, c := range chunks {
		if len(c) > 2 {
			t.Errorf("chunk %d exceeds limit: %q", i, c)
		}
	}
}
