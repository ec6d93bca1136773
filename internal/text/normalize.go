package text

import "strings"

// Normalize flattens raw input into a single line for transmission.
// Every newline flavor (CRLF, CR, LF) becomes a single space so the
// message is treated as continuous text by the splitter.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")

	return s
}
