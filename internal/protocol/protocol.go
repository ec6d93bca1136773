// Package protocol describes the ggwave transmission protocols selectable
// when encoding a message. The table mirrors the protocol ids understood by
// the external codec and is fixed for the lifetime of the process.
package protocol

import "fmt"

// DefaultID is the protocol used when none is configured ([U] Fastest).
const DefaultID = 5

// Protocol is one entry of the ggwave modulation table.
type Protocol struct {
	ID   int
	Name string
	Desc string
}

var table = []Protocol{
	{0, "Normal", "Standard audible mode with good reliability"},
	{1, "Fast", "Faster audible mode with good reliability"},
	{2, "Fastest", "Fastest audible mode with reduced reliability"},
	{3, "[U] Normal", "Standard ultrasound mode with good reliability"},
	{4, "[U] Fast", "Faster ultrasound mode with good reliability"},
	{5, "[U] Fastest", "Fastest ultrasound mode with reduced reliability"},
	{6, "[DT] Normal", "Standard dual-tone mode with good reliability"},
	{7, "[DT] Fast", "Faster dual-tone mode with good reliability"},
	{8, "[DT] Fastest", "Fastest dual-tone mode with reduced reliability"},
	{9, "[MT] Normal", "Standard mono-tone mode with good reliability"},
	{10, "[MT] Fast", "Faster mono-tone mode with good reliability"},
	{11, "[MT] Fastest", "Fastest mono-tone mode with reduced reliability"},
}

// All returns a copy of the protocol table in id order.
func All() []Protocol {
	return append([]Protocol(nil), table...)
}

// ByID returns the protocol for id, or an error if id is out of range.
func ByID(id int) (Protocol, error) {
	if id < 0 || id >= len(table) {
		return Protocol{}, fmt.Errorf("invalid protocol id %d (valid range 0-%d)", id, len(table)-1)
	}
	return table[id], nil
}
