package logger

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ErrorEntry is one link of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries flattens an error chain into display entries.
// zerr links contribute their own message and metadata. Links with an empty
// message only carry metadata, which is attached to the next entry. Joined
// errors are expanded in order. Any other error ends the chain with its full text.
func collectErrorEntries(err error) []ErrorEntry {
	c := &collector{}
	c.walk(err)
	return c.entries
}

type collector struct {
	entries []ErrorEntry
	carry   map[string]any
}

func (c *collector) walk(err error) {
	for err != nil {
		switch e := err.(type) {
		case *zerr.Error:
			if e.Message() == "" {
				c.carry = merge(c.carry, e.Metadata())
				err = e.Unwrap()
				continue
			}
			c.add(e.Message(), e.Metadata())
			err = e.Unwrap()

		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				c.walk(inner)
			}
			return

		default:
			c.add(err.Error(), nil)
			return
		}
	}
}

func (c *collector) add(msg string, meta map[string]any) {
	if len(c.carry) > 0 {
		meta = merge(meta, c.carry)
		c.carry = nil
	}
	c.entries = append(c.entries, ErrorEntry{Message: msg, Metadata: meta})
}

func merge(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	out := make(map[string]any, len(dst)+len(src))
	maps.Copy(out, dst)
	maps.Copy(out, src)
	return out
}

// formatErrorEntries renders entries as:
//
//	Error: <message>
//	       key: value
//
//	  Caused by:
//	    → <message>
//	      key: value
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		head, indent := "Error: ", "       "
		if i > 0 {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			head, indent = "    → ", "      "
		}

		lines = append(lines, head+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}
		for _, key := range sortedKeys(entry.Metadata) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, entry.Metadata[key]))
		}
	}

	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
