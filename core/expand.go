package core

import (
	"strconv"
	"strings"
)

// ExpandPID replaces every occurrence of "$$" in line with pid in
// decimal, so "$$$$" becomes two pid strings. Expansion happens on the
// raw line, before tokenization.
func ExpandPID(line string, pid int) string {
	if !strings.Contains(line, "$$") {
		return line
	}
	return strings.ReplaceAll(line, "$$", strconv.Itoa(pid))
}
