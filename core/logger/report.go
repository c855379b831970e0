package logger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// StrCounter counts the number of times each string was seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Total returns the sum of all counts.
func (s *StrCounter) Total() int {
	var total int
	for _, v := range s.internal {
		total += v
	}
	return total
}

// Entries returns the counted keys sorted by descending count, ties
// broken alphabetically.
func (s *StrCounter) Entries() []CountEntry {
	out := make([]CountEntry, 0, len(s.internal))
	for k, v := range s.internal {
		out = append(out, CountEntry{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

type CountEntry struct {
	Key   string
	Count int
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Sessions           int        `json:"sessions"`
	Commands           StrCounter `json:"commands"`
	Builtins           StrCounter `json:"builtins"`
	Outcomes           StrCounter `json:"outcomes"`
	BackgroundLaunches int        `json:"background_launches"`
	InvalidInvocations StrCounter `json:"invalid_invocations"`
}

// Update folds one log entry into the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch {
	case le.SessionStart != nil:
		r.Sessions++
	case le.RunCommand != nil:
		if len(le.RunCommand.Command) > 0 {
			r.Commands.Increment(le.RunCommand.Command[0])
		}
		if le.RunCommand.Background {
			r.BackgroundLaunches++
		}
	case le.CommandDone != nil:
		r.Outcomes.Increment(le.CommandDone.Status)
	case le.BuiltinUsed != nil:
		r.Builtins.Increment(le.BuiltinUsed.Name)
	case le.InvalidInvocation != nil:
		key := le.InvalidInvocation.Error
		if len(le.InvalidInvocation.Command) > 0 {
			key = fmt.Sprintf("%s: %s", strings.Join(le.InvalidInvocation.Command, " "), key)
		}
		r.InvalidInvocations.Increment(key)
	default:
		r.InvalidEntries.Increment("unknown")
	}
}
