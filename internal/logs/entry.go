package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Entry is one decoded log record.
type Entry struct {
	Time       time.Time      `json:"ts"`
	Level      string         `json:"level"`
	Message    string         `json:"msg"`
	Component  string         `json:"component,omitempty"`
	BatchID    string         `json:"batch_id,omitempty"`
	EventType  string         `json:"event_type,omitempty"`
	SourcePath string         `json:"source_path,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

var reservedKeys = map[string]struct{}{
	"ts": {}, "level": {}, "msg": {}, "component": {}, "batch_id": {},
	"event_type": {}, "source_path": {}, "source": {},
}

// Parse decodes a JSON log line. Lines that are not JSON objects report false.
func Parse(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	e := Entry{
		Level:      stringField(raw, "level"),
		Message:    stringField(raw, "msg"),
		Component:  stringField(raw, "component"),
		BatchID:    stringField(raw, "batch_id"),
		EventType:  stringField(raw, "event_type"),
		SourcePath: stringField(raw, "source_path"),
	}
	if ts := stringField(raw, "ts"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Time = t
		}
	}
	for k, v := range raw {
		if _, ok := reservedKeys[k]; ok {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string]any)
		}
		e.Fields[k] = v
	}
	return e, true
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

// SlogLevel maps the entry level back to a slog.Level; unknown values are
// treated as info.
func (e Entry) SlogLevel() slog.Level {
	return parseLevel(e.Level)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// String renders the entry on one line for terminal output.
func (e Entry) String() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", strings.ToUpper(e.Level), e.Message)
	if e.Component != "" {
		fmt.Fprintf(&b, " component=%s", e.Component)
	}
	if e.BatchID != "" {
		fmt.Fprintf(&b, " batch=%s", shortBatch(e.BatchID))
	}
	if e.SourcePath != "" {
		fmt.Fprintf(&b, " file=%s", e.SourcePath)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}

func shortBatch(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Filter selects entries. Zero fields match everything.
type Filter struct {
	MinLevel  slog.Level
	BatchID   string
	EventType string
}

// ParseFilterLevel converts a CLI level name into a Filter level.
func ParseFilterLevel(level string) slog.Level {
	if strings.TrimSpace(level) == "" {
		return slog.LevelDebug
	}
	return parseLevel(level)
}

// Match reports whether e passes the filter. A batch filter matches by
// prefix so the short IDs printed by the console handler work.
func (f Filter) Match(e Entry) bool {
	if e.SlogLevel() < f.MinLevel {
		return false
	}
	if f.BatchID != "" && !strings.HasPrefix(e.BatchID, f.BatchID) {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	return true
}
