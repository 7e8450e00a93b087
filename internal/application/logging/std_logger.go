package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

var levelRank = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// StdLogger writes leveled lines through the standard log package in either
// "text" or "json" format.
type StdLogger struct {
	mu     sync.Mutex
	out    *log.Logger
	min    int
	format string
	now    func() time.Time
}

// NewStdLogger creates a logger writing to w. Unknown levels fall back to info.
func NewStdLogger(w io.Writer, level, format string) *StdLogger {
	min, ok := levelRank[strings.ToLower(level)]
	if !ok {
		min = levelRank[LevelInfo]
	}
	if format != "json" {
		format = "text"
	}
	return &StdLogger{
		out:    log.New(w, "", 0),
		min:    min,
		format: format,
		now:    time.Now,
	}
}

// Log writes one line if level passes the configured threshold
func (l *StdLogger) Log(level, message string, metadata map[string]interface{}) {
	rank, ok := levelRank[strings.ToLower(level)]
	if !ok {
		rank = levelRank[LevelInfo]
	}
	if rank < l.min {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().UTC().Format(time.RFC3339)
	if l.format == "json" {
		entry := make(map[string]interface{}, len(metadata)+3)
		for k, v := range metadata {
			entry[k] = v
		}
		entry["time"] = ts
		entry["level"] = strings.ToLower(level)
		entry["msg"] = message
		data, err := json.Marshal(entry)
		if err != nil {
			l.out.Printf("%s level=error msg=%q marshal_error=%q", ts, message, err.Error())
			return
		}
		l.out.Print(string(data))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", ts, strings.ToUpper(level), message)
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	l.out.Print(b.String())
}
