package logging

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Activity is an append-only in-memory log of notable events. Every
// warning or error emitted through the session logger lands here as
// well, so diagnostics survive even when the console output scrolls
// away. Entries beyond the cap evict the oldest first.
type Activity struct {
	mu      sync.Mutex
	cap     int
	entries []Entry
}

// Entry is a single activity-log line.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// NewActivity returns an activity log bounded to capacity entries.
// capacity <= 0 selects the default of 500.
func NewActivity(capacity int) *Activity {
	if capacity <= 0 {
		capacity = 500
	}
	return &Activity{cap: capacity}
}

// Append records one entry, evicting the oldest when over capacity.
func (a *Activity) Append(level, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, Entry{Time: time.Now(), Level: level, Message: message})
	if len(a.entries) > a.cap {
		a.entries = a.entries[len(a.entries)-a.cap:]
	}
}

// Entries returns a copy of the recorded entries, oldest first.
func (a *Activity) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// activityCore tees warn-and-above records into an Activity log.
type activityCore struct {
	zapcore.LevelEnabler
	activity *Activity
}

func (c *activityCore) With([]zapcore.Field) zapcore.Core { return c }

func (c *activityCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *activityCore) Write(ent zapcore.Entry, _ []zapcore.Field) error {
	c.activity.Append(ent.Level.String(), ent.Message)
	return nil
}

func (c *activityCore) Sync() error { return nil }

// New builds the session logger and its paired activity log. Console
// output goes to stderr; warnings and errors are additionally captured
// in the returned Activity.
func New(debug bool) (*zap.Logger, *Activity) {
	activity := NewActivity(0)

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}
	tee := base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, &activityCore{LevelEnabler: zap.WarnLevel, activity: activity})
	}))
	return tee, activity
}
