package test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/go-logfmt/logfmt"
	"go.uber.org/atomic"
)

var _ log.Logger = (*TestingLogger)(nil)

// TestingLogger writes logfmt lines to the test log and keeps them so tests
// can assert on what a component logged. Lines logged after the test ended
// are dropped.
type TestingLogger struct {
	t    testing.TB
	mtx  sync.Mutex
	done *atomic.Bool

	lines []string
}

func NewTestingLogger(t testing.TB) *TestingLogger {
	logger := &TestingLogger{
		t:    t,
		done: atomic.NewBool(false),
	}
	t.Cleanup(func() {
		logger.done.Store(true)
	})
	return logger
}

func (l *TestingLogger) Log(keyvals ...interface{}) error {
	if l.done.Load() {
		return nil
	}

	line, err := logfmt.MarshalKeyvals(keyvals...)
	if err != nil {
		return err
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.done.Load() {
		return nil
	}
	l.lines = append(l.lines, string(line))
	l.t.Log(time.Now().Format(time.StampMicro), string(line))
	return nil
}

// Lines returns the logged lines that contain every one of the substrings.
func (l *TestingLogger) Lines(substrings ...string) []string {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	var lines []string
next:
	for _, line := range l.lines {
		for _, s := range substrings {
			if !strings.Contains(line, s) {
				continue next
			}
		}
		lines = append(lines, line)
	}
	return lines
}
