package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sonemaro/finditor/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements logger.Logger interface for testing
type mockLogger struct {
	mu   sync.Mutex
	logs []string
}

func (m *mockLogger) add(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, msg)
}

func (m *mockLogger) Info(msg string)                               { m.add("INFO: " + msg) }
func (m *mockLogger) Debug(msg string)                              { m.add("DEBUG: " + msg) }
func (m *mockLogger) Error(msg string)                              { m.add("ERROR: " + msg) }
func (m *mockLogger) Warn(msg string)                               { m.add("WARN: " + msg) }
func (m *mockLogger) Trace(msg string)                              { m.add("TRACE: " + msg) }
func (m *mockLogger) WithFields(fields logger.Fields) logger.Logger { return m }

type testWriter struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.Write(p)
}

func (w *testWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.String()
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name    string
		style   Style
		stats   bool
		run     func(Progress)
		want    []string
		notWant []string
	}{
		{
			name:  "bar completes at full width",
			style: StyleBar,
			run: func(p Progress) {
				p.Start("Hashing", 4)
				for i := 0; i < 4; i++ {
					p.Increment("file.txt", 10)
				}
				time.Sleep(30 * time.Millisecond)
				p.Complete("Hashing complete")
			},
			want: []string{"[==========] 100% Hashing complete (4/4)"},
		},
		{
			name:  "bar shows the current item while running",
			style: StyleBar,
			run: func(p Progress) {
				p.Start("Hashing", 4)
				p.Increment("/tmp/a.txt", 10)
				time.Sleep(40 * time.Millisecond)
				p.Stop()
			},
			want: []string{"(1/4) /tmp/a.txt", "25%"},
		},
		{
			name:  "spinner marks failures",
			style: StyleSpinner,
			run: func(p Progress) {
				p.Start("Hashing", 2)
				p.Increment("a", 1)
				p.Error("Hashing failed")
			},
			want: []string{"✗ Hashing failed 1/2"},
		},
		{
			name:  "simple style with stats",
			style: StyleSimple,
			stats: true,
			run: func(p Progress) {
				p.Start("Hashing", 2)
				p.Increment("a", 2048)
				p.Increment("b", 2048)
				p.Complete("Done")
			},
			want: []string{"Done (100%)", "4.1 kB"},
		},
		{
			name:  "hidden after completion",
			style: StyleSimple,
			run: func(p Progress) {
				p.Start("Hashing", 1)
				p.Increment("a", 1)
				p.Complete("Done")
			},
			notWant: []string{"Done"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &testWriter{}
			log := &mockLogger{}
			p := New(Config{
				Style:             tt.style,
				Width:             30,
				ShowStats:         tt.stats,
				NoColor:           true,
				RefreshRate:       5 * time.Millisecond,
				HideAfterComplete: tt.name == "hidden after completion",
				Writer:            w,
			}, log)

			tt.run(p)

			out := w.String()
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestConcurrentIncrement(t *testing.T) {
	w := &testWriter{}
	p := New(Config{Style: StyleBar, Width: 40, NoColor: true, RefreshRate: time.Millisecond, Writer: w}, &mockLogger{})

	p.Start("Hashing", 100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Increment("f", 1)
		}()
	}
	wg.Wait()

	p.Complete("Done")
	assert.Contains(t, w.String(), "(100/100)")
}

func TestStopIsIdempotent(t *testing.T) {
	w := &testWriter{}
	p := New(Config{Writer: w, NoColor: true, RefreshRate: time.Millisecond}, &mockLogger{})

	p.Stop()
	p.Start("Working", 1)
	p.Stop()
	p.Stop()
	p.Complete("Done")

	assert.True(t, strings.HasSuffix(w.String(), "\n"))
	assert.False(t, p.IsSupportedTerminal())
}

func TestShortenItem(t *testing.T) {
	assert.Equal(t, "short", shortenItem("short", 10))
	assert.Equal(t, "…/c/d.txt", shortenItem("/a/b/c/d.txt", 9))
	assert.Equal(t, "anything", shortenItem("anything", 0))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", formatDuration(0))
	assert.Equal(t, "5s", formatDuration(4600*time.Millisecond))
	assert.Equal(t, "1m30s", formatDuration(90*time.Second))
}

func TestDiscard(t *testing.T) {
	p := Discard()
	p.Start("x", 1)
	p.Increment("a", 1)
	p.Complete("done")
	p.Stop()
	require.False(t, p.IsSupportedTerminal())
}
