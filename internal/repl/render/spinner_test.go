package render

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerFrames(t *testing.T) {
	assert.Len(t, SpinnerFrames, 10)
	assert.Equal(t, "⠋", SpinnerFrames[0])
}

func TestSpinnerStartStop(t *testing.T) {
	var buf syncBuffer
	spinner := NewSpinner(&buf, lipgloss.NewStyle())
	spinner.SetMessage("Test")

	stop := spinner.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	stop()

	output := buf.String()
	assert.Contains(t, output, "Test")
	assert.Contains(t, output, SpinnerFrames[0])
	assert.True(t, strings.HasSuffix(output, "\r\033[K"), "spinner should clear its line when stopped")
}

func TestSpinnerStopsWithContext(t *testing.T) {
	var buf syncBuffer
	spinner := NewSpinner(&buf, lipgloss.NewStyle())

	ctx, cancel := context.WithCancel(context.Background())
	stop := spinner.Start(ctx)
	cancel()
	stop()

	spinner.mu.Lock()
	defer spinner.mu.Unlock()
	assert.False(t, spinner.running)
}

func TestSpinnerDoubleStart(t *testing.T) {
	var buf syncBuffer
	spinner := NewSpinner(&buf, lipgloss.NewStyle())

	stop1 := spinner.Start(context.Background())
	stop2 := spinner.Start(context.Background())

	stop2()
	stop1()
}
