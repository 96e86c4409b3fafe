package render

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerFrames contains the braille spinner animation frames
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner manages an animated spinner display on a single line.
type Spinner struct {
	writer   io.Writer
	style    lipgloss.Style
	frames   []string
	interval time.Duration
	mu       sync.Mutex
	running  bool
	message  string
	done     chan struct{} // Channel to signal spinner has fully stopped
}

// NewSpinner creates a new spinner with default frames.
func NewSpinner(writer io.Writer, style lipgloss.Style) *Spinner {
	return &Spinner{
		writer:   writer,
		style:    style,
		frames:   SpinnerFrames,
		interval: 80 * time.Millisecond,
	}
}

// SetMessage sets the message to display after the spinner
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Start begins the spinner animation and returns a stop function.
// The stop function blocks until the spinner has fully stopped and cleared the line.
func (s *Spinner) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return func() { cancel() }
	}
	s.running = true
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.run(ctx)

	return func() {
		cancel()
		<-done
	}
}

func (s *Spinner) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	frameIndex := 0
	s.renderFrame(frameIndex)

	for {
		select {
		case <-ctx.Done():
			s.clearLine()
			s.mu.Lock()
			s.running = false
			done := s.done
			s.mu.Unlock()
			close(done)
			return
		case <-ticker.C:
			frameIndex = (frameIndex + 1) % len(s.frames)
			s.renderFrame(frameIndex)
		}
	}
}

func (s *Spinner) renderFrame(frameIndex int) {
	s.mu.Lock()
	message := s.message
	s.mu.Unlock()

	frame := s.style.Render(s.frames[frameIndex])

	// Move cursor to beginning of line, clear line, render frame
	if message != "" {
		fmt.Fprintf(s.writer, "\r\033[K%s %s", frame, message)
	} else {
		fmt.Fprintf(s.writer, "\r\033[K%s", frame)
	}
}

func (s *Spinner) clearLine() {
	fmt.Fprintf(s.writer, "\r\033[K")
}
