package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// Spinner animates a status line with the elapsed time until it is stopped
// or its context ends. The line is erased either way.
type Spinner struct {
	w       io.Writer
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	begin   time.Time

	mu      sync.Mutex
	width   int // visible width of the last line drawn
	ticks   int
	started bool
	once    sync.Once
	stopped chan struct{}
}

// newSpinner returns a spinner writing to w. It stops by itself when ctx
// ends.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. Calling it twice has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.begin = time.Now()
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.draw()
			}
		}
	}()
}

func (s *Spinner) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := spinnerFrames[s.ticks%len(spinnerFrames)]
	elapsed := time.Since(s.begin).Truncate(100 * time.Millisecond)
	line := fmt.Sprintf("%s %s", styleIconSpinner.Render(frame), StyleDim.Render(fmt.Sprintf("%s (%s)", s.message, elapsed)))
	fmt.Fprintf(s.w, "\r%s", line)
	s.width = max(s.width, lipgloss.Width(line))
	s.ticks++
}

// Stop ends the animation and erases the line. It may be called any number
// of times, before or after Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		started := s.started
		s.started = true
		s.mu.Unlock()

		s.cancel()
		if started {
			<-s.stopped
		}
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%*s\r", s.width, "")
	s.width = 0
}

// Frames returns how many animation frames were drawn.
func (s *Spinner) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// StopWithSuccess stops the spinner and prints message as a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints message as an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's parent context has ended. Stop
// alone does not cancel it.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
