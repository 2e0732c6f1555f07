package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const (
	spinnerTick = 100 * time.Millisecond
	clearLine   = "\r\033[K"
)

var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

// Spinner shows a message with elapsed seconds while the model thinks.
// Reasoning calls can take minutes, so the counter matters more than the
// animation.
type Spinner struct {
	w       io.Writer
	message string
	now     func() time.Time

	quit     chan struct{}
	finished chan struct{}
	once     sync.Once
}

func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		now:      time.Now,
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start draws frames until Stop is called.
func (s *Spinner) Start() {
	started := s.now()
	go func() {
		defer close(s.finished)
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-s.quit:
				fmt.Fprint(s.w, clearLine)
				return
			case <-ticker.C:
				secs := int(s.now().Sub(started).Seconds())
				fmt.Fprintf(s.w, "\r  %s %s %s",
					StylePurple.Render(spinnerFrames[frame%len(spinnerFrames)]),
					s.message,
					Dim(fmt.Sprintf("%dс", secs)))
			}
		}
	}()
}

// Stop clears the line and waits for the drawing goroutine. Repeated calls
// are no-ops.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.quit)
		<-s.finished
	})
}

// StartSpinner starts a spinner and hands back its Stop.
func StartSpinner(w io.Writer, message string) func() {
	s := NewSpinner(w, message)
	s.Start()
	return s.Stop
}
