package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner animates an indeterminate progress line while a long operation
// runs. A nil Spinner is inert, so callers never branch on whether progress
// display is enabled.
type Spinner struct {
	out  io.Writer
	bar  *progressbar.ProgressBar
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewSpinner builds a spinner writing to out, normally stderr.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out}
}

func (s *Spinner) Start(desc string) {
	if s == nil {
		return
	}
	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
	)
	s.done = make(chan struct{})
	s.wg.Add(1)
	// The animation ticks on wall time so the spinner keeps moving while
	// the caller sleeps or blocks on I/O.
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				_ = s.bar.Add(1)
			}
		}
	}()
}

func (s *Spinner) Describe(desc string) {
	if s == nil || s.bar == nil {
		return
	}
	s.bar.Describe(desc)
}

// Stop finalizes the spinner with a closing line.
func (s *Spinner) Stop(final string) {
	if s == nil || s.bar == nil {
		return
	}
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		_ = s.bar.Clear()
		fmt.Fprintln(s.out, final)
	})
}

// Discard tears the spinner down without a closing line, for deferred
// cleanup on paths that already stopped it.
func (s *Spinner) Discard() {
	if s == nil || s.bar == nil {
		return
	}
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		_ = s.bar.Clear()
	})
}
