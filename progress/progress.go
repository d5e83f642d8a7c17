// Package progress provides the progress sinks a pool.Runner reports to.
//
// A sink is purely observational: the runner calls Start once with the
// number of units, Increment once per completed unit, and Finish when the
// run returns. Sinks never influence results.
package progress

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Sink receives "advance by one, total known" updates.
type Sink interface {
	Start(total int)
	Increment()
	Finish()
}

// Nop is a Sink that discards every update.
type Nop struct{}

func (Nop) Start(int)  {}
func (Nop) Increment() {}
func (Nop) Finish()    {}

// Bar renders a terminal progress bar.
type Bar struct {
	out         io.Writer
	description string

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// BarOption configures a Bar.
type BarOption func(*Bar)

// WithWriter sets where the bar is drawn. Defaults to os.Stderr.
func WithWriter(w io.Writer) BarOption {
	return func(b *Bar) {
		if w != nil {
			b.out = w
		}
	}
}

// WithDescription sets the label drawn before the bar.
func WithDescription(desc string) BarOption {
	return func(b *Bar) {
		b.description = desc
	}
}

// NewBar creates a Bar. Drawing starts on Start.
func NewBar(opts ...BarOption) *Bar {
	b := &Bar{
		out:         os.Stderr,
		description: "Running tasks",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bar) Start(total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionSetDescription(b.description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("task"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
	)
}

func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Add(1)
	}
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Finish()
		_, _ = io.WriteString(b.out, "\n")
		b.bar = nil
	}
}
