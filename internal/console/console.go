package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

const spinnerTick = 100 * time.Millisecond

// Console is the operator-facing output of a run. Everything written to out is
// part of the product; the spinner only ever goes to errOut.
type Console struct {
	out     io.Writer
	errOut  io.Writer
	spinner bool

	step    *color.Color
	success *color.Color
	failure *color.Color
	section *color.Color
}

func New(out io.Writer, errOut io.Writer, spinner bool) *Console {
	return &Console{
		out:     out,
		errOut:  errOut,
		spinner: spinner && errOut != nil,
		step:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		section: color.New(color.Bold),
	}
}

func (c *Console) Step(format string, args ...any) {
	c.println(c.step, "🔎 "+fmt.Sprintf(format, args...))
}

func (c *Console) Success(format string, args ...any) {
	c.println(c.success, "✅ "+fmt.Sprintf(format, args...))
}

func (c *Console) Failure(format string, args ...any) {
	c.println(c.failure, "❌ "+fmt.Sprintf(format, args...))
}

// Section prints a blank line, the title and another blank line.
func (c *Console) Section(icon string, title string) {
	_, _ = fmt.Fprintln(c.out)
	c.println(c.section, icon+" "+title)
	_, _ = fmt.Fprintln(c.out)
}

// Text prints s verbatim followed by a newline.
func (c *Console) Text(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

func (c *Console) println(col *color.Color, s string) {
	_, _ = col.Fprintln(c.out, s)
}

// Wait shows a spinner with description until the returned stop function is called.
// It is a no-op when the spinner is disabled.
func (c *Console) Wait(description string) func() {
	if !c.spinner {
		return func() {}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(c.errOut),
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Go(func() {
		ticker := time.NewTicker(spinnerTick)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	})

	var once sync.Once

	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			_ = bar.Finish()
		})
	}
}
