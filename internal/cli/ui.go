package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Terminal palette for command output. Kept deliberately small: one accent
// for in-progress work, good/warn/bad for outcomes, faint for everything
// that should not compete with the artifact paths.
var (
	colorAccent = lipgloss.Color("44")
	colorGood   = lipgloss.Color("78")
	colorWarn   = lipgloss.Color("214")
	colorBad    = lipgloss.Color("203")
	colorBright = lipgloss.Color("252")
	colorFaint  = lipgloss.Color("242")
)

var (
	styleAccent = lipgloss.NewStyle().Foreground(colorAccent)
	styleGood   = lipgloss.NewStyle().Foreground(colorGood)
	styleWarn   = lipgloss.NewStyle().Foreground(colorWarn)
	styleBad    = lipgloss.NewStyle().Foreground(colorBad)
	styleBright = lipgloss.NewStyle().Foreground(colorBright)
	styleFaint  = lipgloss.NewStyle().Foreground(colorFaint)

	// StyleTitle is exported for the interactive pickers.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

// printSuccess reports a completed conversion or cache operation.
func printSuccess(format string, args ...any) {
	fmt.Println(styleGood.Render("ok") + " " + fmt.Sprintf(format, args...))
}

// printError reports a failed input. Batch runs keep going after this.
func printError(format string, args ...any) {
	fmt.Println(styleBad.Render("failed") + " " + fmt.Sprintf(format, args...))
}

// printWarning reports a degraded-input record from extraction.
func printWarning(format string, args ...any) {
	fmt.Println(styleWarn.Render("warn") + " " + fmt.Sprintf(format, args...))
}

// printInfo reports a neutral status line.
func printInfo(format string, args ...any) {
	fmt.Println(styleFaint.Render("--") + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("   " + styleFaint.Render(fmt.Sprintf(format, args...)))
}

// printArtifact prints the path of one written output file.
func printArtifact(path string) {
	fmt.Println("   " + styleFaint.Render("wrote") + " " + styleBright.Render(path))
}

// printDiagramStats prints the size of the converted diagram and whether
// the artifacts came out of the cache.
func printDiagramStats(nodes, edges int, cached bool) {
	src := "rendered"
	if cached {
		src = "from cache"
	}
	fmt.Println("   " + styleFaint.Render(fmt.Sprintf("%d nodes, %d edges, %s", nodes, edges, src)))
}

// =============================================================================
// Spinner
// =============================================================================

// spinnerFrames cycle while a conversion batch is in flight.
var spinnerFrames = []string{"⠟", "⠯", "⠷", "⠾", "⠽", "⠻"}

// spinnerInterval paces the redraw. Conversions are fast; a slower cadence
// keeps short batches from flickering.
const spinnerInterval = 120 * time.Millisecond

// spinner is a single-line batch progress indicator. One spinner covers a
// whole convert run; the message is swapped per input file.
type spinner struct {
	mu   sync.Mutex
	msg  string
	out  io.Writer
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// startSpinner begins animating on stderr, leaving stdout to the status
// and artifact lines.
func startSpinner(msg string) *spinner {
	return startSpinnerTo(os.Stderr, msg)
}

func startSpinnerTo(out io.Writer, msg string) *spinner {
	s := &spinner{msg: msg, out: out, stop: make(chan struct{})}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *spinner) run() {
	defer s.wg.Done()
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.stop:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-tick.C:
			s.mu.Lock()
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.out, "\r\033[K%s %s", styleAccent.Render(frame), styleFaint.Render(s.msg))
			s.mu.Unlock()
		}
	}
}

// SetMessage swaps the in-flight message, picked up on the next redraw.
func (s *spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. Safe to call repeatedly.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}
