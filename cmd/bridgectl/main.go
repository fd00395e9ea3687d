package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/plugkit/engine-bridge/bridge"
	"github.com/plugkit/engine-bridge/buffer"
	"github.com/plugkit/engine-bridge/isolate"
	"github.com/plugkit/engine-bridge/variant"
)

func main() {
	var (
		buffers     = flag.Int("buffers", 1000, "Buffers to allocate per worker")
		size        = flag.Int("size", 1500, "Buffer size in bytes")
		workers     = flag.Int("workers", 4, "Concurrent allocator workers")
		collects    = flag.Int("collects", 3, "Collection cycles to run")
		reduced     = flag.Bool("reduced", false, "Load the reduced surface")
		metricsAddr = flag.String("metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
		verbose     = flag.Bool("v", false, "Verbose engine diagnostics")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*buffers, *size, *workers, *collects, *reduced, *metricsAddr, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(buffers, size, workers, collects int, reduced bool, metricsAddr string, verbose bool) error {
	log := zap.NewNop()
	if verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			return err
		}
		buffer.SetLogger(log)
	}

	iso := isolate.New()
	exports := isolate.NewExports()

	opts := bridge.Options{Logger: log}
	if reduced {
		opts.Surface = bridge.SurfaceReduced
	}

	b, err := bridge.Load(iso, exports, opts)
	if err != nil {
		return err
	}
	defer b.Close()

	if metricsAddr != "" {
		prometheus.MustRegister(buffer.NewCollector(b.Pool(), b.Reclaimer()))
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	fmt.Printf("Loaded bridge into isolate %d (%d exports)\n", iso.ID(), exports.Len())

	if reduced {
		fmt.Println("Reduced surface: skipping allocation workload")
		printStats(b.Stats())
		return nil
	}

	fn, _ := exports.Get("buffer.alloc")
	alloc := fn.(func(int) (variant.Value, error))

	// Concurrent host-side churn: each worker allocates and immediately
	// drops its wrappers, feeding the pending-release queue.
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < buffers; i++ {
				v, err := alloc(size)
				if err != nil {
					return err
				}
				v.Release()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Allocated and dropped %d buffers of %d bytes\n", buffers*workers, size)
	printStats(b.Stats())

	for i := 0; i < collects; i++ {
		iso.Collect()
		fmt.Printf("\nAfter collection %d:\n", i+1)
		printStats(b.Stats())
	}

	return nil
}

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

func printStats(s bridge.Stats) {
	styled := term.IsTerminal(int(os.Stdout.Fd()))

	row := func(label string, value string, warn bool) {
		if !styled {
			fmt.Printf("  %-18s %s\n", label, value)
			return
		}
		vs := valueStyle
		if warn {
			vs = warnStyle
		}
		fmt.Printf("  %s %s\n", labelStyle.Render(label), vs.Render(value))
	}

	row("allocated bytes", fmt.Sprintf("%d", s.AllocatedBytes), false)
	row("active buffers", fmt.Sprintf("%d", s.ActiveBuffers), false)
	row("pending release", fmt.Sprintf("%d", s.PendingReleases), false)
	row("reclaimed", fmt.Sprintf("%d", s.Reclaimed), false)
	row("leaked", fmt.Sprintf("%d", s.Leaked), s.Leaked > 0)
	row("epochs", fmt.Sprintf("%d", s.Epochs), false)
}
