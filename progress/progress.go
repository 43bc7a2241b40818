// Package progress renders a terminal progress bar over the export loop.
package progress

import (
	"github.com/pterm/pterm"

	"github.com/dhcgn/pst-exporter/stats"
)

// Bar tracks export progress on the terminal. A disabled bar swallows all
// updates, so callers never branch on verbosity.
type Bar struct {
	pb      *pterm.ProgressbarPrinter
	total   int
	enabled bool
}

// New creates a progress bar when the log level keeps per-item output
// quiet; at debug level the individual log lines replace the bar.
func New(total int, logLevel string) *Bar {
	bar := &Bar{
		total:   total,
		enabled: logLevel == "info",
	}

	if bar.enabled {
		pb, _ := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Exporting messages").
			Start()
		bar.pb = pb

		pterm.Info.Printf("Messages to export: %d\n", total)
		pterm.Println()
	}

	return bar
}

// Update advances the bar based on the event type.
func (b *Bar) Update(evt stats.Event) {
	if !b.enabled || b.pb == nil {
		return
	}

	switch evt.Type {
	case stats.EventTypeExported, stats.EventTypeFiltered:
		b.pb.Increment()
		if evt.Subject != "" {
			title := evt.Subject
			if len(title) > 40 {
				title = title[:37] + "..."
			}
			b.pb.UpdateTitle("Exporting: " + title)
		}
	case stats.EventTypeError:
		// Errors advance the bar too; the item is done, just not saved.
		b.pb.Increment()
		if evt.Err != nil {
			pterm.Error.Printf("Error: %v\n", evt.Err)
		}
	}
}

// Stop finalizes the progress bar.
func (b *Bar) Stop() {
	if !b.enabled || b.pb == nil {
		return
	}

	if b.pb.Current < b.total {
		b.pb.Current = b.total
	}
	b.pb.Stop()
	pterm.Success.Println("Export complete!")
}
