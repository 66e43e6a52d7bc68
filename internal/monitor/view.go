package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/hostwatch/internal/metrics"
	"github.com/rileyhilliard/hostwatch/internal/state"
	"github.com/rileyhilliard/hostwatch/internal/ui"
)

const (
	noServersText = "NO SERVERS DATA"
	noDataText    = "NO DATA"
)

// Render formats one frame from a store snapshot. It is a pure function of
// its inputs so frames can be asserted in tests.
func Render(snap state.Snapshot, helpLine string, now time.Time) string {
	if snap.HostCount == 0 {
		return NoDataStyle.Render(noServersText) + "\n\n" + FooterStyle.Render(helpLine)
	}

	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("=== Server: %s (%d/%d) ===", snap.Host, snap.HostIndex+1, snap.HostCount)))
	b.WriteString("\n")
	b.WriteString(renderSelector(snap.Kind))
	b.WriteString("\n")
	if fleet := ui.Sparkline(snap.Fleet); fleet != "" && snap.HostCount > 1 {
		b.WriteString(AgeStyle.Render("fleet ") + fleet)
		b.WriteString("\n")
	}

	if snap.HasData {
		b.WriteString(SummaryStyle.Render(strings.TrimRight(snap.Entry.Sample.Summary(), "\n")))
		b.WriteString("\n")
		b.WriteString(AgeStyle.Render("updated " + humanize.RelTime(snap.Entry.At, now, "ago", "from now")))
	} else {
		b.WriteString(NoDataStyle.Render(noDataText))
	}
	b.WriteString("\n")

	if snap.LastError != nil {
		b.WriteString(ErrorStyle.Render(formatError(*snap.LastError, now)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(FooterStyle.Render(helpLine))
	return b.String()
}

// renderSelector lists every kind with the active one bracketed.
func renderSelector(active metrics.Kind) string {
	parts := make([]string, 0, metrics.NumKinds)
	for i, k := range metrics.Kinds() {
		label := fmt.Sprintf("%d:%s", i+1, k.Label())
		if k == active {
			parts = append(parts, SelectorActiveStyle.Render("["+label+"]"))
		} else {
			parts = append(parts, SelectorInactiveStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}

func formatError(rec state.ErrorRecord, now time.Time) string {
	scope := ""
	if rec.HasKind {
		scope = "[" + rec.Kind.Label() + "] "
	}
	return fmt.Sprintf("last error %s: %s%s", humanize.RelTime(rec.At, now, "ago", "from now"), scope, rec.Message)
}

// RenderPlain formats every host's stored summaries for plain mode.
func RenderPlain(hosts []state.HostEntries, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s ---\n", now.Format("15:04:05"))

	if len(hosts) == 0 {
		b.WriteString(noServersText + "\n")
		return b.String()
	}

	for _, h := range hosts {
		fmt.Fprintf(&b, "=== Server: %s ===\n", h.Host)
		if len(h.Entries) == 0 {
			b.WriteString(noDataText + "\n")
		}
		for _, e := range h.Entries {
			fmt.Fprintf(&b, "[%s] %s\n", e.Kind.Label(), strings.TrimRight(e.Entry.Sample.Summary(), "\n"))
		}
		if h.LastError != nil {
			b.WriteString(formatError(*h.LastError, now) + "\n")
		}
	}
	return b.String()
}
