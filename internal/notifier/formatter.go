package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"FXSentinel/internal/model"
	"FXSentinel/internal/recorder"
	"FXSentinel/internal/structure"
)

// MaxMessageLen keeps messages under Telegram's 4096 character limit.
const MaxMessageLen = 4000

// Split breaks text at line boundaries into chunks of at most limit runes.
// A single line longer than limit is cut.
func Split(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}
	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		for len(r) > limit {
			flush()
			chunks = append(chunks, string(r[:limit]))
			r = r[limit:]
		}
		if curLen+len(r) > limit {
			flush()
		}
		cur.WriteString(string(r))
		curLen += len(r)
	}
	flush()
	return chunks
}

// HelpText lists the supported bot commands.
func HelpText() string {
	return "🤖 <b>FXSentinel</b>\n\n" +
		"/report [category] - latest summary\n" +
		"/structure SYMBOL - swing structure per timeframe\n" +
		"/history SYMBOL [D|W|M] - recorded structure trends\n" +
		"/refresh - download fresh market data\n" +
		"/status - last refresh and report\n" +
		"/help - this message"
}

// FormatRefresh summarizes a data refresh.
func FormatRefresh(category string, loaded, failed []string, took time.Duration) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔄 <b>Data refresh</b> | %s\n", html.EscapeString(category)))
	b.WriteString(fmt.Sprintf("Loaded: %d symbols in %s\n", len(loaded), took.Round(time.Second)))
	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf("⚠️ Failed: %s\n", html.EscapeString(strings.Join(failed, ", "))))
	}
	return b.String()
}

// FormatError renders an error reply.
func FormatError(action string, err error) string {
	return fmt.Sprintf("❌ %s failed: %s", html.EscapeString(action), html.EscapeString(err.Error()))
}

// FormatHistory lists recorded structure snapshots, newest first.
func FormatHistory(symbol string, tf model.Timeframe, snaps []recorder.StructureSnapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕘 <b>%s %s structure history</b>\n", html.EscapeString(symbol), tf))
	if len(snaps) == 0 {
		b.WriteString("\nNo recorded runs.")
		return b.String()
	}
	for _, s := range snaps {
		b.WriteString(fmt.Sprintf("\n%s  %s", s.Timestamp.Format("2006-01-02 15:04"), s.Trend))
		if h, ok := last(s.Highs); ok {
			b.WriteString(fmt.Sprintf(" | H %.5f", h.Price))
		}
		if l, ok := last(s.Lows); ok {
			b.WriteString(fmt.Sprintf(" | L %.5f", l.Price))
		}
	}
	return b.String()
}

func last(xs []structure.Extremum) (structure.Extremum, bool) {
	if len(xs) == 0 {
		return structure.Extremum{}, false
	}
	return xs[len(xs)-1], true
}
