package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"FXSentinel/internal/calculator"
	"FXSentinel/internal/model"
	"FXSentinel/internal/structure"
)

// Headers returns the summary table columns for periods.
func Headers(periods [3]int) table.Row {
	h := table.Row{"Symbol"}
	for _, tf := range model.Timeframes {
		h = append(h, fmt.Sprintf("MA %s (%d %d %d)", tf, periods[0], periods[1], periods[2]))
	}
	for _, tf := range model.Timeframes {
		w, _ := structure.WindowSize(tf)
		h = append(h, fmt.Sprintf("Structure %s (%d)", tf, w))
	}
	h = append(h, "COT")
	for i := len(calculator.SeasonalLookbacks) - 1; i >= 0; i-- {
		h = append(h, fmt.Sprintf("Seasonal %dY", calculator.SeasonalLookbacks[i]))
	}
	return append(h, "Score")
}

// Cells returns the display text of every column after Symbol, in table order.
func (r Row) Cells() []string {
	var out []string
	for _, c := range r.MA {
		out = append(out, c.Text)
	}
	for _, c := range r.Structure {
		out = append(out, c.Text)
	}
	out = append(out, r.COT.Text)
	for i := len(calculator.SeasonalLookbacks) - 1; i >= 0; i-- {
		if i < len(r.Seasonal) {
			out = append(out, r.Seasonal[i].Text)
		} else {
			out = append(out, na)
		}
	}
	return append(out, r.Score.Text)
}

func tableRow(r Row) table.Row {
	out := table.Row{r.Symbol}
	for _, c := range r.Cells() {
		out = append(out, c)
	}
	return out
}

// Render draws the summary as a box table.
func Render(rows []Row, periods [3]int) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = true
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(Headers(periods))
	for _, r := range rows {
		t.AppendRow(tableRow(r))
	}
	return t.Render()
}

var trendIcons = map[model.Trend]string{
	model.Uptrend:       "🟢",
	model.Downtrend:     "🔴",
	model.Sideways:      "🟡",
	model.Divergence:    "🟠",
	model.Indeterminate: "⚪",
	model.Unknown:       "⚪",
}

func short(c Cell) string {
	if c.Text == na || c.Text == "nan" {
		return na
	}
	return trendIcons[c.Trend] + " " + string(c.Trend)
}

// RenderHTML formats rows as a compact Telegram message.
func RenderHTML(rows []Row, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>FXSentinel Summary</b> | %s\n", now.Format("2006-01-02 15:04")))
	if len(rows) == 0 {
		b.WriteString("\nNo symbols loaded.")
		return b.String()
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", html.EscapeString(r.Symbol)))
		for i, tf := range model.Timeframes {
			b.WriteString(fmt.Sprintf("  %s: MA %s | Structure %s\n", tf, short(r.MA[i]), short(r.Structure[i])))
		}
		b.WriteString(fmt.Sprintf("  COT: %s\n", short(r.COT)))
		var seasonal []string
		for i := len(calculator.SeasonalLookbacks) - 1; i >= 0 && i < len(r.Seasonal); i-- {
			seasonal = append(seasonal, fmt.Sprintf("%dY %s", calculator.SeasonalLookbacks[i], trendIcons[r.Seasonal[i].Trend]))
		}
		if len(seasonal) > 0 {
			b.WriteString("  Seasonal: " + strings.Join(seasonal, " ") + "\n")
		}
		if r.Macro != nil {
			b.WriteString(fmt.Sprintf("  Macro: <b>%s</b> (fair %s, dev %s%%)\n",
				r.Macro.Action, fixed(r.Macro.FairValue, 5), fixed(r.Macro.Deviation*100, 2)))
		}
		if r.Score.Text == noMacroData {
			b.WriteString("  Macro: " + noMacroData + "\n")
		}
	}
	return b.String()
}

// StructureHTML details the swing structure of one row per timeframe.
func StructureHTML(r Row) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📐 <b>%s structure</b>\n", html.EscapeString(r.Symbol)))
	for _, tf := range model.Timeframes {
		st, ok := r.Structures[tf]
		if !ok {
			b.WriteString(fmt.Sprintf("\n<b>%s</b>: %s\n", tf, na))
			continue
		}
		w, _ := structure.WindowSize(tf)
		b.WriteString(fmt.Sprintf("\n<b>%s (%d)</b>: %s %s\n", tf, w, trendIcons[st.Trend], st.Trend))
		for _, h := range st.Highs {
			b.WriteString(fmt.Sprintf("  H %s %s\n", h.Time.Format(dateLayout), fixed(h.Price, 5)))
		}
		for _, l := range st.Lows {
			b.WriteString(fmt.Sprintf("  L %s %s\n", l.Time.Format(dateLayout), fixed(l.Price, 5)))
		}
	}
	return b.String()
}

// RenderSwings lists the validated swing points of one analyzed series.
func RenderSwings(symbol string, s *structure.Series) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.SetTitle(fmt.Sprintf("%s %s (window %d)", symbol, s.Timeframe, s.Window))
	t.AppendHeader(table.Row{"Date", "Swing", "Price"})
	for _, p := range s.Points {
		if p.ValidSwingHigh {
			t.AppendRow(table.Row{p.Time.Format(dateLayout), "High", fixed(p.High, 5)})
		}
		if p.ValidSwingLow {
			t.AppendRow(table.Row{p.Time.Format(dateLayout), "Low", fixed(p.Low, 5)})
		}
	}
	return t.Render()
}
