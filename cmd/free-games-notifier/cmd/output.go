package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

const dateLayout = "2006-01-02 15:04"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printOffersTable(w io.Writer, offers []domain.Offer) error {
	tw := newTabWriter(w)
	tw.writef("ID\tTITLE\tSTARTS (UTC)\tENDS (UTC)\tURL\n")
	for i := range offers {
		o := &offers[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\n",
			o.ID,
			truncate(o.Title, 40),
			formatDate(o.StartDate),
			formatDate(o.EndDate),
			o.URL,
		)
	}
	return tw.finish()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
