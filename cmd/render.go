package cmd

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/twistql/twistql/query"
	"github.com/twistql/twistql/scan"
)

// renderRecords prints records as an aligned table. The header comes from
// the first record; within one result set all records share a schema.
func renderRecords(w io.Writer, records []*scan.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fields := records[0].Fields()
	fmt.Fprintln(tw, strings.Join(upper(fields), "\t"))

	for _, rec := range records {
		cells := make([]string, len(fields))
		for i, f := range fields {
			v, _ := rec.Get(f)
			cells[i] = formatValue(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func renderImages(w io.Writer, summaries []query.ImageSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DIGEST\tTAGS\tHOSTNAME\tSCAN TIME")
	for _, s := range summaries {
		scanTime := ""
		if !s.ScanTime.IsZero() {
			scanTime = s.ScanTime.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			s.Digest, strings.Join(s.Tags, ", "), s.Hostname, scanTime)
	}
	return tw.Flush()
}

func upper(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.ToUpper(f)
	}
	return out
}

// formatValue renders a scalar for display. JSON numbers decode as
// float64; integral values print without a decimal point.
func formatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
