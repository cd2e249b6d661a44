package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

func printTable(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// Stats prints the backend request counters gathered this process.
func (a *App) Stats() error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}

	var rows [][]string
	for _, mf := range families {
		if mf.GetName() != "console_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var method, outcome string
			for _, l := range m.GetLabel() {
				switch l.GetName() {
				case "method":
					method = l.GetValue()
				case "outcome":
					outcome = l.GetValue()
				}
			}
			rows = append(rows, []string{method, outcome, fmt.Sprintf("%.0f", m.GetCounter().GetValue())})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return strings.Join(rows[i], " ") < strings.Join(rows[j], " ")
	})
	return printTable(a.out, []string{"METHOD", "OUTCOME", "REQUESTS"}, rows)
}
