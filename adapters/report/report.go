package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"

	"eegtfr/internal/errors"
	"eegtfr/ports"
)

// Writer emits run reports into the results directory: a plain-text
// summary, a markdown version optionally rendered to HTML, and an
// optional cluster workbook.
type Writer struct {
	dir        string
	writeHTML  bool
	writeExcel bool
}

var _ ports.ReportPort = (*Writer)(nil)

// NewWriter creates a report writer for the given results directory
func NewWriter(dir string, writeHTML, writeExcel bool) *Writer {
	return &Writer{dir: dir, writeHTML: writeHTML, writeExcel: writeExcel}
}

// Write emits the configured report artifacts and returns their paths
func (w *Writer) Write(ctx context.Context, data ports.ReportData) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, errors.ReportError("failed to create results directory", err)
	}

	var paths []string

	txtPath := filepath.Join(w.dir, "run_report.txt")
	if err := os.WriteFile(txtPath, []byte(w.renderText(data)), 0o644); err != nil {
		return nil, errors.ReportError("failed to write text report", err)
	}
	paths = append(paths, txtPath)

	md := w.renderMarkdown(data)
	mdPath := filepath.Join(w.dir, "run_report.md")
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return nil, errors.ReportError("failed to write markdown report", err)
	}
	paths = append(paths, mdPath)

	if w.writeHTML {
		htmlPath := filepath.Join(w.dir, "run_report.html")
		html := markdown.ToHTML([]byte(md), nil, nil)
		if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
			return nil, errors.ReportError("failed to write HTML report", err)
		}
		paths = append(paths, htmlPath)
	}

	if w.writeExcel {
		xlsxPath := filepath.Join(w.dir, "clusters.xlsx")
		if err := writeWorkbook(xlsxPath, data); err != nil {
			return nil, err
		}
		paths = append(paths, xlsxPath)
	}

	return paths, nil
}

func (w *Writer) renderText(data ports.ReportData) string {
	var b strings.Builder
	b.WriteString("EEG time-frequency contrast with cluster permutation statistics\n")
	fmt.Fprintf(&b, "Run: %s (%s)\n", data.RunID, data.GeneratedAt)
	fmt.Fprintf(&b, "Dataset: %s\n", data.Dataset)
	fmt.Fprintf(&b, "Channel: %s\n", data.Channel)
	fmt.Fprintf(&b, "Epochs %s/%s used: %d / %d (matched n=%d)\n",
		data.Conditions[0], data.Conditions[1], data.TrialCounts[0], data.TrialCounts[1], data.MatchedN)
	fmt.Fprintf(&b, "Baseline: (%.2f, %.2f) s, mode=%s\n", data.BaselineFrom, data.BaselineTo, data.BaselineMode)
	fmt.Fprintf(&b, "Freqs: %.1f-%.1f Hz (n=%d)\n", data.FreqLoHz, data.FreqHiHz, data.NumFreqs)
	fmt.Fprintf(&b, "Stats: cluster permutation on (%s-%s), alpha=%.2f, %d permutations, seed=%d\n",
		data.Conditions[1], data.Conditions[0], data.Alpha, data.Permutations, data.Seed)
	fmt.Fprintf(&b, "Fingerprint: %s\n", data.Fingerprint)

	sig := 0
	for _, c := range data.Clusters {
		if c.Significant(data.Alpha) {
			sig++
		}
	}
	fmt.Fprintf(&b, "Clusters: %d found, %d significant\n", len(data.Clusters), sig)
	for _, c := range data.Clusters {
		fmt.Fprintf(&b, "  cluster %d: p=%.4f, mass=%.1f, %.1f-%.1f Hz, %.2f-%.2f s\n",
			c.ID, c.PValue, c.Mass, c.FreqLoHz, c.FreqHiHz, c.TimeLoS, c.TimeHiS)
	}

	fmt.Fprintf(&b, "Difference map: min=%.3f max=%.3f mean=%.3f median=%.3f sd=%.3f\n",
		data.Summary.Min, data.Summary.Max, data.Summary.Mean, data.Summary.Median, data.Summary.StdDev)
	for _, p := range data.FigurePaths {
		fmt.Fprintf(&b, "Output figure: %s\n", p)
	}
	return b.String()
}

func (w *Writer) renderMarkdown(data ports.ReportData) string {
	var b strings.Builder
	b.WriteString("# EEG time-frequency contrast report\n\n")
	fmt.Fprintf(&b, "- **Run**: `%s` at %s\n", data.RunID, data.GeneratedAt)
	fmt.Fprintf(&b, "- **Dataset**: %s\n", data.Dataset)
	fmt.Fprintf(&b, "- **Channel**: `%s`\n", data.Channel)
	fmt.Fprintf(&b, "- **Trials**: %s %d / %s %d (matched n=%d)\n",
		data.Conditions[0], data.TrialCounts[0], data.Conditions[1], data.TrialCounts[1], data.MatchedN)
	fmt.Fprintf(&b, "- **Baseline**: %.2f to %.2f s, `%s`\n", data.BaselineFrom, data.BaselineTo, data.BaselineMode)
	fmt.Fprintf(&b, "- **Frequencies**: %.1f-%.1f Hz in %d steps\n", data.FreqLoHz, data.FreqHiHz, data.NumFreqs)
	fmt.Fprintf(&b, "- **Test**: one-sample cluster permutation on (%s - %s), %d permutations, alpha %.2f, seed %d\n\n",
		data.Conditions[1], data.Conditions[0], data.Permutations, data.Alpha, data.Seed)

	b.WriteString("## Clusters\n\n")
	if len(data.Clusters) == 0 {
		b.WriteString("No suprathreshold clusters.\n\n")
	} else {
		b.WriteString("| # | p | mass | size | freq (Hz) | time (s) |\n")
		b.WriteString("|---|---|------|------|-----------|----------|\n")
		for _, c := range data.Clusters {
			marker := ""
			if c.Significant(data.Alpha) {
				marker = " *"
			}
			fmt.Fprintf(&b, "| %d | %.4f%s | %.1f | %d | %.1f-%.1f | %.2f-%.2f |\n",
				c.ID, c.PValue, marker, c.Mass, c.Size, c.FreqLoHz, c.FreqHiHz, c.TimeLoS, c.TimeHiS)
		}
		b.WriteString("\n`*` significant at the configured alpha.\n\n")
	}

	b.WriteString("## Figures\n\n")
	for _, p := range data.FigurePaths {
		fmt.Fprintf(&b, "![%s](%s)\n\n", filepath.Base(p), filepath.Base(p))
	}
	return b.String()
}
