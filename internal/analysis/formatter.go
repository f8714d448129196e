package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"moltscope/internal/model"
)

// Formatter renders a report for downstream consumption.
type Formatter interface {
	Format(w io.Writer, report *model.Report) error
}

// NewFormatter returns the formatter for the given format name.
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "text":
		return &TextFormatter{styles: NewStyles()}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// JSONFormatter renders the report as stable, indented JSON for notebooks.
type JSONFormatter struct{}

// Format writes the report as JSON.
func (f *JSONFormatter) Format(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// TextFormatter renders the report as styled terminal output.
type TextFormatter struct {
	styles *Styles
}

// Format writes a human-readable report.
func (f *TextFormatter) Format(w io.Writer, report *model.Report) error {
	var b strings.Builder
	s := f.styles

	b.WriteString(s.Title.Render(fmt.Sprintf("Trait report: %s %s", report.TaxonomyName, report.TaxonomyVersion)))
	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render(fmt.Sprintf("%d posts, %d authors, %d scored pairs, %d failed",
		report.PostCount, report.AuthorCount, report.ScoredPairs, report.FailedPairs)))
	b.WriteString("\n\n")

	b.WriteString(s.Header.Render("Prevalence"))
	b.WriteString("\n")
	for _, p := range report.Prevalence {
		style := s.Normal
		if p.Prevalence >= 0.5 {
			style = s.Positive
		}
		b.WriteString(fmt.Sprintf("  %-20s %s  %s\n",
			p.Trait,
			style.Render(fmt.Sprintf("%5.1f%%", p.Prevalence*100)),
			s.Subtle.Render(fmt.Sprintf("(%d/%d)", p.Positive, p.Scored))))
	}
	b.WriteString("\n")

	b.WriteString(s.Header.Render("Correlations"))
	b.WriteString("\n")
	for _, c := range report.Correlations {
		pair := fmt.Sprintf("%s × %s", c.TraitA, c.TraitB)
		if !c.Defined {
			b.WriteString(fmt.Sprintf("  %-40s %s\n", pair, s.Subtle.Render("undefined (zero variance)")))
			continue
		}
		style := s.Positive
		if c.Coefficient < 0 {
			style = s.Negative
		}
		b.WriteString(fmt.Sprintf("  %-40s %s  %s\n",
			pair,
			style.Render(fmt.Sprintf("%+.3f", c.Coefficient)),
			s.Subtle.Render(fmt.Sprintf("n=%d", c.SampleSize))))
	}
	b.WriteString("\n")

	b.WriteString(s.Header.Render("Authors"))
	b.WriteString("\n")
	for _, a := range report.Authors {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			a.AuthorID,
			s.Subtle.Render(fmt.Sprintf("(%d posts)", a.PostCount))))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
