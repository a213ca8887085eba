// Package report renders dashboard results as Markdown or HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"gotally/domain/aggregate"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Section is a titled group of cards
type Section struct {
	Title string
	Cards []aggregate.Card
}

// Report is a printable snapshot of one render pass
type Report struct {
	Title       string
	Filename    string
	GeneratedAt time.Time
	Warnings    []string
	Error       string
	Sections    []Section
	Groups      *aggregate.GroupTable
}

// Markdown renders the report as GitHub-flavoured Markdown
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	if r.Filename != "" {
		fmt.Fprintf(&b, "Selected file: **%s**\n\n", escape(r.Filename))
	}
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", r.GeneratedAt.Format(time.RFC3339))
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "> **Warning:** %s\n\n", escape(w))
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "> **Error:** %s\n\n", escape(r.Error))
	}

	for _, s := range r.Sections {
		if len(s.Cards) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		b.WriteString("| Field | Value |\n|---|---:|\n")
		for _, c := range s.Cards {
			value := c.Display
			if c.Failed() {
				value = "_" + escape(c.Error) + "_"
			}
			fmt.Fprintf(&b, "| %s | %s |\n", escape(c.Label), value)
		}
		b.WriteString("\n")
	}

	if r.Groups != nil && len(r.Groups.Rows) > 0 {
		fmt.Fprintf(&b, "## %s by %s\n\n", escape(r.Groups.NumericField), escape(r.Groups.GroupField))
		b.WriteString("| " + escape(r.Groups.GroupField))
		for _, op := range r.Groups.Operations {
			b.WriteString(" | " + op.Label())
		}
		b.WriteString(" |\n|---")
		for range r.Groups.Operations {
			b.WriteString("|---:")
		}
		b.WriteString("|\n")
		for _, row := range r.Groups.Rows {
			b.WriteString("| " + escape(row.Key.String()))
			for _, op := range r.Groups.Operations {
				b.WriteString(" | " + row.Display[op])
			}
			b.WriteString(" |\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the report as a complete HTML page
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: r.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

var escaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "\n", " ")

func escape(s string) string {
	return escaper.Replace(s)
}
