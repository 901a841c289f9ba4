package cli

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/net/html"
	"golang.org/x/term"
)

// isTerminal is a test seam so render tests do not depend on how the test
// runner attaches stdout.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// renderAnswer pretty-prints an answer as markdown when stdout is a
// terminal. Rendering is best effort: on any failure the raw text is shown.
func renderAnswer(answer string) string {
	if !isTerminal() {
		return answer
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return answer
	}
	out, err := r.Render(answer)
	if err != nil {
		return answer
	}
	return strings.TrimRight(out, "\n")
}

// blockTags start a new output line when converting HTML to text.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "table": true, "blockquote": true,
}

// htmlToText flattens an HTML email body into plain terminal text. Script
// and style contents are dropped; block-level tags become line breaks and
// runs of blank lines collapse to one.
func htmlToText(s string) string {
	tok := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	skipDepth := 0
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return tidyText(b.String())

		case html.StartTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skipDepth++
				continue
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}

		case html.SelfClosingTagToken:
			name, _ := tok.TagName()
			if blockTags[string(name)] {
				b.WriteByte('\n')
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			b.Write(tok.Text())
		}
	}
}

func tidyText(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

// dateLayouts cover RFC 3339 and the fraction-second ISO form Python
// backends emit without a zone suffix.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// formatDate renders a backend timestamp for display. Unparseable values
// pass through unchanged rather than hiding the email.
func formatDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02 15:04")
		}
	}
	return s
}
