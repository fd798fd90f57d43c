package normalisers

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLNormaliser extracts readable text from catalog descriptions,
// which Google Books and Open Library return as HTML fragments.
type HTMLNormaliser struct{}

func (n *HTMLNormaliser) Normalise(content string, mimeType string) string {
	return StripHTML(content)
}

func (n *HTMLNormaliser) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (n *HTMLNormaliser) Priority() int {
	return 60
}

// block elements that end a paragraph
var paragraphTags = map[string]bool{
	"p": true, "div": true, "li": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "blockquote": true, "tr": true,
}

var cellTags = map[string]bool{"td": true, "th": true}

// StripHTML returns the text content of an HTML fragment. Script and style
// bodies are dropped, entities decoded, <br> becomes a newline and block
// elements are separated by a blank line.
func StripHTML(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))

	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; keep what was read
			return collapseWhitespace(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				if tt == html.StartTagToken {
					skip++
				}
			case tag == "br":
				b.WriteString("\n")
			case paragraphTags[tag]:
				b.WriteString("\n\n")
			case cellTags[tag]:
				b.WriteString(" ")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				if skip > 0 {
					skip--
				}
			case paragraphTags[tag]:
				b.WriteString("\n\n")
			case cellTags[tag]:
				b.WriteString(" ")
			}
		}
	}
}

// collapseWhitespace squeezes spaces within lines and keeps at most one blank line between paragraphs.
func collapseWhitespace(s string) string {
	lines := strings.Split(normalizeNewlines(s), "\n")

	var out []string
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
				blank = true
			}
			continue
		}
		out = append(out, line)
		blank = false
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
