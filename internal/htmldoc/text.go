package htmldoc

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

// Mode selects how much inline markup Text keeps.
type Mode int

const (
	// ModePlain drops all inline styling.
	ModePlain Mode = iota
	// ModeRuns keeps bold, italic and link styling as separate runs.
	ModeRuns
)

// SkipFunc reports whether a node's subtree contributes no text.
type SkipFunc func(*html.Node) bool

// Text returns the visible text under n as cleaned runs. Whitespace is
// collapsed and spacing around brackets and
// punctuation is tidied. Nodes for which skip returns true are ignored
// along with their descendants; skip may be nil.
func Text(n *html.Node, mode Mode, skip SkipFunc) []domain.Run {
	if n == nil {
		return nil
	}
	var c collector
	c.mode = mode
	c.skip = skip
	c.walk(n, 0)
	return cleanRuns(c.runs)
}

// PlainText returns the visible text under n with no styling.
func PlainText(n *html.Node) string {
	return JoinRuns(Text(n, ModePlain, nil))
}

// JoinRuns concatenates run texts.
func JoinRuns(runs []domain.Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// CleanText applies the same tidying as Text to already decoded text,
// such as a goquery Selection's Text.
func CleanText(s string) string {
	return JoinRuns(cleanRuns([]domain.Run{{Text: prepare(s)}}))
}

type collector struct {
	mode Mode
	skip SkipFunc
	runs []domain.Run
}

func (c *collector) emit(text string, style domain.Style) {
	if text == "" {
		return
	}
	if c.mode == ModePlain {
		style = 0
	}
	if n := len(c.runs); n > 0 && c.runs[n-1].Style == style {
		c.runs[n-1].Text += text
		return
	}
	c.runs = append(c.runs, domain.Run{Text: text, Style: style})
}

func (c *collector) walk(n *html.Node, style domain.Style) {
	switch n.Type {
	case html.TextNode:
		c.emit(prepare(n.Data), style)
		return
	case html.ElementNode, html.DocumentNode:
	default:
		return
	}
	if n.Type == html.ElementNode {
		if hidden(n) || (c.skip != nil && c.skip(n)) {
			return
		}
		style |= inlineStyle(n)
	}

	block := isBlock(n)
	if block {
		c.emit(" ", 0)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.walk(ch, style)
	}
	if block {
		c.emit(" ", 0)
	}
}

// prepare normalises decoded text. The tokenizer has already resolved
// character references, so a literal "&amp;" in the result is text.
func prepare(s string) string {
	return norm.NFC.String(s)
}

func inlineStyle(n *html.Node) domain.Style {
	switch n.DataAtom {
	case atom.B, atom.Strong:
		return domain.StyleBold
	case atom.I, atom.Em:
		return domain.StyleItalic
	case atom.A:
		return domain.StyleLink
	}
	return 0
}

func hidden(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Head:
		return true
	case atom.Sup:
		if hasClass(n, "reference") {
			return true
		}
	}
	if isEditSection(n) {
		return true
	}
	style := strings.ReplaceAll(strings.ToLower(attr(n, "style")), " ", "")
	return strings.Contains(style, "display:none")
}

func isBlock(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Br, atom.P, atom.Div, atom.Li, atom.Dd, atom.Dt, atom.Dl,
		atom.Ol, atom.Ul, atom.Table, atom.Tr, atom.Td, atom.Th,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Section, atom.Details, atom.Summary, atom.Blockquote:
		return true
	}
	return false
}

type styledRune struct {
	r     rune
	style domain.Style
}

// cleanRuns collapses whitespace, removes the space after "(" and before
// ")" or , . ; : ! ?, trims both ends, and regroups by style.
func cleanRuns(runs []domain.Run) []domain.Run {
	var kept []styledRune
	last := func() rune {
		if len(kept) == 0 {
			return 0
		}
		return kept[len(kept)-1].r
	}

	for _, run := range runs {
		for _, r := range run.Text {
			switch {
			case unicode.IsSpace(r):
				if l := last(); l == 0 || l == ' ' || l == '(' {
					continue
				}
				kept = append(kept, styledRune{' ', run.Style})
			case strings.ContainsRune(",.;:!?)", r):
				if last() == ' ' {
					kept = kept[:len(kept)-1]
				}
				kept = append(kept, styledRune{r, run.Style})
			default:
				kept = append(kept, styledRune{r, run.Style})
			}
		}
	}
	if last() == ' ' {
		kept = kept[:len(kept)-1]
	}

	var out []domain.Run
	var b strings.Builder
	for i, sr := range kept {
		if i > 0 && sr.style != kept[i-1].style {
			out = append(out, domain.Run{Text: b.String(), Style: kept[i-1].style})
			b.Reset()
		}
		b.WriteRune(sr.r)
	}
	if len(kept) > 0 {
		out = append(out, domain.Run{Text: b.String(), Style: kept[len(kept)-1].style})
	}
	return out
}
