package htmldoc

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

// Section is a heading and everything up to the next heading of the same
// or a higher level.
type Section struct {
	Title string
	// Level is 1..6 for h1..h6 (or a details data-level); 0 for Tree.Body.
	Level int
	// IDs holds every id attribute found on the heading and its wrapper.
	IDs []string
	// Heading is the heading element, nil for Tree.Body.
	Heading *html.Node
	// Content holds the section's own nodes: everything between its heading
	// and the first child heading, excluding child sections.
	Content  []*html.Node
	Children []*Section
	Parent   *Section
}

// ID returns the first heading id, or "".
func (s *Section) ID() string {
	if len(s.IDs) == 0 {
		return ""
	}
	return s.IDs[0]
}

// Walk visits s and then its descendants in document order. When visit
// returns false, the descendants of that section are never visited.
func (s *Section) Walk(visit func(*Section) bool) {
	if !visit(s) {
		return
	}
	for _, c := range s.Children {
		c.Walk(visit)
	}
}

// Find returns the outermost sections at or below s that match pred.
func (s *Section) Find(pred func(*Section) bool) []*Section {
	var out []*Section
	s.Walk(func(sec *Section) bool {
		if pred(sec) {
			out = append(out, sec)
			return false
		}
		return true
	})
	return out
}

// Lists returns the outermost <ol> elements in the section's own content.
// Lists nested inside another list are sub-senses and are not returned.
func (s *Section) Lists() []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if n.DataAtom == atom.Ol {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Content {
		walk(n)
	}
	return out
}

type outlineBuilder struct {
	stack   []*Section
	markers map[*html.Node]bool
}

func buildOutline(root *html.Node) *Section {
	body := &Section{}
	b := &outlineBuilder{
		stack:   []*Section{body},
		markers: make(map[*html.Node]bool),
	}
	b.mark(root)

	start := root
	if n := findElement(root, atom.Body); n != nil {
		start = n
	}
	for c := start.FirstChild; c != nil; c = c.NextSibling {
		b.visit(c)
	}
	return body
}

// mark records, for each node, whether its subtree holds anything that
// opens a section. Subtrees without such markers are kept whole as content.
func (b *outlineBuilder) mark(n *html.Node) bool {
	has := n.Type == html.ElementNode && (headingLevel(n) > 0 || isLevelSummary(n))
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b.mark(c) {
			has = true
		}
	}
	if has {
		b.markers[n] = true
	}
	return has
}

func (b *outlineBuilder) top() *Section { return b.stack[len(b.stack)-1] }

func (b *outlineBuilder) open(level int, heading, scope *html.Node, title string) {
	for len(b.stack) > 1 && b.top().Level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.top()
	s := &Section{
		Title:   title,
		Level:   level,
		IDs:     collectIDs(scope),
		Heading: heading,
		Parent:  parent,
	}
	parent.Children = append(parent.Children, s)
	b.stack = append(b.stack, s)
}

func (b *outlineBuilder) visit(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			b.top().Content = append(b.top().Content, n)
		}
		return
	case html.ElementNode:
	default:
		return
	}

	if lvl := headingLevel(n); lvl > 0 {
		b.open(lvl, n, headingScope(n), headingTitle(n))
		return
	}
	if isLevelSummary(n) && !containsHeading(n) {
		b.open(dataLevel(n.Parent), n, n, headingTitle(n))
		return
	}
	if !b.markers[n] {
		b.top().Content = append(b.top().Content, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isEditSection(c) {
			continue
		}
		b.visit(c)
	}
}

func headingLevel(n *html.Node) int {
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// isLevelSummary matches <details data-level="N"><summary>…</summary>.
func isLevelSummary(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Summary &&
		n.Parent != nil && n.Parent.DataAtom == atom.Details && hasAttr(n.Parent, "data-level")
}

func dataLevel(n *html.Node) int {
	lvl, err := strconv.Atoi(strings.TrimSpace(attr(n, "data-level")))
	if err != nil || lvl < 1 {
		return 2
	}
	return min(lvl, 6)
}

func containsHeading(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (headingLevel(c) > 0 || containsHeading(c)) {
			return true
		}
	}
	return false
}

// headingScope returns the element whose ids describe a heading: the
// heading itself, or its <summary> / div.mw-heading wrapper.
func headingScope(h *html.Node) *html.Node {
	p := h.Parent
	if p == nil || p.Type != html.ElementNode {
		return h
	}
	if p.DataAtom == atom.Summary || (p.DataAtom == atom.Div && hasClass(p, "mw-heading")) {
		return p
	}
	return h
}

func headingTitle(n *html.Node) string {
	return domain.NormalizeText(PlainText(n))
}

func collectIDs(n *html.Node) []string {
	var ids []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type != html.ElementNode || isEditSection(n) {
			return
		}
		if id := strings.TrimSpace(attr(n, "id")); id != "" {
			ids = append(ids, id)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return ids
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func isEditSection(n *html.Node) bool {
	return n.Type == html.ElementNode && hasClass(n, "mw-editsection")
}
