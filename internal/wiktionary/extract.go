package wiktionary

import (
	"bytes"
	"errors"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
	"github.com/omfmartin/pocket-book-dictionary/internal/htmldoc"
	"github.com/omfmartin/pocket-book-dictionary/internal/script"
)

// tagSelector matches qualifier labels such as "(informal)" or "(botany)".
const tagSelector = ".ib-content, .qualifier-content, .usage-label-sense"

// labelClasses mark qualifier labels and their brackets. They become
// Definition.Tags and are left out of the gloss.
var labelClasses = []string{
	"ib-content", "ib-brac", "ib-comma",
	"qualifier-content", "qualifier-brac", "qualifier-comma",
	"usage-label-sense",
}

// ExtractDocument parses doc and extracts its entries. Only markup that
// cannot be decoded is an error (*domain.MalformedMarkupError with Path set).
func ExtractDocument(doc domain.RawDocument, cfg *FilterConfig) ([]domain.Entry, error) {
	tree, err := htmldoc.Parse(bytes.NewReader(doc.Data), doc.ContentType)
	if err != nil {
		var mme *domain.MalformedMarkupError
		if errors.As(err, &mme) {
			mme.Path = doc.Path
		}
		return nil, err
	}

	entries := Extract(tree, Headword(doc.Path, tree.Title()), cfg)
	for i := range entries {
		entries[i].Source = doc.Path
	}
	return entries, nil
}

// Extract returns one Entry per part of speech found in the effective
// language's sections, definitions in document order. Excluded sections
// and all their descendants are skipped. A page with no matching section
// yields nil.
func Extract(tree *htmldoc.Tree, headword string, cfg *FilterConfig) []domain.Entry {
	headword = domain.NormalizeText(headword)
	if headword == "" || !cfg.AllowsScript(headword) {
		return nil
	}

	x := extractor{doc: tree.Document()}
	for _, lang := range languageSections(tree, cfg) {
		lang.Walk(func(s *htmldoc.Section) bool {
			if cfg.IsExcluded(s.Title) {
				return false
			}
			lists := s.Lists()
			if len(lists) == 0 {
				return true
			}
			pos := ""
			if s != lang {
				pos = POSLabel(s.Title)
			}
			g := x.group(pos)
			for _, ol := range lists {
				x.collect(g, ol, 0)
			}
			return true
		})
	}

	eff := cfg.EffectiveLang()
	entries := make([]domain.Entry, 0, len(x.groups))
	for _, g := range x.groups {
		if len(g.defs) == 0 {
			continue
		}
		entries = append(entries, domain.Entry{
			Headword:     headword,
			SourceLang:   eff.Code,
			TargetLang:   cfg.TargetLang().Code,
			PartOfSpeech: g.pos,
			Definitions:  g.defs,
			Examples:     DeduplicateStrings(g.examples),
			Script:       script.Dominant(headword),
		})
	}
	if len(entries) == 0 {
		return nil
	}
	return entries
}

// languageSections finds the effective language's sections. When no heading
// names any known language and the document declares that language, the
// whole body stands in for the section.
func languageSections(tree *htmldoc.Tree, cfg *FilterConfig) []*htmldoc.Section {
	found := tree.Find(func(s *htmldoc.Section) bool {
		return cfg.matchesLanguage(s.Title, s.IDs)
	})
	if len(found) > 0 {
		return found
	}

	lang, _, _ := strings.Cut(strings.ToLower(tree.Lang()), "-")
	if lang == "" || lang != cfg.EffectiveLang().Code {
		return nil
	}
	named := false
	tree.Walk(func(s *htmldoc.Section) bool {
		if cfg.matchesAnyLanguage(s.Title, s.IDs) {
			named = true
		}
		return !named
	})
	if named {
		return nil
	}
	return []*htmldoc.Section{tree.Body()}
}

type posGroup struct {
	pos      string
	defs     []domain.Definition
	examples []string
}

type extractor struct {
	doc    *goquery.Document
	groups []*posGroup
	byKey  map[string]*posGroup
}

// group returns the group for pos, creating it on first use. Groups with
// the same label (ignoring case) are merged in document order.
func (x *extractor) group(pos string) *posGroup {
	if x.byKey == nil {
		x.byKey = make(map[string]*posGroup)
	}
	key := domain.FoldKey(pos)
	if g, ok := x.byKey[key]; ok {
		return g
	}
	g := &posGroup{pos: pos}
	x.byKey[key] = g
	x.groups = append(x.groups, g)
	return g
}

// collect adds the items of one <ol> at the given nesting level. Nested
// <ol> are sub-senses one level deeper; nested <ul> items and <dd> are examples.
func (x *extractor) collect(g *posGroup, ol *html.Node, level int) {
	for li := ol.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}

		runs := htmldoc.Text(li, htmldoc.ModeRuns, skipInGloss)
		if gloss := htmldoc.JoinRuns(runs); gloss != "" {
			g.defs = append(g.defs, domain.Definition{
				Gloss: gloss,
				Runs:  runs,
				Level: level,
				Tags:  x.tags(li),
			})
		}

		forEachNestedList(li, func(list *html.Node) {
			switch list.DataAtom {
			case atom.Ol:
				x.collect(g, list, level+1)
			case atom.Ul:
				for item := list.FirstChild; item != nil; item = item.NextSibling {
					if item.DataAtom == atom.Li {
						g.examples = appendText(g.examples, item)
					}
				}
			case atom.Dl:
				for item := list.FirstChild; item != nil; item = item.NextSibling {
					if item.DataAtom == atom.Dd {
						g.examples = appendText(g.examples, item)
					}
				}
			}
		})
	}
}

// tags returns the qualifier labels that belong to li itself, not to a
// nested sub-sense.
func (x *extractor) tags(li *html.Node) []string {
	var tags []string
	x.doc.FindNodes(li).Find(tagSelector).Each(func(_ int, s *goquery.Selection) {
		if !s.Closest("li").IsNodes(li) {
			return
		}
		for _, part := range strings.Split(htmldoc.CleanText(s.Text()), ",") {
			part = strings.Trim(strings.TrimSpace(part), "()")
			if part != "" {
				tags = append(tags, part)
			}
		}
	})
	return DeduplicateStrings(tags)
}

func skipInGloss(n *html.Node) bool {
	if isNestedList(n) {
		return true
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if slices.Contains(labelClasses, c) {
				return true
			}
		}
	}
	return false
}

func isNestedList(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Ol, atom.Ul, atom.Dl:
		return true
	}
	return false
}

// forEachNestedList calls fn for the outermost lists below li.
func forEachNestedList(li *html.Node, fn func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if isNestedList(c) {
				fn(c)
				continue
			}
			walk(c)
		}
	}
	walk(li)
}

func appendText(dst []string, n *html.Node) []string {
	if t := htmldoc.PlainText(n); t != "" {
		return append(dst, t)
	}
	return dst
}
