package docs

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Small DOM helpers over golang.org/x/net/html. All of them are read-only so
// a parsed document can be shared between goroutines.

// getAttr returns the value of attribute key on n.
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// headingLevel returns 1-6 for h1-h6 and 0 otherwise.
func headingLevel(n *html.Node) int {
	if n == nil || n.Type != html.ElementNode {
		return 0
	}
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

// findByID returns the first heading in document order whose id equals id.
func findByID(root *html.Node, id string) *html.Node {
	if headingLevel(root) > 0 && getAttr(root, "id") == id {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := findByID(c, id); n != nil {
			return n
		}
	}
	return nil
}

// nextInDocument returns the node following n in document order, skipping
// n's own subtree.
func nextInDocument(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// following returns the node after n in a pre-order walk, descending into
// n's children first.
func following(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return nextInDocument(n)
}

// section bounds a forward walk from an anchor heading. The walk stops at
// the next heading whose level is not deeper than the anchor's.
type section struct {
	anchor *html.Node
	level  int
}

func newSection(anchor *html.Node) section {
	return section{anchor: anchor, level: headingLevel(anchor)}
}

func (s section) ends(n *html.Node) bool {
	lvl := headingLevel(n)
	return lvl > 0 && lvl <= s.level
}

// findNext returns the first element after from, in document order and
// within the section, for which match returns true.
func (s section) findNext(from *html.Node, match func(*html.Node) bool) *html.Node {
	for n := nextInDocument(from); n != nil; n = following(n) {
		if s.ends(n) {
			return nil
		}
		if n.Type == html.ElementNode && match(n) {
			return n
		}
	}
	return nil
}

// nextSiblingMatching walks the element siblings after from until the
// section ends.
func (s section) nextSiblingMatching(from *html.Node, match func(*html.Node) bool) *html.Node {
	for n := from.NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		if s.ends(n) {
			return nil
		}
		if match(n) {
			return n
		}
	}
	return nil
}

// findFirst returns the first descendant element of n accepted by match.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant element of n accepted by match.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && match(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// textOf concatenates every text node below n without normalisation.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// collapseSpace trims s and folds each whitespace run into one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func tag(t atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.DataAtom == t }
}
