package nfe

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/rezonia/nfe-converter/internal/format"
)

// Resolve evaluates a field path against node and returns its text as
// written in the document, whitespace included.
//
// Grammar:
//
//	path        = attribute | alternation | elements
//	attribute   = "@" name                  value of node's attribute, "NFe" removed
//	alternation = path "|" path ...          first non-empty alternative
//	elements    = name ("/" name)*          first descendant chain below node
//
// Element chains are matched in the NF-e namespace first and by local name
// second. Misses yield "".
func Resolve(node *etree.Element, path string) string {
	if node == nil {
		return ""
	}

	if strings.HasPrefix(path, "@") {
		return format.AccessKey(node.SelectAttrValue(path[1:], ""))
	}

	if strings.Contains(path, "|") {
		for _, alt := range strings.Split(path, "|") {
			if v := Resolve(node, alt); v != "" {
				return v
			}
		}
		return ""
	}

	segments := splitPath(path)
	if len(segments) == 0 {
		return ""
	}

	el := findChain(node, segments, true)
	if el == nil {
		el = findChain(node, segments, false)
	}
	if el == nil {
		return ""
	}
	return el.Text()
}

func splitPath(path string) []string {
	var out []string
	for _, s := range strings.Split(strings.TrimSpace(path), "/") {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}

// findChain finds the first descendant of node matching segments[0] that has
// a child chain matching the remaining segments.
func findChain(node *etree.Element, segments []string, qualified bool) *etree.Element {
	var found *etree.Element
	walk(node, func(el *etree.Element) bool {
		if !matches(el, segments[0], qualified) {
			return true
		}
		found = descend(el, segments[1:], qualified)
		return found == nil
	})
	return found
}

func descend(el *etree.Element, segments []string, qualified bool) *etree.Element {
	if len(segments) == 0 {
		return el
	}
	for _, child := range el.ChildElements() {
		if !matches(child, segments[0], qualified) {
			continue
		}
		if found := descend(child, segments[1:], qualified); found != nil {
			return found
		}
	}
	return nil
}

func firstDescendant(node *etree.Element, tag string, qualified bool) *etree.Element {
	return findChain(node, []string{tag}, qualified)
}

func allDescendants(node *etree.Element, tag string, qualified bool) []*etree.Element {
	var out []*etree.Element
	walk(node, func(el *etree.Element) bool {
		if matches(el, tag, qualified) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// walk visits the descendants of node in document order until visit returns false
func walk(node *etree.Element, visit func(*etree.Element) bool) bool {
	for _, child := range node.ChildElements() {
		if !visit(child) {
			return false
		}
		if !walk(child, visit) {
			return false
		}
	}
	return true
}

func matches(el *etree.Element, tag string, qualified bool) bool {
	if el.Tag != tag {
		return false
	}
	return !qualified || el.NamespaceURI() == Namespace
}
