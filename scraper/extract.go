package scraper

import (
	"regexp"
	"strings"

	"reservation-monitor/utils"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Strategy pulls candidate slot labels out of a rendered page.
// matched reports whether the strategy recognised anything on the page at all;
// a strategy may match and still return no labels once filters are applied.
type Strategy func(doc *goquery.Document) (labels []string, matched bool)

// ElementFilter decides whether a matched element should be kept
type ElementFilter func(s *goquery.Selection) bool

// LabelFilter decides whether an extracted label should be kept
type LabelFilter func(label string) bool

var (
	timePattern  = regexp.MustCompile(`\b\d{1,2}:\d{2}\s*(?:AM|PM|am|pm)?\b`)
	clockPattern = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// FirstMatch tries strategies in priority order and returns the labels of
// the first one that matched. Later strategies are not run.
func FirstMatch(strategies ...Strategy) Strategy {
	return func(doc *goquery.Document) ([]string, bool) {
		for _, s := range strategies {
			if labels, ok := s(doc); ok {
				return labels, true
			}
		}
		return nil, false
	}
}

// SelectorStrategy matches css and maps every enabled element to its trimmed
// text. Disabled elements and elements rejected by a filter are skipped,
// as are empty labels and labels rejected by keep.
func SelectorStrategy(css string, keep LabelFilter, filters ...ElementFilter) Strategy {
	return func(doc *goquery.Document) ([]string, bool) {
		sel := doc.Find(css)
		if sel.Length() == 0 {
			return nil, false
		}
		labels := []string{}
		sel.Each(func(_ int, el *goquery.Selection) {
			if isDisabled(el) {
				return
			}
			for _, f := range filters {
				if !f(el) {
					return
				}
			}
			label := strings.TrimSpace(el.Text())
			if label == "" {
				return
			}
			if keep != nil && !keep(label) {
				return
			}
			labels = append(labels, label)
		})
		return labels, true
	}
}

// TimePatternStrategy scans the visible page text for anything shaped like a
// clock time and returns the distinct matches in page order. It matches only
// when at least one time is found.
func TimePatternStrategy() Strategy {
	return func(doc *goquery.Document) ([]string, bool) {
		text := visibleText(doc.Find("body"))
		seen := utils.NewSeen()
		for _, m := range timePattern.FindAllString(text, -1) {
			seen.Add(strings.TrimSpace(m))
		}
		if seen.Len() == 0 {
			return nil, false
		}
		return seen.Items(), true
	}
}

// ContainsClockTime keeps labels that contain an H:MM time
func ContainsClockTime(label string) bool {
	return clockPattern.MatchString(label)
}

// ExcludeClassContaining drops elements whose class attribute contains fragment
func ExcludeClassContaining(fragment string) ElementFilter {
	return func(s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return !strings.Contains(class, fragment)
	}
}

func isDisabled(s *goquery.Selection) bool {
	if _, ok := s.Attr("disabled"); ok {
		return true
	}
	if v, ok := s.Attr("aria-disabled"); ok && strings.EqualFold(v, "true") {
		return true
	}
	return false
}

// visibleText joins the text nodes under sel, one per line, skipping
// script, style, noscript and template contents
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}
