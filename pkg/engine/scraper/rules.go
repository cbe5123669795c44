package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rule is one extraction attempt: a CSS selector, the attribute to
// read (empty means text content), and a validity predicate. Upstream
// markup is not versioned or contracted, so every extraction point
// carries an ordered fallback list of these instead of a schema.
type Rule struct {
	Selector string
	Attr     string
	Valid    func(string) bool
}

// RuleSet is an ordered fallback list; the first rule yielding a valid
// value wins.
type RuleSet []Rule

// Extract applies the rules against s in priority order and returns
// the first valid value, or "".
func (rs RuleSet) Extract(s *goquery.Selection) string {
	for _, rule := range rs {
		sel := s
		if rule.Selector != "" {
			sel = s.Find(rule.Selector)
		}
		if sel.Length() == 0 {
			continue
		}

		var value string
		if rule.Attr == "" {
			value = strings.TrimSpace(sel.First().Text())
		} else {
			value = strings.TrimSpace(sel.First().AttrOr(rule.Attr, ""))
		}

		if value == "" {
			continue
		}
		if rule.Valid != nil && !rule.Valid(value) {
			continue
		}
		return value
	}
	return ""
}

// SelectFirst returns the selection of the first selector in the list
// that matches at least one element, or nil. This is how card lists
// and reader areas survive site redesigns: several generations of
// markup are tried in priority order.
func SelectFirst(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		selector = strings.TrimSpace(selector)
		if selector == "" {
			continue
		}
		if sel := doc.Find(selector); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// ImageURL extracts an image URL from an img element, preferring
// src over the lazy-loading attributes.
func ImageURL(s *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
		if v := strings.TrimSpace(s.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

// NonEmpty accepts any non-blank value.
func NonEmpty(v string) bool {
	return strings.TrimSpace(v) != ""
}

// NumericRating accepts values like "9.5" or "10". Rating slots often
// fall back to unrelated text when a site reshuffles its markup, so
// the format check is the real validity test.
func NumericRating(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	stripped := strings.ReplaceAll(v, ".", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsAbsoluteURL accepts http(s) URLs with a host.
func IsAbsoluteURL(v string) bool {
	u, err := url.Parse(v)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ResolveURL resolves href against base, returning href unchanged when
// it is already absolute or base does not parse.
func ResolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	if IsAbsoluteURL(href) {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
