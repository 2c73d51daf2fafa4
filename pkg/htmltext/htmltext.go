package htmltext

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/shoplens/seoaudit/pkg/model"
)

var (
	tagRe        = regexp.MustCompile(`(?s)<[^>]*>`)
	wordRe       = regexp.MustCompile(`[A-Za-z]+(?:['-][A-Za-z]+)*`)
	headingRe    = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]\s*>`)
	anyHeadingRe = regexp.MustCompile(`(?i)<h[1-6][\s>]`)
	subHeadingRe = regexp.MustCompile(`(?i)<h[2-6][\s>]`)
	imgRe        = regexp.MustCompile(`(?is)<img[^>]*>`)
	altAttrRe    = regexp.MustCompile(`(?i)\balt\s*=`)
	hrefRe       = regexp.MustCompile(`(?is)<a[^>]+href\s*=\s*["']([^"']+)["']`)
)

// StripTags removes markup from s, leaving plain text.
func StripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, " "))
}

// CountWords counts words in plain text the way PHP's str_word_count does:
// alphabetic runs, with apostrophes and hyphens allowed inside a word.
// Issue messages quote these counts, so the semantics are pinned down.
func CountWords(text string) int {
	return len(wordRe.FindAllString(text, -1))
}

// WordCount strips markup and counts the remaining words.
func WordCount(html string) int {
	return CountWords(StripTags(html))
}

// TrimWords returns the first n words of plain text, appending the ellipsis
// marker when anything was cut.
func TrimWords(text string, n int, ellipsis string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) <= n {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:n], " ") + ellipsis
}

// Headings extracts heading tags (level and inner text) from markup.
// Matching is case-insensitive and tolerates nested tags inside the heading.
func Headings(html string) []model.Heading {
	matches := headingRe.FindAllStringSubmatch(html, -1)
	headings := make([]model.Heading, 0, len(matches))
	for _, m := range matches {
		level := int(m[1][0] - '0')
		headings = append(headings, model.Heading{
			Level: level,
			Text:  StripTags(m[2]),
		})
	}
	return headings
}

// HasHeading reports whether markup contains any h1-h6 tag.
func HasHeading(html string) bool {
	return anyHeadingRe.MatchString(html)
}

// HasSubheading reports whether markup contains any h2-h6 tag.
func HasSubheading(html string) bool {
	return subHeadingRe.MatchString(html)
}

// ImagesMissingAlt counts <img> tags that carry no alt attribute at all.
func ImagesMissingAlt(html string) int {
	count := 0
	for _, img := range imgRe.FindAllString(html, -1) {
		if !altAttrRe.MatchString(img) {
			count++
		}
	}
	return count
}

// HasInternalLink reports whether markup links back to the site's own
// domain. Relative hrefs count as internal; absolute hrefs are compared by
// registrable domain so subdomains of the store still match.
func HasInternalLink(html, siteURL string) bool {
	siteHost := registrableHost(siteURL)
	for _, m := range hrefRe.FindAllStringSubmatch(html, -1) {
		href := strings.TrimSpace(m[1])
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
			return true
		}
		if host := registrableHost(href); host != "" && host == siteHost {
			return true
		}
	}
	return false
}

func registrableHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}
