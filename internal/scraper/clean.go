package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	bylinePattern   = regexp.MustCompile(`^(?i:by)\s+\p{Lu}[\p{L}.'\-]*(\s+(\p{Lu}[\p{L}.'\-]*|and|&|,))*\s*(,.*)?$`)
	datelinePattern = regexp.MustCompile(`(?i)^(updated|published|last updated|posted)\b`)
	spacePattern    = regexp.MustCompile(`[ \t\p{Zs}]+`)
)

// Lines containing any of these are page furniture, not article text.
var junkIndicators = []string{
	"all rights reserved",
	"copyright ©",
	"sign up for our newsletter",
	"subscribe to our newsletter",
	"newsletter sign-up",
	"we use cookies",
	"cookie policy",
	"accept cookies",
	"share this article",
	"share on facebook",
	"share on twitter",
	"click here to",
	"read more:",
	"also read:",
	"advertisement",
	"follow us on",
}

// CleanText strips HTML from s and removes boilerplate lines. Used for RSS
// descriptions, which often carry markup.
func CleanText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	if strings.Contains(s, "<") {
		html := strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "</p>\n\n").Replace(s)
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			s = doc.Text()
		}
	}

	return cleanContent(s)
}

// cleanContent removes bylines, datelines and site chrome and normalizes
// whitespace. Paragraphs are separated by a blank line.
func cleanContent(content string) string {
	if content == "" {
		return ""
	}

	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if line == "" {
			flush()
			continue
		}
		if isJunkLine(line) {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return strings.TrimSpace(strings.Join(paragraphs, "\n\n"))
}

func isJunkLine(line string) bool {
	if strings.HasPrefix(line, "©") {
		return true
	}
	if len(line) < 80 && bylinePattern.MatchString(line) {
		return true
	}
	if len(line) < 120 && datelinePattern.MatchString(line) {
		return true
	}

	lower := strings.ToLower(line)
	for _, indicator := range junkIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
