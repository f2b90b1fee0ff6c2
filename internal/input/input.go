// Package input prepares raw citizen submissions for analysis:
// stripping pasted markup, collapsing whitespace, harvesting source
// URLs and guessing the language.
package input

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Prepared is the sanitized form of one submission.
type Prepared struct {
	Text string
	Lang string // "de" or "en"
	URLs []string
}

// Prepare sanitizes raw text. locale is used as the language tiebreak
// when stopword voting is inconclusive.
func Prepare(raw, locale string) Prepared {
	text := raw
	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		text = stripHTML(text)
	}
	text = collapseWhitespace(text)

	return Prepared{
		Text: text,
		Lang: DetectLang(text, locale),
		URLs: ExtractURLs(text),
	}
}

// stripHTML extracts visible text, skipping scripts/styles. The html
// parser never fails on malformed markup, so plain text with stray
// angle brackets passes through mostly untouched.
func stripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return buf.String()
}

var spaceRun = regexp.MustCompile(`[ \t]+`)

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)]+`)

// ExtractURLs returns the deduplicated URLs mentioned in the text,
// with trailing punctuation trimmed.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	urls := []string{}
	for _, u := range matches {
		u = strings.TrimRight(u, ".,;:!?")
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

var (
	germanStopwords  = []string{"der", "die", "das", "und", "nicht", "ist", "sind", "für", "mehr", "soll", "sollte", "müssen", "wird", "werden", "eine", "ein", "mit", "auf", "bei", "wir"}
	englishStopwords = []string{"the", "and", "not", "is", "are", "for", "more", "should", "must", "will", "with", "this", "that", "have", "our", "they"}
)

// DetectLang guesses "de" or "en" by stopword voting. The fallback
// locale wins when the vote is tied or the text is too short to tell.
func DetectLang(text, fallback string) string {
	words := strings.Fields(strings.ToLower(text))
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[strings.Trim(w, ".,;:!?\"'()")]++
	}

	var de, en int
	for _, w := range germanStopwords {
		de += counts[w]
	}
	for _, w := range englishStopwords {
		en += counts[w]
	}

	switch {
	case de > en:
		return "de"
	case en > de:
		return "en"
	case fallback == "en":
		return "en"
	default:
		return "de"
	}
}
