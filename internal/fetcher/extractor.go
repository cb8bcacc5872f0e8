package fetcher

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TextOnly wraps a Fetcher and reduces every body to its visible text, so
// comparisons ignore markup, inline scripts and styles.
type TextOnly struct {
	Next Fetcher
}

func (t TextOnly) Fetch(ctx context.Context, url string) (string, error) {
	body, err := t.Next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return ExtractText(body)
}

// ExtractText parses HTML content and returns the whitespace-collapsed text
// of its title and body.
func ExtractText(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, template").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if title == "" {
		return text, nil
	}
	if text == "" {
		return title, nil
	}
	return title + "\n" + text, nil
}
