package services

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxRawContentBytes caps the patch notes forwarded to the analysis service.
const MaxRawContentBytes = 512 << 10

// PreparePatchNotes turns user supplied patch notes into the raw_content
// sent with the submit-style call. Pasted or uploaded HTML pages are reduced
// to their article text, one text run per line; plain text is only trimmed.
func PreparePatchNotes(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if len(raw) > MaxRawContentBytes {
		return "", fmt.Errorf("patch notes too large: %d bytes (max %d)", len(raw), MaxRawContentBytes)
	}
	if !looksLikeHTML(raw) {
		return raw, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse patch notes HTML: %w", err)
	}
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	// Patch notes articles keep their content in div.article; fall back to
	// the whole body for anything else.
	root := doc.Find("div.article").First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	var lines []string
	collectText(root, &lines)
	return strings.Join(lines, "\n"), nil
}

func collectText(sel *goquery.Selection, lines *[]string) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		if goquery.NodeName(child) == "#text" {
			if text := strings.TrimSpace(child.Text()); text != "" {
				*lines = append(*lines, text)
			}
			return
		}
		collectText(child, lines)
	})
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.Contains(head, "<html") ||
		strings.Contains(head, "<body") ||
		strings.Contains(head, "<div")
}
