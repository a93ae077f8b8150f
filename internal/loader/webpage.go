package loader

import (
	"context"
	"errors"
	"log"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/cloo-solutions/linkdigest/internal/domain"
)

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaceRun   = regexp.MustCompile(`[ \t\f\r]+`)
)

// nonContentSelectors are removed before falling back to whole-body text.
var nonContentSelectors = []string{
	"script", "style", "noscript", "iframe", "svg", "template",
	"header", "footer", "nav", "aside", "form",
	".advertisement", ".ad", ".sidebar", ".comments", ".cookie-banner",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]", "[aria-hidden=true]",
}

// WebPageLoader renders a page and extracts its title and visible text.
type WebPageLoader struct {
	renderer Renderer
}

func NewWebPageLoader(renderer Renderer) *WebPageLoader {
	return &WebPageLoader{renderer: renderer}
}

func (l *WebPageLoader) Load(ctx context.Context, link domain.SourceLink) ([]domain.ContentFragment, error) {
	page, err := l.renderer.Render(ctx, link.URL())
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewRenderError("failed to render page", err)
	}

	extracted, err := ExtractPage(page)
	if err != nil {
		return nil, domain.NewLoadError("failed to extract page text", err)
	}
	if strings.TrimSpace(extracted.Text) == "" {
		return nil, domain.NewLoadError("page has no visible text", errors.New(link.Raw))
	}

	meta := map[string]string{
		domain.MetaSource:   link.Raw,
		domain.MetaTitle:    extracted.Title,
		domain.MetaAuthor:   extracted.Author,
		domain.MetaSiteName: extracted.SiteName,
	}

	log.Printf("Loaded page %s (%d chars)", link.Raw, len(extracted.Text))
	return []domain.ContentFragment{domain.NewContentFragment(extracted.Text, meta)}, nil
}

// Extracted is the readable content of a page.
type Extracted struct {
	Title    string
	Author   string
	SiteName string
	Text     string
}

// ExtractPage pulls the main article with readability and renders it to
// paragraph-preserving text. Pages readability cannot handle fall back to the
// body text with non-content elements removed.
func ExtractPage(page *Page) (*Extracted, error) {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		pageURL = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(page.HTML), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		text, convErr := htmltomarkdown.ConvertString(article.Content)
		if convErr != nil || strings.TrimSpace(text) == "" {
			text = article.TextContent
		}
		title := article.Title
		if title == "" {
			title = page.Title
		}
		return &Extracted{
			Title:    strings.TrimSpace(title),
			Author:   strings.TrimSpace(article.Byline),
			SiteName: strings.TrimSpace(article.SiteName),
			Text:     normalizeText(text),
		}, nil
	}

	return extractWithGoquery(page)
}

func extractWithGoquery(page *Page) (*Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title, _ = doc.Find("meta[property='og:title']").First().Attr("content")
		title = strings.TrimSpace(title)
	}
	siteName, _ := doc.Find("meta[property='og:site_name']").First().Attr("content")
	author, _ := doc.Find("meta[name=author]").First().Attr("content")

	doc.Find(strings.Join(nonContentSelectors, ", ")).Remove()

	content := doc.Find("article, main, [role=main], .content, .post-content, .article-content, #content").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	var blocks []string
	content.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li").Length() > 0 {
			return
		}
		if text := strings.Join(strings.Fields(s.Text()), " "); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) == 0 {
		if text := strings.Join(strings.Fields(content.Text()), " "); text != "" {
			blocks = append(blocks, text)
		}
	}

	return &Extracted{
		Title:    title,
		Author:   strings.TrimSpace(author),
		SiteName: strings.TrimSpace(siteName),
		Text:     strings.Join(blocks, "\n\n"),
	}, nil
}

func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}
