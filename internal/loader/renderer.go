package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/cloo-solutions/linkdigest/internal/domain"
)

// Page is a rendered document.
type Page struct {
	URL   string
	Title string
	HTML  string
}

// Renderer produces the HTML of a page after scripts have run, or as close to
// that as the implementation gets.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (*Page, error)
}

// ChromeRenderer renders pages in headless Chrome. Each call opens its own
// browser context, so nothing leaks between requests.
type ChromeRenderer struct {
	timeout   time.Duration
	remoteURL string
	execPath  string
}

// NewChromeRenderer creates a renderer. A non-empty remoteURL attaches to an
// already running browser over DevTools; otherwise Chrome is launched from
// execPath, or from PATH when execPath is empty.
func NewChromeRenderer(timeout time.Duration, remoteURL, execPath string) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromeRenderer{timeout: timeout, remoteURL: remoteURL, execPath: execPath}
}

func (r *ChromeRenderer) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.remoteURL != "" {
		return chromedp.NewRemoteAllocator(ctx, r.remoteURL)
	}
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.UserAgent(defaultUserAgent))
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	return chromedp.NewExecAllocator(ctx, opts...)
}

func (r *ChromeRenderer) Render(ctx context.Context, pageURL string) (*Page, error) {
	allocCtx, cancelAlloc := r.allocator(ctx)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	page := &Page{URL: pageURL}
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&page.URL),
		chromedp.Title(&page.Title),
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, domain.NewRenderError(fmt.Sprintf("timed out rendering %s after %s", pageURL, r.timeout), err)
		}
		return nil, domain.NewRenderError("failed to render "+pageURL, err)
	}
	return page, nil
}

// HTTPRenderer fetches the static HTML without running scripts. Used where no
// browser is available.
type HTTPRenderer struct {
	fetcher *Fetcher
}

func NewHTTPRenderer(fetcher *Fetcher) *HTTPRenderer {
	return &HTTPRenderer{fetcher: fetcher}
}

func (r *HTTPRenderer) Render(ctx context.Context, pageURL string) (*Page, error) {
	body, err := r.fetcher.Get(ctx, pageURL, map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewRenderError("timed out fetching "+pageURL, err)
		}
		return nil, domain.NewRenderError("failed to fetch "+pageURL, err)
	}
	return &Page{URL: pageURL, HTML: string(body)}, nil
}
