// Package browser wraps headless Chromium behind the one capability the
// extraction pipeline needs: a rendered-HTML snapshot of a URL. The page is
// dynamic (slow scripts, an optional iframe around the reservation list), so
// plain HTTP fetching is not enough.
package browser

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Browser is the page-handle boundary consumed by the scraper. Fetch blocks
// until the page settled or the configured wait ceiling passed, then returns
// whatever DOM state exists; the extraction fallbacks absorb the shortfall.
type Browser interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// Options configures the Chromium client.
type Options struct {
	Headless bool
	// WaitTimeout bounds the wait for the reservation container after
	// navigation. Expiry is not an error.
	WaitTimeout time.Duration
	// WaitSelector is the element whose appearance means content loaded.
	WaitSelector string
}

// Client drives a single Chromium instance via Playwright. Browsers must be
// installed beforehand with:
// go run github.com/playwright-community/playwright-go/cmd/playwright@latest install chromium
type Client struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	opts    Options
}

// NewClient starts Playwright and launches the browser.
func NewClient(opts Options) (*Client, error) {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 15 * time.Second
	}
	if opts.WaitSelector == "" {
		opts.WaitSelector = ".regist_list"
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(opts.WaitTimeout.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(opts.WaitTimeout.Milliseconds()))

	return &Client{
		pw:      pw,
		browser: browser,
		context: browserCtx,
		page:    page,
		opts:    opts,
	}, nil
}

// Fetch navigates to the URL, waits for the reservation container (bounded),
// switches into the first iframe when the page nests its content there, and
// returns the rendered HTML.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if _, err := c.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(c.opts.WaitTimeout.Milliseconds())),
	}); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	// Content renders after load; wait for the container but proceed with
	// whatever exists when the ceiling passes.
	if _, err := c.page.WaitForSelector(c.opts.WaitSelector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(c.opts.WaitTimeout.Milliseconds())),
	}); err != nil {
		log.Printf("browser: %q did not appear within %s, using current DOM state", c.opts.WaitSelector, c.opts.WaitTimeout)
	}

	// The reservation list is sometimes served inside an iframe.
	for _, frame := range c.page.Frames() {
		if frame == c.page.MainFrame() {
			continue
		}
		content, err := frame.Content()
		if err != nil {
			continue
		}
		return content, nil
	}

	content, err := c.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return content, nil
}

// Close releases the page, context, browser and the Playwright driver, in
// that order. Safe to call on every exit path.
func (c *Client) Close() error {
	if c.page != nil {
		c.page.Close()
	}
	if c.context != nil {
		c.context.Close()
	}
	if c.browser != nil {
		c.browser.Close()
	}
	if c.pw != nil {
		return c.pw.Stop()
	}
	return nil
}
