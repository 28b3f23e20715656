package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ui_verification/domain/entities"
	"ui_verification/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// Options controls how browsers are launched
type Options struct {
	Browser           string // chromium, firefox or webkit
	Headless          bool
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
	// AssertTimeout is how long IsVisible waits for text to show up
	AssertTimeout time.Duration
	SlowMo        time.Duration
}

// DefaultOptions mirrors the viewport and timeouts the checks were written against
func DefaultOptions() Options {
	return Options{
		Browser:           "chromium",
		Headless:          true,
		ViewportWidth:     1280,
		ViewportHeight:    1024,
		NavigationTimeout: 30 * time.Second,
		AssertTimeout:     5 * time.Second,
	}
}

// Launcher starts one playwright browser per Launch call
type Launcher struct {
	opts   Options
	logger *logrus.Logger
}

// NewLauncher - creates new playwright launcher
func NewLauncher(opts Options, logger *logrus.Logger) *Launcher {
	return &Launcher{opts: opts, logger: logger}
}

// InstallBrowsers downloads the playwright driver and the named browser
func InstallBrowsers(browserName string) error {
	if browserName == "" {
		browserName = "chromium"
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{browserName}}); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

// Launch - starts playwright, a browser, a context and a page.
// Everything started here is stopped by the returned driver's Close.
func (l *Launcher) Launch(ctx context.Context) (interfaces.Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !supportedBrowser(l.opts.Browser) {
		return nil, fmt.Errorf("unsupported browser: %s", l.opts.Browser)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browserType, err := l.browserType(pw)
	if err != nil {
		pw.Stop()
		return nil, err
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if browserType != pw.Chromium {
		launchOpts.Args = nil
	}
	if l.opts.SlowMo > 0 {
		launchOpts.SlowMo = playwright.Float(float64(l.opts.SlowMo.Milliseconds()))
	}

	l.logger.Debugf("Launching %s (headless=%t)", l.opts.Browser, l.opts.Headless)
	browser, err := browserType.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOptions := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
	}
	if l.opts.ViewportWidth > 0 && l.opts.ViewportHeight > 0 {
		contextOptions.Viewport = &playwright.Size{
			Width:  l.opts.ViewportWidth,
			Height: l.opts.ViewportHeight,
		}
	}

	browserCtx, err := browser.NewContext(contextOptions)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	if l.opts.NavigationTimeout > 0 {
		page.SetDefaultNavigationTimeout(float64(l.opts.NavigationTimeout.Milliseconds()))
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		l.logger.Debugf("Accepting dialog: %s", dialog.Message())
		dialog.Accept()
	})

	return &pageDriver{
		pw:            pw,
		browser:       browser,
		context:       browserCtx,
		page:          page,
		logger:        l.logger,
		assertTimeout: l.opts.AssertTimeout,
	}, nil
}

func (l *Launcher) browserType(pw *playwright.Playwright) (playwright.BrowserType, error) {
	switch strings.ToLower(l.opts.Browser) {
	case "", "chromium", "chrome":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unsupported browser: %s", l.opts.Browser)
	}
}

func supportedBrowser(name string) bool {
	switch strings.ToLower(name) {
	case "", "chromium", "chrome", "firefox", "webkit":
		return true
	}
	return false
}

type pageDriver struct {
	pw            *playwright.Playwright
	browser       playwright.Browser
	context       playwright.BrowserContext
	page          playwright.Page
	logger        *logrus.Logger
	assertTimeout time.Duration
}

// Navigate - navigates to the specified URL
func (d *pageDriver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Infof("Navigating to: %s", url)

	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	return err
}

// Fill - fills an input identified by a CSS selector
func (d *pageDriver) Fill(ctx context.Context, selector string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Debugf("Filling: %s", selector)
	return d.page.Locator(selector).Fill(value)
}

// Click - clicks an element identified by a CSS selector
func (d *pageDriver) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Debugf("Clicking on: %s", selector)
	return d.page.Locator(selector).Click()
}

// WaitForSelector - waits until an element with the text is visible
func (d *pageDriver) WaitForSelector(ctx context.Context, text string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.page.Locator(TextSelector(text)).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %q after %s", entities.ErrTimeout, text, timeout)
	}
	return err
}

// IsVisible - checks if an element with the text becomes visible within the assert timeout
func (d *pageDriver) IsVisible(ctx context.Context, text string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	locator := d.page.Locator(TextSelector(text)).First()
	if d.assertTimeout <= 0 {
		return locator.IsVisible()
	}

	err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(d.assertTimeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetContent - returns the page HTML
func (d *pageDriver) GetContent(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.page.Content()
}

// Screenshot - takes a screenshot of the current page
func (d *pageDriver) Screenshot(ctx context.Context, path string, fullPage bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}

	_, err := d.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(fullPage),
	})
	return err
}

// Close - closes the context, the browser and the playwright driver
func (d *pageDriver) Close() error {
	var errs []error

	if d.context != nil {
		if err := d.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}
	if d.browser != nil {
		if err := d.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	if d.pw != nil {
		if err := d.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	return errors.Join(errs...)
}

// TextSelector turns a text anchor into a playwright selector.
// Strings that already name a selector engine pass through.
func TextSelector(text string) string {
	for _, prefix := range []string{"text=", "css=", "xpath=", "id=", "data-testid="} {
		if strings.HasPrefix(text, prefix) {
			return text
		}
	}
	if strings.HasPrefix(text, "//") {
		return text
	}
	return "text=" + text
}

// Ensure Launcher implements DriverLauncher interface
var _ interfaces.DriverLauncher = (*Launcher)(nil)
