// Package verifiertest provides a scripted in-memory Driver for tests that
// exercise the runner without a real browser.
package verifiertest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ui_verification/domain/interfaces"
)

// Call records one driver invocation
type Call struct {
	Method string
	Args   []string
}

// FakeDriver answers driver calls from a fixed page description
type FakeDriver struct {
	mu sync.Mutex

	// VisibleTexts lists text anchors IsVisible and WaitForSelector can find.
	// A text is found when any entry contains it.
	VisibleTexts []string
	Content      string

	NavigateErr   error
	FillErr       error
	ClickErr      error
	WaitErr       error
	ContentErr    error
	ScreenshotErr error
	CloseErr      error
	VisibleErrs   map[string]error

	// WriteScreenshots makes Screenshot create a small file at the path
	WriteScreenshots bool

	calls      []Call
	closeCount int
}

func (d *FakeDriver) record(method string, args ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Method: method, Args: args})
}

func (d *FakeDriver) Navigate(ctx context.Context, url string) error {
	d.record("Navigate", url)
	return d.NavigateErr
}

func (d *FakeDriver) Fill(ctx context.Context, selector string, value string) error {
	d.record("Fill", selector, value)
	return d.FillErr
}

func (d *FakeDriver) Click(ctx context.Context, selector string) error {
	d.record("Click", selector)
	return d.ClickErr
}

func (d *FakeDriver) WaitForSelector(ctx context.Context, text string, timeout time.Duration) error {
	d.record("WaitForSelector", text, timeout.String())
	return d.WaitErr
}

func (d *FakeDriver) IsVisible(ctx context.Context, text string) (bool, error) {
	d.record("IsVisible", text)
	if err, ok := d.VisibleErrs[text]; ok {
		return false, err
	}
	for _, v := range d.VisibleTexts {
		if strings.Contains(v, text) {
			return true, nil
		}
	}
	return false, nil
}

func (d *FakeDriver) GetContent(ctx context.Context) (string, error) {
	d.record("GetContent")
	if d.ContentErr != nil {
		return "", d.ContentErr
	}
	return d.Content, nil
}

func (d *FakeDriver) Screenshot(ctx context.Context, path string, fullPage bool) error {
	mode := "viewport"
	if fullPage {
		mode = "full"
	}
	d.record("Screenshot", path, mode)
	if d.ScreenshotErr != nil {
		return d.ScreenshotErr
	}
	if d.WriteScreenshots {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		return os.WriteFile(path, []byte("\x89PNG fake"), 0644)
	}
	return nil
}

func (d *FakeDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeCount++
	return d.CloseErr
}

// Calls returns a copy of the recorded calls
func (d *FakeDriver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Methods returns the recorded method names in call order
func (d *FakeDriver) Methods() []string {
	calls := d.Calls()
	methods := make([]string, len(calls))
	for i, c := range calls {
		methods[i] = c.Method
	}
	return methods
}

// CallCount returns how often method was called
func (d *FakeDriver) CallCount(method string) int {
	n := 0
	for _, c := range d.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// CloseCount returns how often Close was called
func (d *FakeDriver) CloseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeCount
}

// Launcher hands out the same FakeDriver on every launch
type Launcher struct {
	Driver *FakeDriver
	Err    error

	mu       sync.Mutex
	launches int
}

func (l *Launcher) Launch(ctx context.Context) (interfaces.Driver, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches++
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Driver, nil
}

// Launches returns how many times Launch was called
func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

var (
	_ interfaces.Driver         = (*FakeDriver)(nil)
	_ interfaces.DriverLauncher = (*Launcher)(nil)
)
