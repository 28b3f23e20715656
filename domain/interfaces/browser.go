package interfaces

import (
	"context"
	"time"
)

// Driver defines the browser capabilities a verification run needs.
// Text arguments are literal text anchors; selectors are CSS selectors.
type Driver interface {
	// Navigate loads a URL in the page
	Navigate(ctx context.Context, url string) error

	// Fill types a value into the element matching selector
	Fill(ctx context.Context, selector string, value string) error

	// Click clicks the element matching selector
	Click(ctx context.Context, selector string) error

	// WaitForSelector blocks until text is visible or timeout elapses.
	// A timeout is reported as entities.ErrTimeout.
	WaitForSelector(ctx context.Context, text string, timeout time.Duration) error

	// IsVisible checks if an element containing text is visible
	IsVisible(ctx context.Context, text string) (bool, error)

	// GetContent returns the page HTML
	GetContent(ctx context.Context) (string, error)

	// Screenshot writes a PNG screenshot to path
	Screenshot(ctx context.Context, path string, fullPage bool) error

	// Close releases the page and the browser behind it
	Close() error
}

// DriverLauncher acquires a fresh Driver for one run
type DriverLauncher interface {
	Launch(ctx context.Context) (Driver, error)
}
