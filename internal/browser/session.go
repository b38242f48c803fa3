// Package browser defines the boundary to the external browser automation
// engine. The checklist engine only ever talks to the Session interface; the
// exec implementation shells out to an automation driver CLI.
package browser

import "time"

// Session is one live browser session. All mutating calls take a timeout
// that bounds how long the driver may wait for the page to settle.
type Session interface {
	// Navigate loads the URL and waits for the page to reach network idle.
	Navigate(url string, timeout time.Duration) error
	Click(selector string, timeout time.Duration) error
	Type(selector string, text string, timeout time.Duration) error
	Select(selector string, value string, timeout time.Duration) error
	WaitFor(selector string, timeout time.Duration) error
	Hover(selector string, timeout time.Duration) error
	// Text returns the visible text content of the first element matching
	// the selector.
	Text(selector string, timeout time.Duration) (string, error)
	// URL returns the session's current URL.
	URL() (string, error)
	// Screenshot writes a full-page screenshot to path.
	Screenshot(path string) error
	// Close releases the session. Safe to call more than once.
	Close() error
}

// Driver opens browser sessions.
type Driver interface {
	Open() (Session, error)
}
