package harvest

import (
	"errors"
	"fmt"
)

// ErrSourceBusy is returned when a source could not be claimed because another
// run already holds it.
var ErrSourceBusy = errors.New("source is already processing")

// FetchError is the terminal failure of a fetch after all retries.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
