package am

import (
	"github.com/teranos/protix/display"
	"github.com/teranos/protix/errors"
	"github.com/teranos/protix/ixgest/protein"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := protein.ParseCategoryPolicy(c.Integrate.UnknownCategory); err != nil {
		return errors.Wrap(err, "integrate.unknown_category")
	}

	if !display.IsSupportedFormat(c.Output.Format) {
		return errors.Newf("output.format must be one of %v, got %q", display.Formats, c.Output.Format)
	}

	// Watch debounce: 0 = fire on every event, negative = invalid
	if c.Watch.DebounceMs < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMs)
	}

	return nil
}
