// Package llm holds the narrator implementations that turn prompts into
// report text.
package llm

import "errors"

// ErrUnavailable is returned by narrators that have no model behind them.
var ErrUnavailable = errors.New("narrator unavailable")
