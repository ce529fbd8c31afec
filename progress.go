// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tarx

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress is an indeterminate progress indicator. It is owned by a single
// extraction call and only used for display.
type Progress interface {
	// SetMessage replaces the text shown next to the indicator.
	SetMessage(msg string)

	// Increment advances the indicator by n entries.
	Increment(n int)

	// Finish releases the indicator. It is called once, when the extraction returns.
	Finish()
}

// ProgressFunc creates the [Progress] for one extraction call. description
// is the initial message.
type ProgressFunc func(description string) Progress

// noopProgress discards all updates.
type noopProgress struct{}

func (noopProgress) SetMessage(string) {}
func (noopProgress) Increment(int)     {}
func (noopProgress) Finish()           {}

// noopProgressFunc is the default [ProgressFunc].
func noopProgressFunc(string) Progress {
	return noopProgress{}
}

// spinnerType is the braille dot spinner of progressbar.
const spinnerType = 14

// spinner renders a spinner with the number of processed entries and the
// elapsed time, as the total count of a tar stream is unknown in advance.
type spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner returns a [ProgressFunc] that renders a spinner to w.
func NewSpinner(w io.Writer) ProgressFunc {
	return func(description string) Progress {
		return &spinner{
			bar: progressbar.NewOptions(-1,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSpinnerType(spinnerType),
				progressbar.OptionSetDescription(description),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSetRenderBlankState(true),
			),
		}
	}
}

// SetMessage implements [Progress].
func (s *spinner) SetMessage(msg string) {
	s.bar.Describe(msg)
}

// Increment implements [Progress].
func (s *spinner) Increment(n int) {
	_ = s.bar.Add(n)
}

// Finish implements [Progress].
func (s *spinner) Finish() {
	_ = s.bar.Finish()
}
