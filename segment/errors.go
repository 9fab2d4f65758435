// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"fmt"
)

// InvalidImageError is returned when a page can not be segmented at
// all, such as when it has no pixels. It only ever affects the one
// page.
type InvalidImageError struct {
	Width, Height int
	Reason        string
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("Invalid image (%dx%d): %s", e.Width, e.Height, e.Reason)
}

// ContourError describes a single region which was skipped. The rest
// of the page is unaffected.
type ContourError struct {
	Region Region
	Reason string
}

func (e *ContourError) Error() string {
	return fmt.Sprintf("Skipped region %s: %s", e.Region, e.Reason)
}
