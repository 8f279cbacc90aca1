package export

import "fmt"

// RenderError reports a fatal failure of the raster-capture or
// serialization step. Exports that fail this way produce no partial file
// and are retryable from scratch. Per-image fetch failures are NOT render
// errors; those degrade to a placeholder locally.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("export: %s failed: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
