package layout

import "fmt"

// AssetError reports an unusable font or background image.
type AssetError struct {
	Asset string
	Err   error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s: %v", e.Asset, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// InvariantError is a layout invariant violation: a non-positive block
// height, or a block shorter than the text drawn into it.
type InvariantError struct {
	EventID string
	Height  float64
	Drawn   float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("layout invariant violated for event %s: block height %.2f, drawn %.2f",
		e.EventID, e.Height, e.Drawn)
}

// Stage names the step of a render that failed.
type Stage string

const (
	StageSetup     Stage = "setup"
	StageValidate  Stage = "validate"
	StageWrapTitle Stage = "wrap title"
	StageWrapNotes Stage = "wrap notes"
	StageMeasure   Stage = "measure"
	StagePaginate  Stage = "paginate"
	StageDraw      Stage = "draw"
	StageFinalize  Stage = "finalize"
)

// RenderError carries the stage and, if known, the event a render failed on.
type RenderError struct {
	Stage   Stage
	EventID string
	Err     error
}

func (e *RenderError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("render: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("render: %s (event %s): %v", e.Stage, e.EventID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
