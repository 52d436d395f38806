package primary

import (
	"context"
	"io"
)

// ImportService defines the primary port for bulk control import.
type ImportService interface {
	// Import reads tabular rows from req.Source and installs the accepted
	// controls according to req.Mode. Rejected rows are reported, never fatal.
	Import(ctx context.Context, req ImportRequest) (*ImportResult, error)

	// DirectControls returns the controls installed by the last direct import.
	DirectControls() []*Control
}

// ImportMode selects where accepted rows go.
type ImportMode string

// Import modes.
const (
	// ImportModePersisted inserts every accepted row into the store under a
	// fresh id and then resynchronizes the projection.
	ImportModePersisted ImportMode = "persisted"

	// ImportModeDirect installs accepted rows into a canvas that bypasses
	// the store and the projection.
	ImportModeDirect ImportMode = "direct"
)

// ImportRequest contains parameters for an import.
type ImportRequest struct {
	QuestionnaireID string
	Source          io.Reader
	Mode            ImportMode
}

// ImportResult summarizes an import.
type ImportResult struct {
	Mode     ImportMode
	Total    int
	Imported int
	IDs      []string
	Errors   []string
}
