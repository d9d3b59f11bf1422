package export

import (
	"context"

	"water7/internal/core"
)

// Archiver appends one finished report as a row in an external archive.
type Archiver interface {
	Append(ctx context.Context, r core.Report) (rowRef string, err error)
}
