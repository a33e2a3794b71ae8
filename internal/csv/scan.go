package csv

import "context"

// Scanner inspects a raw upload before it is parsed. Implementations are
// expected to be content scanners in the ClamAV mold; the pipeline only
// cares about the verdict.
type Scanner interface {
	// Scan returns false when the buffer must be rejected. A non-nil
	// error means the scan itself failed and the upload is rejected too.
	Scan(ctx context.Context, data []byte) (bool, error)
}

// NoopScanner accepts everything. Stands in until a real scanner is
// wired behind the interface.
type NoopScanner struct{}

func (NoopScanner) Scan(context.Context, []byte) (bool, error) { return true, nil }
