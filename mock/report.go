package mock

import (
	"context"

	"github.com/hoabrief/hoabrief"
)

var _ hoabrief.ReportWriter = (*ReportWriter)(nil)

// ReportWriter is a mock implementation of hoabrief.ReportWriter.
type ReportWriter struct {
	WriteReportFn func(ctx context.Context, report *hoabrief.Report) (string, error)
}

func (w *ReportWriter) WriteReport(ctx context.Context, report *hoabrief.Report) (string, error) {
	return w.WriteReportFn(ctx, report)
}
