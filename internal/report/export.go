package report

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"api_pos/internal/locale"
)

// Format is the artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Content types of the artifacts.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat validates a format; the empty string selects CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Filename returns the download name, e.g. sales-report.csv.
func Filename(k Kind, f Format) string {
	return string(k) + "-report." + string(f)
}

// Artifact is a rendered report ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Notifier receives user-facing notices raised during an export.
type Notifier interface {
	Warn(ctx context.Context, message string)
}

// Request describes one export.
type Request struct {
	Report Report
	Format Format
	Locale locale.Locale
	// Escape selects RFC 4180 quoting for CSV output.
	Escape bool
}

// Exporter renders reports into artifacts.
type Exporter struct {
	logger  *zap.Logger
	exports metric.Int64Counter
}

// NewExporter creates an Exporter that counts exports on meter.
func NewExporter(logger *zap.Logger, meter metric.Meter) (*Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	exports, err := meter.Int64Counter("report.exports",
		metric.WithDescription("Reports rendered for download"),
	)
	if err != nil {
		return nil, fmt.Errorf("create export counter: %w", err)
	}
	return &Exporter{logger: logger, exports: exports}, nil
}

// Export renders req. An empty report raises exactly one warning on n and
// returns a nil artifact with a nil error.
func (e *Exporter) Export(ctx context.Context, req Request, n Notifier) (*Artifact, error) {
	if req.Report.Len() == 0 {
		n.Warn(ctx, locale.Message(req.Locale, emptyMessageKey(req.Report)))
		e.logger.Info("export skipped, no records", zap.String("kind", string(req.Report.Kind())))
		return nil, nil
	}

	art := &Artifact{Filename: Filename(req.Report.Kind(), req.Format)}
	switch req.Format {
	case FormatCSV:
		body := ToCSV(req.Report)
		if req.Escape {
			var err error
			if body, err = ToEscapedCSV(req.Report); err != nil {
				return nil, fmt.Errorf("render csv: %w", err)
			}
		}
		art.ContentType = ContentTypeCSV
		art.Body = []byte(body)
	case FormatXLSX:
		body, err := ToXLSX(req.Report)
		if err != nil {
			return nil, fmt.Errorf("render xlsx: %w", err)
		}
		art.ContentType = ContentTypeXLSX
		art.Body = body
	default:
		return nil, fmt.Errorf("unknown report format %q", req.Format)
	}

	e.exports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(req.Report.Kind())),
		attribute.String("format", string(req.Format)),
	))
	e.logger.Info("report exported",
		zap.String("kind", string(req.Report.Kind())),
		zap.String("format", string(req.Format)),
		zap.Int("rows", req.Report.Len()),
		zap.Int("bytes", len(art.Body)),
	)
	return art, nil
}

func emptyMessageKey(r Report) string {
	switch r.(type) {
	case SalesReport:
		return locale.MsgNoSalesData
	case InventoryReport:
		return locale.MsgNoInventoryData
	}
	panic(fmt.Sprintf("report: unhandled report type %T", r))
}
