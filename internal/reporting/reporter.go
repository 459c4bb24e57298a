package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/internal/economic"
)

// Reporter defines the interface for writing assessment bundles to an output.
type Reporter interface {
	// Write renders one bundle.
	Write(b *Bundle) error
	// Close finalizes the report and closes any underlying resources (e.g., file handles).
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// FileName is the artifact name of a run in the given format.
func FileName(runID, format string) string {
	return fmt.Sprintf("solar_security_report_%s.%s", runID, strings.ToLower(format))
}

// New creates a new reporter based on the specified format and output path.
func New(format, outputPath string, cfg ReportConfiguration, logger *zap.Logger) (Reporter, error) {
	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "stdout"

	if isStdOut {
		// Wrap Stdout so Close() is a no-op.
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	// Helper function to close the writer if it's a file and an error occurs.
	cleanup := func() {
		if !isStdOut {
			writer.Close()
		}
	}

	return NewWithWriter(format, writer, cfg, logger, cleanup)
}

// NewWithWriter creates a reporter that takes ownership of w. onError runs
// when the format is rejected and may be nil.
func NewWithWriter(format string, w io.WriteCloser, cfg ReportConfiguration, logger *zap.Logger, onError func()) (Reporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := writerBase{w: w, log: logger.Named("reporting").With(zap.String("format", format))}

	switch strings.ToLower(format) {
	case FormatJSON:
		return &jsonReporter{base}, nil
	case FormatCSV:
		return &csvReporter{base}, nil
	case FormatHTML:
		cfg.OutputFormat = FormatHTML
		return &htmlReporter{writerBase: base, cfg: cfg}, nil
	default:
		if onError != nil {
			onError()
		}
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

type writerBase struct {
	w   io.WriteCloser
	log *zap.Logger
}

func (r *writerBase) Close() error {
	if err := r.w.Close(); err != nil {
		return fmt.Errorf("failed to close report output: %w", err)
	}
	return nil
}

// jsonReporter writes the full bundle as indented JSON.
type jsonReporter struct{ writerBase }

func (r *jsonReporter) Write(b *Bundle) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to encode json report: %w", err)
	}
	r.log.Debug("JSON report written.", zap.String("run_id", b.RunID))
	return nil
}

// csvReporter writes the economic impact table.
type csvReporter struct{ writerBase }

func (r *csvReporter) Write(b *Bundle) error {
	if err := economic.WriteImpactsCSV(r.w, b.Economic.Impacts); err != nil {
		return fmt.Errorf("failed to write csv report: %w", err)
	}
	r.log.Debug("CSV report written.", zap.String("run_id", b.RunID), zap.Int("rows", len(b.Economic.Impacts)))
	return nil
}

type htmlReporter struct {
	writerBase
	cfg ReportConfiguration
}

func (r *htmlReporter) Write(b *Bundle) error {
	if err := RenderHTML(r.w, b, r.cfg, r.log); err != nil {
		return err
	}
	r.log.Debug("HTML report written.", zap.String("run_id", b.RunID))
	return nil
}
