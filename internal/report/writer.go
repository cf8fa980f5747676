package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/pkg/logger"
)

// Writer writes the report files of a run into an output directory
// ⭐ SSOT: S4 리포트 파일 작성은 여기서만
type Writer struct {
	dir    string
	cfg    *strategyconfig.Config
	logger *logger.Logger
}

// Paths lists the files written for a run
type Paths struct {
	ResultsCSV string `json:"results_csv"`
	ReportMD   string `json:"report_md"`
	ExplainMD  string `json:"explain_md"`
}

// NewWriter creates a report writer
func NewWriter(dir string, cfg *strategyconfig.Config, log *logger.Logger) *Writer {
	return &Writer{
		dir:    dir,
		cfg:    cfg,
		logger: log.WithField("module", "report"),
	}
}

// Write renders all reports. Files are replaced atomically.
func (w *Writer) Write(run *contracts.ScreenRun) (*Paths, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	rep := w.cfg.Report
	paths := &Paths{
		ResultsCSV: filepath.Join(w.dir, rep.ResultsCSV),
		ReportMD:   filepath.Join(w.dir, rep.ReportMD),
		ExplainMD:  filepath.Join(w.dir, rep.ExplainMD),
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, run); err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	if err := writeFileAtomic(paths.ResultsCSV, buf.Bytes()); err != nil {
		return nil, err
	}

	buf.Reset()
	if err := WriteMarkdown(&buf, run, rep.TopN); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	if err := writeFileAtomic(paths.ReportMD, buf.Bytes()); err != nil {
		return nil, err
	}

	buf.Reset()
	if err := WriteExplain(&buf, w.cfg); err != nil {
		return nil, fmt.Errorf("render explain: %w", err)
	}
	if err := writeFileAtomic(paths.ExplainMD, buf.Bytes()); err != nil {
		return nil, err
	}

	w.logger.WithFields(map[string]interface{}{
		"run_id":  run.RunID,
		"dir":     w.dir,
		"results": len(run.Ranked),
	}).Info("Reports written")

	return paths, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
