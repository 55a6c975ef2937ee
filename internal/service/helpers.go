package service

import (
	"io"

	"github.com/alexanderramin/studylog/internal/fileutil"
	"github.com/alexanderramin/studylog/internal/report"
)

// writeReport renders r to path through a temp file so a failed render
// leaves nothing behind.
func writeReport(path string, renderer report.Renderer, r *report.Report) error {
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		return renderer.Render(w, r)
	})
}
