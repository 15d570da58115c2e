package roadmap

import (
	"fmt"
	"io"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jung-kurt/gofpdf"

	"github.com/yungbote/learnsphere-backend/internal/domain/learning"
	"github.com/yungbote/learnsphere-backend/internal/learning/progress"
)

// ToPDF writes rm as an A4 document with one checkbox per lesson.
func ToPDF(rm learning.Roadmap, p learning.RoadmapProgress, w io.Writer) error {
	done := mapset.NewThreadUnsafeSet(p.CompletedLessons...)
	snap := progress.Snapshot(rm, p)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(oneLine(rm.Title), true)
	pdf.SetAuthor("LearnSphere", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(oneLine(rm.Title)), "", "L", false)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.Cell(0, 6, fmt.Sprintf("%d%% complete (%d of %d lessons)", snap.PercentComplete, snap.CompletedLessons, snap.TotalLessons))
	pdf.Ln(10)
	pdf.SetTextColor(0, 0, 0)

	for i, ph := range rm.Phases {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 8, tr(fmt.Sprintf("Phase %d: %s", i+1, oneLine(ph.Title))), "", "L", false)
		if d := strings.TrimSpace(ph.Description); d != "" {
			pdf.SetFont("Helvetica", "I", 11)
			pdf.MultiCell(0, 6, tr(d), "", "L", false)
		}
		pdf.Ln(2)
		for j, m := range ph.Modules {
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 7, tr(fmt.Sprintf("Module %d.%d: %s", i+1, j+1, oneLine(m.Title))), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			for _, l := range m.Lessons {
				box := "[ ]"
				if done.Contains(progress.LessonKey(m.ID, l.ID)) {
					box = "[x]"
				}
				line := fmt.Sprintf("%s %s", box, oneLine(l.Title))
				if l.DurationMinutes > 0 {
					line += fmt.Sprintf(" (%d min)", l.DurationMinutes)
				}
				pdf.SetX(pdf.GetX() + 6)
				pdf.MultiCell(0, 6, tr(line), "", "L", false)
			}
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render roadmap pdf: %w", err)
	}
	return nil
}
