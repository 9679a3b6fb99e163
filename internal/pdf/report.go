package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tasktracker/internal/models"
)

// Generator renders team task reports. Interface so services can be tested
// without gofpdf.
type Generator interface {
	TeamReport(data TeamReportData) ([]byte, error)
}

type TeamReportData struct {
	TeamName    string
	GeneratedAt time.Time
	Tasks       []models.TaskView
}

// ReportGenerator is the gofpdf implementation.
type ReportGenerator struct{}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

func (g *ReportGenerator) TeamReport(data TeamReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Task report - %s", data.TeamName), false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Team Task Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	sub := fmt.Sprintf("%s - generated %s", data.TeamName, data.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Summary")
	var open, inProgress, completed int
	for _, t := range data.Tasks {
		switch t.Status {
		case models.StatusOpen:
			open++
		case models.StatusInProgress:
			inProgress++
		case models.StatusCompleted:
			completed++
		}
	}
	g.kvLine(pdf, "Total tasks", fmt.Sprintf("%d", len(data.Tasks)))
	g.kvLine(pdf, "Open", fmt.Sprintf("%d", open))
	g.kvLine(pdf, "In progress", fmt.Sprintf("%d", inProgress))
	g.kvLine(pdf, "Completed", fmt.Sprintf("%d", completed))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Tasks")
	pdf.SetFont("Helvetica", "", 11)
	if len(data.Tasks) == 0 {
		pdf.MultiCell(0, 6, "No tasks in this team.", "", "L", false)
	}
	for _, t := range data.Tasks {
		assignee := "unassigned"
		if t.Assignee != nil {
			assignee = fmt.Sprintf("%s %s", t.Assignee.FirstName, t.Assignee.LastName)
		}
		due := "n/a"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		line := fmt.Sprintf("#%d  %s  [%s/%s]  assignee: %s  due: %s",
			t.ID, t.Title, t.Status, t.Priority, assignee, due)
		pdf.MultiCell(0, 6, line, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	x, y := pdf.GetXY()
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	pdf.Line(left, y, pageW-right, y)
	pdf.SetXY(x, y+1)
}
