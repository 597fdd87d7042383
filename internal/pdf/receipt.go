package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator is an interface so handlers can be tested with a fake.
type Generator interface {
	GenerateReceipt(data ReceiptData) (string, error)
}

// ReceiptGenerator renders grievance acknowledgement receipts.
type ReceiptGenerator struct {
	RootDir    string // storage root, e.g. "./files"
	OfficeName string
}

type ReceiptData struct {
	TrackingCode string
	Title        string
	Category     string
	SubCategory  string
	CitizenName  string
	Priority     string
	DueDate      *time.Time
	CreatedAt    time.Time
	Filename     string // file name without path; generated when empty
}

func NewReceiptGenerator(rootDir, officeName string) *ReceiptGenerator {
	return &ReceiptGenerator{
		RootDir:    filepath.Clean(rootDir),
		OfficeName: officeName,
	}
}

func (g *ReceiptGenerator) GenerateReceipt(data ReceiptData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("receipt_%s.pdf", data.TrackingCode)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Grievance receipt %s", data.TrackingCode), false)
	pdf.SetAuthor(g.OfficeName, false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "GRIEVANCE ACKNOWLEDGEMENT", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	sub := fmt.Sprintf("Ref %s  •  registered %s",
		data.TrackingCode,
		data.CreatedAt.Format("02.01.2006 15:04"),
	)
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	rows := [][2]string{
		{"Submitted by", data.CitizenName},
		{"Subject", data.Title},
		{"Category", data.Category},
	}
	if data.SubCategory != "" {
		rows = append(rows, [2]string{"Sub-category", data.SubCategory})
	}
	rows = append(rows, [2]string{"Priority", data.Priority})
	if data.DueDate != nil {
		rows = append(rows, [2]string{"Target resolution", data.DueDate.Format("02.01.2006")})
	}

	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 8, row[1], "", "L", false)
	}

	g.hr(pdf)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6,
		fmt.Sprintf("Track the status of your grievance anytime using reference code %s. %s",
			data.TrackingCode, g.OfficeName),
		"", "L", false)

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", fmt.Errorf("write receipt pdf: %w", err)
	}
	return absPath, nil
}

func (g *ReceiptGenerator) ensureTarget(filename string) (string, error) {
	dir := filepath.Join(g.RootDir, "receipts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(filename)), nil
}

func (g *ReceiptGenerator) hr(pdf *gofpdf.Fpdf) {
	pdf.Ln(2)
	x, y := pdf.GetXY()
	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(x, y, 190, y)
	pdf.Ln(4)
}
