package models

import "time"

// Setting stores a single kiosk setting as a key-value pair with a
// JSON-encoded value.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrintSettings selects the printer and paper used when the kiosk prints a
// picture. An empty PrinterName means the system default printer.
type PrintSettings struct {
	PrinterName string `json:"printer_name"`
	PaperSize   string `json:"paper_size" validate:"papersize"`
}

// PaperSize is one selectable paper layout.
type PaperSize struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DefaultPaperSize follows whatever the printer driver is configured with.
const DefaultPaperSize = "auto"

// PaperSizes lists the paper layouts the kiosk supports.
var PaperSizes = []PaperSize{
	{Label: "Printer default", Value: DefaultPaperSize},
	{Label: "4x6 photo paper", Value: "4in 6in"},
	{Label: "A4 (portrait)", Value: "A4 portrait"},
	{Label: "80mm receipt roll", Value: "80mm auto"},
}

// IsPaperSize reports whether v is one of PaperSizes.
func IsPaperSize(v string) bool {
	for _, p := range PaperSizes {
		if p.Value == v {
			return true
		}
	}
	return false
}
