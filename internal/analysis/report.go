package analysis

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// OCRStatus describes the outcome of the OCR step.
type OCRStatus string

const (
	// OCROK means text was extracted.
	OCROK OCRStatus = "ok"
	// OCRNoText means the engine ran and found no text.
	OCRNoText OCRStatus = "no_text"
	// OCRError means the engine failed; the message is in OCRSection.Error.
	OCRError OCRStatus = "error"
	// OCRSkipped means no OCR service was configured.
	OCRSkipped OCRStatus = "skipped"
)

// Report is everything derived from one image.
type Report struct {
	File        string            `json:"file"`
	Size        int64             `json:"size"`
	MIME        string            `json:"mime"`
	Tags        map[string]string `json:"tags"`
	Location    *Location         `json:"location"`
	OCR         OCRSection        `json:"ocr"`
	SearchLinks []SearchLink      `json:"search_links"`
	ProcessedAt time.Time         `json:"processed_at"`
	Duration    time.Duration     `json:"duration"`
}

// Location is a resolved GPS fix. It is nil in the report when the image has
// no usable GPS tags.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	MapURL    string  `json:"map_url"`
	H3Cell    string  `json:"h3_cell,omitempty"`
}

// OCRSection holds the extracted text or the reason there is none.
type OCRSection struct {
	Status        OCRStatus `json:"status"`
	Text          string    `json:"text,omitempty"`
	Confidence    float32   `json:"confidence,omitempty"`
	LanguageCodes []string  `json:"language_codes,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// SortedTagNames returns the tag names in lexical order.
func (r *Report) SortedTagNames() []string {
	names := make([]string, 0, len(r.Tags))
	for name := range r.Tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteText renders the report for a terminal.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Image Analysis: %s ===\n", r.File)
	fmt.Fprintf(&b, "Type: %s, %d bytes\n", r.MIME, r.Size)

	b.WriteString("\n--- EXIF Metadata ---\n")
	if len(r.Tags) == 0 {
		b.WriteString("No EXIF metadata found in this image.\n")
	}
	for _, name := range r.SortedTagNames() {
		fmt.Fprintf(&b, "%s: %s\n", name, r.Tags[name])
	}

	b.WriteString("\n--- GPS Location ---\n")
	r.writeLocation(&b)

	b.WriteString("\n--- OCR (Text Extraction) ---\n")
	switch r.OCR.Status {
	case OCROK:
		if r.OCR.Confidence > 0 {
			fmt.Fprintf(&b, "Confidence: %.1f%%\n", r.OCR.Confidence*100)
		}
		if len(r.OCR.LanguageCodes) > 0 {
			fmt.Fprintf(&b, "Languages: %s\n", strings.Join(r.OCR.LanguageCodes, ", "))
		}
		b.WriteString(strings.TrimRight(r.OCR.Text, "\n"))
		b.WriteString("\n")
	case OCRNoText:
		b.WriteString("No text detected in the image.\n")
	case OCRError:
		fmt.Fprintf(&b, "OCR Error: %s\n", r.OCR.Error)
	default:
		b.WriteString("OCR skipped.\n")
	}

	b.WriteString("\n--- Reverse Image Search ---\n")
	for _, link := range r.SearchLinks {
		fmt.Fprintf(&b, "%s: %s\n", link.Name, link.URL)
	}

	b.WriteString("\nAnalysis complete.\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteLocation renders only the GPS section.
func (r *Report) WriteLocation(w io.Writer) error {
	var b strings.Builder
	r.writeLocation(&b)
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Report) writeLocation(b *strings.Builder) {
	if r.Location == nil {
		b.WriteString("No GPS data found in this image.\n")
		return
	}
	fmt.Fprintf(b, "GPS Coordinates Found: %s, %s\n", formatCoord(r.Location.Latitude), formatCoord(r.Location.Longitude))
	fmt.Fprintf(b, "View on Google Maps: %s\n", r.Location.MapURL)
	if r.Location.H3Cell != "" {
		fmt.Fprintf(b, "H3 cell: %s\n", r.Location.H3Cell)
	}
}
