package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"gopkg.in/yaml.v3"

	"github.com/balkashynov/todo/internal/models"
)

// Format is an export rendition of the task list
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatPDF  Format = "pdf"
	FormatWord Format = "word"
)

// Formats lists every supported format
var Formats = []Format{FormatJSON, FormatYAML, FormatPDF, FormatWord}

// ParseFormat accepts a format name or a common file extension
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "pdf":
		return FormatPDF, nil
	case "word", "doc":
		return FormatWord, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use json, yaml, pdf or word)", s)
	}
}

// Extension is the file extension for the format, without the dot
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatPDF:
		return "pdf"
	case FormatWord:
		return "doc"
	default:
		return "json"
	}
}

// ContentType is the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatPDF:
		return "application/pdf"
	case FormatWord:
		return "application/msword"
	default:
		return "application/json"
	}
}

// Filename is the default download name, e.g. tasks.json
func (f Format) Filename() string {
	return "tasks." + f.Extension()
}

// Write renders tasks to w in the given format
func Write(w io.Writer, format Format, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, tasks)
	case FormatYAML:
		return writeYAML(w, tasks)
	case FormatPDF:
		return writePDF(w, tasks)
	case FormatWord:
		return writeWord(w, tasks)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeJSON(w io.Writer, tasks []models.Task) error {
	b, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

func writeYAML(w io.Writer, tasks []models.Task) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	return enc.Close()
}

// Line is the plain-text rendition of one task used by the PDF export
func Line(t models.Task) string {
	var b strings.Builder
	if t.Completed {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	b.WriteString(t.Text)

	var meta []string
	if t.Priority != models.PriorityNone {
		meta = append(meta, "priority: "+string(t.Priority))
	}
	if t.DueDate != "" {
		meta = append(meta, "due: "+t.DueDate)
	}
	if t.Category != "" {
		meta = append(meta, "category: "+t.Category)
	}
	if len(meta) > 0 {
		b.WriteString(" (" + strings.Join(meta, ", ") + ")")
	}
	return b.String()
}

// SubtaskLine is the plain-text rendition of one subtask
func SubtaskLine(s models.Subtask) string {
	if s.Completed {
		return "[x] " + s.Text
	}
	return "[ ] " + s.Text
}

func writePDF(w io.Writer, tasks []models.Task) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; map UTF-8 text onto it.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("To-Do List", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "To-Do List")
	pdf.Ln(14)

	if len(tasks) == 0 {
		pdf.SetFont("Helvetica", "I", 12)
		pdf.Cell(0, 8, "No tasks.")
		pdf.Ln(8)
	}

	for i, t := range tasks {
		pdf.SetFont("Helvetica", "", 12)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, Line(t))), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		for _, s := range t.Subtasks {
			pdf.SetX(pdf.GetX() + 10)
			pdf.MultiCell(0, 6, tr(SubtaskLine(s)), "", "L", false)
		}
		pdf.Ln(2)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

var wordTemplate = template.Must(template.New("word").Parse(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word">
<head><meta charset="utf-8"><title>To-Do List</title></head>
<body>
<h1>To-Do List</h1>
{{- if not .}}
<p><em>No tasks.</em></p>
{{- else}}
<ol>
{{- range .}}
<li>{{if .Completed}}&#9745;{{else}}&#9744;{{end}} {{.Text}}
{{- if .Priority}} <b>Priority:</b> {{.Priority}}{{end}}
{{- if .DueDate}} <b>Due:</b> {{.DueDate}}{{end}}
{{- if .Category}} <b>Category:</b> {{.Category}}{{end}}
{{- if .Completed}} <i>(completed)</i>{{end}}
{{- if .Subtasks}}
<ul>
{{- range .Subtasks}}
<li>{{if .Completed}}&#9745;{{else}}&#9744;{{end}} {{.Text}}</li>
{{- end}}
</ul>
{{- end}}
</li>
{{- end}}
</ol>
{{- end}}
</body>
</html>
`))

// writeWord emits an HTML document Word opens as a .doc file
func writeWord(w io.Writer, tasks []models.Task) error {
	if err := wordTemplate.Execute(w, tasks); err != nil {
		return fmt.Errorf("failed to render word document: %w", err)
	}
	return nil
}
