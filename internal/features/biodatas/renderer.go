package biodatas

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"biodaat-backend/internal/features/templates"

	"github.com/google/uuid"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// Renderer produces the artifact bytes for a biodata. The real PDF engine
// is an external collaborator; HTMLRenderer is the documented fallback
// that emits a printable HTML page instead.
type Renderer interface {
	Render(tmpl *templates.Template, fields map[string]string) ([]byte, Format, error)
}

// HTMLRenderer renders the biodata as a self-contained HTML document,
// either from the template's HTML file (placeholder substitution) or from
// the built-in default layout.
type HTMLRenderer struct {
	templatesRoot string
}

func NewHTMLRenderer(templatesRoot string) *HTMLRenderer {
	return &HTMLRenderer{templatesRoot: templatesRoot}
}

func (r *HTMLRenderer) Render(
	tmpl *templates.Template,
	fields map[string]string,
) ([]byte, Format, error) {
	if tmpl.TemplateFile != "" {
		raw, err := os.ReadFile(filepath.Join(r.templatesRoot, filepath.Base(tmpl.TemplateFile)))
		if err == nil {
			return r.substitute(string(raw), tmpl, fields), FormatHTML, nil
		}
	}

	rendered, err := r.renderDefault(tmpl, fields)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render biodata: %w", err)
	}

	return rendered, FormatHTML, nil
}

// substitute replaces {{key}} placeholders in a template file with the
// escaped form values, the way the original template files expect.
func (r *HTMLRenderer) substitute(
	raw string,
	tmpl *templates.Template,
	fields map[string]string,
) []byte {
	for key, value := range fields {
		raw = strings.ReplaceAll(raw, "{{"+key+"}}", html.EscapeString(value))
	}

	raw = strings.ReplaceAll(raw, "{{template_name}}", html.EscapeString(tmpl.Name))
	raw = strings.ReplaceAll(raw, "{{generated_date}}", time.Now().Format("02 Jan 2006"))

	return []byte(raw)
}

func (r *HTMLRenderer) renderDefault(
	tmpl *templates.Template,
	fields map[string]string,
) ([]byte, error) {
	sections := []renderSection{
		{
			Title: "Personal Details",
			Rows: fieldRows(fields,
				"full_name", "Full Name",
				"date_of_birth", "Date of Birth",
				"birth_time", "Birth Time",
				"birth_place", "Birth Place",
				"height", "Height",
				"complexion", "Complexion",
				"blood_group", "Blood Group",
				"marital_status", "Marital Status",
				"about_me", "About Me",
			),
		},
		{
			Title: "Religious Background",
			Rows: fieldRows(fields,
				"religion", "Religion",
				"caste", "Caste",
				"gotra", "Gotra",
			),
		},
		{
			Title: "Education & Career",
			Rows: fieldRows(fields,
				"education", "Education",
				"occupation", "Occupation",
				"company", "Company",
				"income", "Annual Income",
				"hobbies", "Hobbies",
			),
		},
		{
			Title: "Family Details",
			Rows: fieldRows(fields,
				"family_type", "Family Type",
				"father_name", "Father's Name",
				"father_occupation", "Father's Occupation",
				"mother_name", "Mother's Name",
				"mother_occupation", "Mother's Occupation",
				"siblings", "Siblings",
			),
		},
		{
			Title: "Contact Information",
			Rows: fieldRows(fields,
				"address", "Address",
				"city", "City",
				"state", "State",
				"phone", "Contact Number",
				"email", "Email",
			),
		},
	}

	name := fields["full_name"]
	if name == "" {
		name = "Name Not Provided"
	}

	var buf bytes.Buffer
	err := defaultBiodataTemplate.Execute(&buf, renderData{
		Name:          name,
		Sections:      sections,
		GeneratedDate: time.Now().Format("02 Jan 2006"),
	})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

type renderData struct {
	Name          string
	Sections      []renderSection
	GeneratedDate string
}

type renderSection struct {
	Title string
	Rows  []renderRow
}

type renderRow struct {
	Label string
	Value string
}

func fieldRows(fields map[string]string, pairs ...string) []renderRow {
	rows := make([]renderRow, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rows = append(rows, renderRow{Label: pairs[i+1], Value: fields[pairs[i]]})
	}
	return rows
}

var defaultBiodataTemplate = template.Must(template.New("biodata").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Biodata - {{.Name}}</title>
<style>
@page { margin: 20mm; size: A4; }
body { font-family: 'Noto Sans', 'Arial', sans-serif; font-size: 12pt; line-height: 1.6; color: #333; }
.container { max-width: 700px; margin: 0 auto; padding: 20px; }
.header { text-align: center; border-bottom: 3px double #8B4513; padding-bottom: 20px; margin-bottom: 30px; }
.header h1 { color: #8B4513; font-size: 28pt; margin: 0; font-weight: normal; }
.header .subtitle { color: #666; font-size: 14pt; margin-top: 5px; }
.om-symbol { font-size: 36pt; color: #FF6600; margin-bottom: 10px; }
.section { margin-bottom: 25px; }
.section-title { background: linear-gradient(90deg, #8B4513, transparent); color: white; padding: 8px 15px; font-size: 14pt; margin-bottom: 15px; border-radius: 3px; }
.field-row { display: flex; margin-bottom: 8px; border-bottom: 1px dotted #ddd; padding-bottom: 5px; }
.field-label { width: 40%; font-weight: bold; color: #555; }
.field-value { width: 60%; color: #333; }
.footer { text-align: center; margin-top: 40px; padding-top: 20px; border-top: 1px solid #ddd; font-size: 10pt; color: #888; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<div class="om-symbol">&#x950;</div>
<h1>|| &#x936;&#x94D;&#x930;&#x940; &#x917;&#x923;&#x947;&#x936;&#x93E;&#x92F; &#x928;&#x92E;&#x903; ||</h1>
<div class="subtitle">BIODATA</div>
</div>
{{range .Sections}}<div class="section">
<div class="section-title">{{.Title}}</div>
{{range .Rows}}<div class="field-row">
<div class="field-label">{{.Label}}</div>
<div class="field-value">{{.Value}}</div>
</div>
{{end}}</div>
{{end}}<div class="footer">Generated on {{.GeneratedDate}} | Biodaat.com</div>
</div>
</body>
</html>
`))

// GenerateFilename builds the unique artifact name: template slug, owning
// user (0 for guests), timestamp and a random suffix. Uniqueness is what
// lets concurrent generations share a directory without locking.
func GenerateFilename(templateSlug string, userID uuid.UUID) string {
	owner := "0"
	if userID != uuid.Nil {
		owner = strings.ReplaceAll(userID.String(), "-", "")[:8]
	}

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		panic("failed to generate filename suffix: " + err.Error())
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("biodata_%s_%s_%s_%s.pdf", templateSlug, owner, timestamp, hex.EncodeToString(suffix))
}
