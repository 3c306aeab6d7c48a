// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"html/template"
	"io"
)

// LookupPath is where the page form posts the registration number.
const LookupPath = "/lookup"

// RegNoField is the form field holding the registration number.
const RegNoField = "reg_no"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.View.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.error-message { color: #b00020; }
.congrats-message { background: #e6f4ea; padding: .75rem; margin: 1rem 0; }
.student-table { border-collapse: collapse; }
.student-table th, .student-table td { border: 1px solid #999; padding: .25rem .5rem; }
@media print { .search-form, .print-button { display: none; } }
</style>
</head>
<body>
<div class="student-details-container">
<h1 class="title">{{.View.Title}}</h1>
<form method="post" action="{{.Action}}" class="search-form">
<label>Enter Registration Number:
<input type="text" name="{{.Field}}" value="{{.View.Query}}" class="input-field">
</label>
<button type="submit" class="submit-button">Search</button>
</form>
{{- if .View.Error}}
<p class="error-message">{{.View.Error}}</p>
{{- end}}
{{- if .View.ShowIdentity}}
<div class="student-info">
<p><strong>Name:</strong> {{.View.StudentName}}</p>
<p><strong>Registration Number:</strong> {{.View.RegistrationNumber}}</p>
</div>
{{- end}}
{{- if .View.Banner}}
<div class="congrats-message" id="congrats" data-remaining-ms="{{.BannerMillis}}">{{.View.Banner}}</div>
<script>
setTimeout(function () { var b = document.getElementById("congrats"); if (b) { b.remove(); } }, {{.BannerMillis}});
</script>
{{- end}}
{{- if .View.ShowTable}}
<div>
<button class="print-button" type="button" onclick="window.print()">Print Report Card</button>
{{- if .XLSXPath}}
<a class="print-button" href="{{.XLSXPath}}">Download XLSX</a>
{{- end}}
<h2 class="details-title">` + DetailsTitle + `</h2>
<table class="student-table">
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .View.Rows}}
<tr>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
<p class="cgpa">CGPA: {{.View.FormattedCGPA}}</p>
</div>
{{- end}}
</div>
</body>
</html>
`))

type pageData struct {
	View         View
	Action       string
	Field        string
	Columns      []string
	BannerMillis int64
	XLSXPath     string
}

// HTMLOptions adjusts links rendered on the page.
type HTMLOptions struct {
	// XLSXPath, when set, adds a download link for the printable workbook.
	XLSXPath string
}

// WriteHTML renders v as the report-card web page. The print button hands
// off to the browser's native print dialog and a visible banner removes
// itself when its remaining time runs out.
func WriteHTML(w io.Writer, v View, opts HTMLOptions) error {
	return pageTemplate.Execute(w, pageData{
		View:         v,
		Action:       LookupPath,
		Field:        RegNoField,
		Columns:      Columns,
		BannerMillis: v.BannerRemaining.Milliseconds(),
		XLSXPath:     opts.XLSXPath,
	})
}
