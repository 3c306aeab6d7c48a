// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders the report-card page from a lookup state: as
// plain text for the terminal, as HTML for the web surface, and as a
// printable XLSX workbook.
package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pdiddy/report-card/internal/grades"
	"github.com/pdiddy/report-card/internal/lookup"
)

const (
	Title        = "Student Report Card"
	DetailsTitle = "Student Details"
)

// Columns are the results table headings in display order.
var Columns = []string{
	"Sl No", "Reg No", "Name", "Subject Code", "Subject Name", "Type", "Credits", "Grade",
}

// Row is one subject as displayed.
type Row struct {
	SerialNumber       int
	RegistrationNumber string
	StudentName        string
	SubjectCode        string
	SubjectName        string
	SubjectType        string
	Credits            string
	Grade              string
}

// Cells returns the row in Columns order.
func (r Row) Cells() []string {
	return []string{
		strconv.Itoa(r.SerialNumber), r.RegistrationNumber, r.StudentName,
		r.SubjectCode, r.SubjectName, r.SubjectType, r.Credits, r.Grade,
	}
}

// View is the page content derived from a state at a point in time.
type View struct {
	Title string
	Query string
	Error string

	StudentName        string
	RegistrationNumber string

	// Banner is the congratulations text, empty when hidden.
	Banner          string
	BannerRemaining time.Duration

	Rows    []Row
	CGPA    float64
	Summary grades.Summary
}

// NewView captures what the page shows for s at now.
func NewView(s lookup.State, now time.Time) View {
	v := View{
		Title:              Title,
		Query:              s.Query,
		Error:              s.Error,
		StudentName:        s.StudentName,
		RegistrationNumber: s.RegistrationNumber,
		CGPA:               s.CGPA,
		Summary:            s.Summary,
	}
	if s.BannerVisible(now) {
		v.Banner = BannerMessage(s.StudentName, s.CGPA)
		v.BannerRemaining = s.BannerRemaining(now)
	}
	for _, r := range s.Records {
		v.Rows = append(v.Rows, Row{
			SerialNumber:       r.SerialNumber,
			RegistrationNumber: r.RegistrationNumber,
			StudentName:        r.StudentName,
			SubjectCode:        r.SubjectCode,
			SubjectName:        r.SubjectName,
			SubjectType:        r.SubjectType,
			Credits:            r.Credits.String(),
			Grade:              r.Grade,
		})
	}
	return v
}

// ShowIdentity reports whether the student identity block is shown.
func (v View) ShowIdentity() bool { return v.StudentName != "" }

// ShowTable reports whether the print action, table and CGPA line are shown.
func (v View) ShowTable() bool { return len(v.Rows) > 0 }

// FormattedCGPA returns the CGPA with two decimals.
func (v View) FormattedCGPA() string { return FormatCGPA(v.CGPA) }

// FormatCGPA formats a CGPA with two decimals.
func FormatCGPA(cgpa float64) string {
	return strconv.FormatFloat(cgpa, 'f', 2, 64)
}

// BannerMessage is the congratulations text for name and cgpa.
func BannerMessage(name string, cgpa float64) string {
	return fmt.Sprintf("🎉 Congratulations 🎉%s for achieving a CGPA of %s!", name, FormatCGPA(cgpa))
}
