// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// WriteText renders v for a terminal in page order: title, error,
// identity, banner, then the results table and CGPA line.
func WriteText(w io.Writer, v View) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n", v.Title, strings.Repeat("=", utf8.RuneCountInString(v.Title)))

	if v.Error != "" {
		fmt.Fprintf(&b, "\n%s\n", v.Error)
	}
	if v.ShowIdentity() {
		fmt.Fprintf(&b, "\nName: %s\nRegistration Number: %s\n", v.StudentName, v.RegistrationNumber)
	}
	if v.Banner != "" {
		fmt.Fprintf(&b, "\n%s\n", v.Banner)
	}

	if v.ShowTable() {
		fmt.Fprintf(&b, "\n%s\n\n", DetailsTitle)
		writeTable(&b, v.Rows)
		fmt.Fprintf(&b, "\nCGPA: %s\n", v.FormattedCGPA())
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTable(b *strings.Builder, rows []Row) {
	widths := make([]int, len(Columns))
	for i, c := range Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, r := range rows {
		for i, cell := range r.Cells() {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	total := 0
	for _, w := range widths {
		total += w + 2
	}

	writeCells(b, Columns, widths)
	b.WriteString(strings.Repeat("-", total-2) + "\n")
	for _, r := range rows {
		writeCells(b, r.Cells(), widths)
	}
}

func writeCells(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i == len(cells)-1 {
			b.WriteString(cell)
			break
		}
		pad := widths[i] - utf8.RuneCountInString(cell)
		b.WriteString(cell + strings.Repeat(" ", pad+2))
	}
	b.WriteString("\n")
}
