// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the printable report card.
const SheetName = "Report Card"

// XLSX layout: title, identity, blank, heading, table, blank, CGPA.
const (
	titleRow    = 1
	nameRow     = 2
	regNoRow    = 3
	headingRow  = 5
	tableHeader = 6
)

// WriteXLSX writes the printable report card for v as an XLSX workbook.
// Credits that parse as numbers are stored as numbers so the sheet can be
// recalculated; registration numbers stay text.
func WriteXLSX(w io.Writer, v View) error {
	if !v.ShowTable() {
		return fmt.Errorf("no records to export")
	}

	xlsx := excelize.NewFile()
	defer xlsx.Close()

	if err := xlsx.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := xlsx.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	textStyle, err := xlsx.NewStyle(&excelize.Style{NumFmt: 49})
	if err != nil {
		return fmt.Errorf("creating text style: %w", err)
	}

	set := func(col, row int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		xlsx.SetCellValue(SheetName, cell, value)
	}

	set(1, titleRow, v.Title)
	set(1, nameRow, "Name")
	set(2, nameRow, v.StudentName)
	set(1, regNoRow, "Registration Number")
	set(2, regNoRow, v.RegistrationNumber)
	set(1, headingRow, DetailsTitle)

	for i, h := range Columns {
		set(i+1, tableHeader, h)
	}
	first, _ := excelize.CoordinatesToCellName(1, tableHeader)
	last, _ := excelize.CoordinatesToCellName(len(Columns), tableHeader)
	if err := xlsx.SetCellStyle(SheetName, first, last, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := xlsx.SetCellStyle(SheetName, "A1", "A1", bold); err != nil {
		return fmt.Errorf("styling title: %w", err)
	}

	for i, r := range v.Rows {
		row := tableHeader + 1 + i
		set(1, row, r.SerialNumber)
		set(2, row, r.RegistrationNumber)
		set(3, row, r.StudentName)
		set(4, row, r.SubjectCode)
		set(5, row, r.SubjectName)
		set(6, row, r.SubjectType)
		if c, err := strconv.ParseFloat(strings.TrimSpace(r.Credits), 64); err == nil {
			set(7, row, c)
		} else {
			set(7, row, r.Credits)
		}
		set(8, row, r.Grade)

		reg, _ := excelize.CoordinatesToCellName(2, row)
		if err := xlsx.SetCellStyle(SheetName, reg, reg, textStyle); err != nil {
			return fmt.Errorf("styling registration number: %w", err)
		}
	}

	cgpaRow := tableHeader + len(v.Rows) + 2
	set(1, cgpaRow, "CGPA")
	cgpa, _ := strconv.ParseFloat(v.FormattedCGPA(), 64)
	set(2, cgpaRow, cgpa)

	return xlsx.Write(w)
}
