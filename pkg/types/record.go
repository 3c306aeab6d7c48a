// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the report-card
// packages: the subject records returned by the record service and the
// configuration of each surface.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SubjectRecord is one row of a student's academic record as returned by
// the record service. All records of one lookup share RegistrationNumber
// and StudentName.
type SubjectRecord struct {
	// SerialNumber orders the rows within one lookup result.
	SerialNumber int `json:"Sl No" yaml:"serial_number"`

	RegistrationNumber string `json:"Reg_No" yaml:"registration_number"`
	StudentName        string `json:"Name" yaml:"student_name"`

	SubjectCode string `json:"Subject_Code" yaml:"subject_code"`
	SubjectName string `json:"Subject_Name" yaml:"subject_name"`

	// SubjectType is the course category as labelled by the service
	// (e.g. "Theory", "Lab").
	SubjectType string `json:"Type" yaml:"subject_type"`

	// Credits is the course weight in the CGPA.
	Credits Credits `json:"Credits" yaml:"credits"`

	// Grade is a letter from {O, E, A, B, C, D}; any other value earns
	// zero grade points.
	Grade string `json:"Grade" yaml:"grade"`
}

// Credits is a course weight as sent by the record service. The service
// emits either a JSON number or a numeric string, so the raw text is kept
// and parsed on demand.
type Credits string

// Float returns the parsed credit value. Empty or unparseable credits,
// and non-finite values, count as zero.
func (c Credits) Float() float64 {
	s := strings.TrimSpace(string(c))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// String returns the credits as displayed in the results table.
func (c Credits) String() string { return string(c) }

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (c *Credits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Credits(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("credits must be a number or string: %w", err)
	}
	*c = Credits(n.String())
	return nil
}

// MarshalJSON writes numeric credits as a JSON number and anything else
// as a string, so a decoded record re-encodes the way it arrived.
func (c Credits) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(c))
	if _, err := strconv.ParseFloat(s, 64); err == nil && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(string(c))
}
