// Package types provides type definitions for the records produced by the automation pipelines.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// ProfileRecord represents one row of extracted public profile fields.
type ProfileRecord struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	ProfileURL string `json:"profile_url"`
}

// CSVHeader returns the column names of the profile output table, in row order.
func CSVHeader() []string {
	return []string{"name", "title", "company", "location", "profile_url"}
}

// Row returns the record's fields in CSVHeader order.
func (p ProfileRecord) Row() []string {
	return []string{p.Name, p.Title, p.Company, p.Location, p.ProfileURL}
}

// MissingFields returns the names of the text fields that are blank.
// ProfileURL is not checked since it is the input, not an extracted field.
func (p ProfileRecord) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(p.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(p.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(p.Location) == "" {
		missing = append(missing, "location")
	}
	return missing
}
