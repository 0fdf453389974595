// Package models defines the normalized record types shared across the
// crawl pipeline.
package models

import "strings"

// RequiredFields is the ordered set of fields every published record
// must carry. The order is also the column order of CSV snapshots.
var RequiredFields = []string{"title", "description", "url", "publishtime", "provider"}

// NewsRecord is the normalized unit of output. All fields are required;
// a NewsRecord is never mutated after creation.
type NewsRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishTime string `json:"publishtime"`
	Provider    string `json:"provider"`
}

// RawRecord is the pre-validation shape produced by the extraction step.
// Fields may be missing or empty; ExtractionError marks records the
// extraction engine itself flagged as failed.
type RawRecord struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	URL             string `json:"url"`
	PublishTime     string `json:"publishtime"`
	Provider        string `json:"provider"`
	ExtractionError bool   `json:"error,omitempty"`
}

// MissingFields returns the names of required fields that are empty
// after trimming, in RequiredFields order.
func (r RawRecord) MissingFields() []string {
	var missing []string
	for _, field := range RequiredFields {
		if strings.TrimSpace(r.field(field)) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Normalize converts a raw record into a NewsRecord, trimming
// surrounding whitespace from every field. Callers must validate the
// raw record first.
func (r RawRecord) Normalize() NewsRecord {
	return NewsRecord{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		URL:         strings.TrimSpace(r.URL),
		PublishTime: strings.TrimSpace(r.PublishTime),
		Provider:    strings.TrimSpace(r.Provider),
	}
}

func (r RawRecord) field(name string) string {
	switch name {
	case "title":
		return r.Title
	case "description":
		return r.Description
	case "url":
		return r.URL
	case "publishtime":
		return r.PublishTime
	case "provider":
		return r.Provider
	default:
		return ""
	}
}
