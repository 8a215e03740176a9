// Package models defines the domain types for mindbox.
package models

// Entry represents one dated journal record.
type Entry struct {
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	Title      string   `json:"title,omitempty"`
	Topic      string   `json:"topic,omitempty"`
	HasTopic   bool     `json:"has_topic"`
	LineNumber int      `json:"line_number"`
	Body       []string `json:"body,omitempty"`
}

// Mindbox is the ordered group of entries that share one topic slug.
type Mindbox struct {
	Slug    string  `json:"slug"`
	Topic   string  `json:"topic"` // display spelling, first seen
	Entries []Entry `json:"entries"`
}

// FileMetadata describes a generated file found in the output directory.
type FileMetadata struct {
	Name     string `json:"name"`
	Stem     string `json:"stem"`
	Checksum string `json:"checksum,omitempty"`
}
