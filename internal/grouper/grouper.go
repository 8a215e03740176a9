// Package grouper collects tagged journal entries into per-topic mindboxes.
package grouper

import (
	"iter"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/starford/mindbox/internal/models"
)

// FallbackSlug is used when a topic normalizes to nothing.
const FallbackSlug = "topic"

var disallowedRe = regexp.MustCompile(`[^a-z0-9_-]+`)

// Slugify turns a raw topic into a filesystem-safe identifier.
func Slugify(topic string) string {
	slug := strings.ToLower(strings.TrimSpace(topic))
	slug = disallowedRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return FallbackSlug
	}
	return slug
}

// Group buckets tagged entries by slug, keeping the order in which they were
// parsed. Untagged entries are skipped. When several raw spellings collapse
// to one slug, the first spelling seen is kept for display.
func Group(entries iter.Seq[models.Entry]) map[string]*models.Mindbox {
	out := make(map[string]*models.Mindbox)
	for e := range entries {
		if !e.HasTopic {
			continue
		}
		slug := Slugify(e.Topic)
		mb, ok := out[slug]
		if !ok {
			mb = &models.Mindbox{Slug: slug, Topic: e.Topic}
			out[slug] = mb
		}
		mb.Entries = append(mb.Entries, e)
	}
	return out
}

// Slugs returns the keys of groups in lexicographic order.
func Slugs(groups map[string]*models.Mindbox) []string {
	return slices.Sorted(maps.Keys(groups))
}
