// Package publish reconciles the output directory with the current set of
// mindboxes.
package publish

import (
	"log/slog"

	"github.com/starford/mindbox/internal/checksum"
	"github.com/starford/mindbox/internal/grouper"
	"github.com/starford/mindbox/internal/models"
	"github.com/starford/mindbox/internal/render"
	"github.com/starford/mindbox/internal/storage"
)

// Result lists the slugs touched by a Sync.
type Result struct {
	Written   []string
	Unchanged []string
	Removed   []string
}

// Total returns the number of mindbox files present after the sync.
func (r Result) Total() int {
	return len(r.Written) + len(r.Unchanged)
}

// Sync brings the output directory up to date:
//   - generated files whose slug is no longer present are deleted
//   - every group is rendered and written, in slug order
//
// A file whose content already matches the rendered document is left in
// place. The first filesystem error aborts the sync.
func Sync(store storage.Provider, groups map[string]*models.Mindbox, source string, logger *slog.Logger) (Result, error) {
	var res Result

	existing, err := store.List(render.Extension)
	if err != nil {
		return res, err
	}

	onDisk := make(map[string]string, len(existing))
	for _, m := range existing {
		onDisk[m.Stem] = m.Checksum
	}

	// Remove stale files.
	for _, m := range existing {
		if _, ok := groups[m.Stem]; ok {
			continue
		}
		if err := store.Delete(m.Name); err != nil {
			return res, err
		}
		logger.Debug("sync: removed stale", slog.String("file", m.Name))
		res.Removed = append(res.Removed, m.Stem)
	}

	for _, slug := range grouper.Slugs(groups) {
		data := render.Render(groups[slug], source)
		name := render.FileName(slug)

		if checksum.Matches(data, onDisk[slug]) {
			logger.Debug("sync: unchanged", slog.String("file", name))
			res.Unchanged = append(res.Unchanged, slug)
			continue
		}
		if err := store.Write(name, data); err != nil {
			return res, err
		}
		logger.Debug("sync: written", slog.String("file", name), slog.Int("entries", len(groups[slug].Entries)))
		res.Written = append(res.Written, slug)
	}

	return res, nil
}
