// Package query resolves search specs against a scan catalog and projects
// the matched images into filtered, sorted, field-selected result sets.
package query

import (
	"time"

	"github.com/twistql/twistql/scan"
)

// Engine binds the query operations to one catalog. The catalog is
// read-only, so one engine can serve any number of sequential queries.
type Engine struct {
	catalog *scan.Catalog
}

func NewEngine(c *scan.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Query matches spec against the catalog, extracts the selected view and
// applies field selection and sorting. An empty result is not an error;
// an unknown selector, projection field or sort field is.
func (e *Engine) Query(spec, selector string, fields []string, sortBy string) ([]*scan.Record, error) {
	view, err := ParseView(selector)
	if err != nil {
		return nil, err
	}
	records := Extract(Match(e.catalog, spec), view)
	return Project(records, fields, sortBy)
}

// ImageSummary identifies one image for discovery listings.
type ImageSummary struct {
	Digest   string
	Tags     []string
	Hostname string
	ScanTime time.Time
}

// ListImages returns a summary of every image whose digest or tags
// contain spec as a substring, in catalog order.
func (e *Engine) ListImages(spec string) []ImageSummary {
	var summaries []ImageSummary
	for _, img := range MatchSubstring(e.catalog, spec) {
		summaries = append(summaries, ImageSummary{
			Digest:   img.Digest(),
			Tags:     img.Tags(),
			Hostname: img.Hostname(),
			ScanTime: img.ScanTime(),
		})
	}
	return summaries
}
