package query

import (
	"github.com/twistql/twistql/scan"
)

// Extract flattens the selected view of the matched images into records,
// preserving image order and per-image entry order. Every record carries
// the digest of the image it came from so multi-image results stay
// traceable. The input is never mutated.
func Extract(images []*scan.Image, view View) []*scan.Record {
	var records []*scan.Record
	for _, img := range images {
		switch view.kind {
		case viewList:
			for _, c := range img.PackageCategories() {
				rec := scan.NewRecord()
				rec.Set("digest", img.Digest())
				rec.Set("category", string(c))
				rec.Set("count", len(img.Packages(c)))
				records = append(records, rec)
			}
		case viewCves:
			for _, entry := range img.Vulnerabilities() {
				records = append(records, tagged(img.Digest(), entry))
			}
		default:
			for _, entry := range img.Packages(view.category) {
				records = append(records, tagged(img.Digest(), entry))
			}
		}
	}
	return records
}

func tagged(digest string, entry *scan.Record) *scan.Record {
	rec := scan.NewRecord()
	rec.Set("digest", digest)
	for _, name := range entry.Fields() {
		v, _ := entry.Get(name)
		rec.Set(name, v)
	}
	return rec
}
