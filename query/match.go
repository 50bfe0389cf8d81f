package query

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/twistql/twistql/scan"
)

var digestRegexp = regexp.MustCompile(`^sha256:[0-9a-f]{64}$`)

// Match resolves a search spec against the catalog. A well-formed digest
// (sha256: plus 64 hex characters) is looked up exactly; everything else,
// malformed digests included, is treated as an exact tag lookup. An empty
// result is not an error. Images come back in catalog order.
func Match(c *scan.Catalog, spec string) []*scan.Image {
	if digestRegexp.MatchString(spec) {
		img, ok := c.ImageByDigest(spec)
		if !ok {
			return nil
		}
		return []*scan.Image{img}
	}
	return c.ImagesByTag(spec)
}

// MatchSubstring returns every image whose digest or any tag contains
// spec as a substring, in catalog order. The empty spec matches all.
// Used to let a user discover valid search specs.
func MatchSubstring(c *scan.Catalog, spec string) []*scan.Image {
	return lo.Filter(c.Images(), func(img *scan.Image, _ int) bool {
		if strings.Contains(img.Digest(), spec) {
			return true
		}
		return lo.SomeBy(img.Tags(), func(tag string) bool {
			return strings.Contains(tag, spec)
		})
	})
}
