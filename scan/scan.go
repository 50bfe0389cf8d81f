// Package scan holds a validated, query-ready catalog of container image
// scan reports as returned by the console's /api/v1/images endpoint.
package scan

import (
	"encoding/json"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

// ErrMalformedData is returned when a scan payload is missing required
// fields or carries them with the wrong shape.
var ErrMalformedData = xerrors.New("malformed scan data")

// Category is one of the package ecosystems the console scans inside an
// image. The set is closed; payloads naming anything else are rejected.
type Category string

const (
	CategoryBinary  Category = "binary"
	CategoryGem     Category = "gem"
	CategoryJar     Category = "jar"
	CategoryNodejs  Category = "nodejs"
	CategoryPackage Category = "package"
	CategoryPython  Category = "python"
	CategoryWindows Category = "windows"
)

// Categories returns all known package categories.
func Categories() []Category {
	return []Category{
		CategoryBinary,
		CategoryGem,
		CategoryJar,
		CategoryNodejs,
		CategoryPackage,
		CategoryPython,
		CategoryWindows,
	}
}

// ParseCategory reports whether s names a known package category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if s == string(c) {
			return c, true
		}
	}
	return "", false
}

type payload struct {
	Images []imagePayload `json:"images"`
}

type imagePayload struct {
	Hostname string      `json:"hostname"`
	ScanTime string      `json:"scanTime"`
	Info     infoPayload `json:"info"`
}

type infoPayload struct {
	Image              identityPayload `json:"image"`
	CVEVulnerabilities []*Record       `json:"cveVulnerabilities"`
	Data               dataPayload     `json:"data"`
}

type identityPayload struct {
	ID       string   `json:"ID"`
	RepoTags []string `json:"RepoTags"`
}

type dataPayload struct {
	Packages []packageGroup `json:"packages"`
}

type packageGroup struct {
	PkgsType string    `json:"pkgsType"`
	Pkgs     []*Record `json:"pkgs"`
}

// Image is a single scanned image. Immutable once inside a Catalog.
type Image struct {
	digest        string
	tags          []string
	hostname      string
	scanTime      time.Time
	categoryOrder []Category
	packages      map[Category][]*Record
	vulns         []*Record
}

func (img *Image) Digest() string {
	return img.digest
}

func (img *Image) Tags() []string {
	tags := make([]string, len(img.tags))
	copy(tags, img.tags)
	return tags
}

func (img *Image) HasTag(tag string) bool {
	return slices.Contains(img.tags, tag)
}

func (img *Image) Hostname() string {
	return img.hostname
}

// ScanTime is when the console scanned the image. Zero if the payload
// carried no parseable timestamp.
func (img *Image) ScanTime() time.Time {
	return img.scanTime
}

// Packages returns the entries for one category in stored order.
func (img *Image) Packages(c Category) []*Record {
	return img.packages[c]
}

// PackageCategories returns the categories that have at least one entry,
// in payload order.
func (img *Image) PackageCategories() []Category {
	var categories []Category
	for _, c := range img.categoryOrder {
		if len(img.packages[c]) > 0 {
			categories = append(categories, c)
		}
	}
	return categories
}

// Vulnerabilities returns the image's CVE entries in stored order.
func (img *Image) Vulnerabilities() []*Record {
	return img.vulns
}

// Catalog is an immutable collection of scanned images, kept in payload
// order so repeated queries stay deterministic.
type Catalog struct {
	images   []*Image
	byDigest map[string]*Image
	byTag    map[string][]*Image
}

// NewCatalog builds a Catalog from a raw /api/v1/images JSON payload.
func NewCatalog(raw []byte) (*Catalog, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, xerrors.Errorf("unable to decode scan payload: %v: %w", err, ErrMalformedData)
	}
	return newCatalog(p)
}

func newCatalog(p payload) (*Catalog, error) {
	c := &Catalog{
		byDigest: map[string]*Image{},
		byTag:    map[string][]*Image{},
	}
	for i, ip := range p.Images {
		img, err := newImage(ip)
		if err != nil {
			return nil, xerrors.Errorf("image %d: %w", i, err)
		}
		c.images = append(c.images, img)
		c.byDigest[img.digest] = img
		for _, tag := range img.tags {
			c.byTag[tag] = append(c.byTag[tag], img)
		}
	}
	return c, nil
}

func newImage(ip imagePayload) (*Image, error) {
	if ip.Info.Image.ID == "" {
		return nil, xerrors.Errorf("missing image ID: %w", ErrMalformedData)
	}

	img := &Image{
		digest:   ip.Info.Image.ID,
		tags:     ip.Info.Image.RepoTags,
		hostname: ip.Hostname,
		packages: map[Category][]*Record{},
		vulns:    ip.Info.CVEVulnerabilities,
	}

	if ip.ScanTime != "" {
		// Console builds vary in their timestamp format, so parse leniently.
		if t, err := dateparse.ParseAny(ip.ScanTime); err == nil {
			img.scanTime = t
		}
	}

	for _, group := range ip.Info.Data.Packages {
		c, ok := ParseCategory(group.PkgsType)
		if !ok {
			return nil, xerrors.Errorf("unknown package type %q: %w", group.PkgsType, ErrMalformedData)
		}
		if _, seen := img.packages[c]; seen {
			return nil, xerrors.Errorf("duplicate package type %q: %w", group.PkgsType, ErrMalformedData)
		}
		img.categoryOrder = append(img.categoryOrder, c)
		img.packages[c] = group.Pkgs
	}
	return img, nil
}

// Images returns every image in payload order.
func (c *Catalog) Images() []*Image {
	images := make([]*Image, len(c.images))
	copy(images, c.images)
	return images
}

func (c *Catalog) ImageByDigest(digest string) (*Image, bool) {
	img, ok := c.byDigest[digest]
	return img, ok
}

// ImagesByTag returns every image carrying the tag, in payload order.
// Tags should be unique within one catalog, but the console owns that
// invariant; duplicates are returned rather than collapsed.
func (c *Catalog) ImagesByTag(tag string) []*Image {
	return c.byTag[tag]
}

func (c *Catalog) Len() int {
	return len(c.images)
}
