package query

import (
	"golang.org/x/xerrors"

	"github.com/twistql/twistql/scan"
)

// ErrUnknownCategory is returned when a selector names a package category
// outside the closed set (and is not one of the cves/list pseudo-views).
var ErrUnknownCategory = xerrors.New("unknown package category")

// ErrUnknownField is returned when projection or sorting references a
// field absent from the record schema.
var ErrUnknownField = xerrors.New("unknown field")

type viewKind int

const (
	viewCategory viewKind = iota
	viewCves
	viewList
)

// View selects what Extract flattens out of the matched images: the
// entries of one package category, the aggregated vulnerability list, or
// the synthetic listing of categories present. Unknown selectors are
// rejected by ParseView, so a View in hand is always valid.
type View struct {
	kind     viewKind
	category scan.Category
}

var (
	// Cves selects the aggregated vulnerability entries.
	Cves = View{kind: viewCves}
	// List enumerates the package categories present per image.
	List = View{kind: viewList}
)

// CategoryView selects the package entries of one category.
func CategoryView(c scan.Category) View {
	return View{kind: viewCategory, category: c}
}

// ParseView resolves a selector string to a View.
func ParseView(selector string) (View, error) {
	switch selector {
	case "cves":
		return Cves, nil
	case "list":
		return List, nil
	}
	c, ok := scan.ParseCategory(selector)
	if !ok {
		return View{}, xerrors.Errorf("%q: %w", selector, ErrUnknownCategory)
	}
	return CategoryView(c), nil
}

func (v View) String() string {
	switch v.kind {
	case viewCves:
		return "cves"
	case viewList:
		return "list"
	default:
		return string(v.category)
	}
}
