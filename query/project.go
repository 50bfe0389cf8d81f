package query

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/xerrors"

	"github.com/twistql/twistql/scan"
)

// Project sorts and field-selects a flat record set. sortBy, if non-empty,
// must name a field present on every record; the sort is stable and
// ascending, and may use a field that fields subsequently drops. fields,
// if non-nil, lists the exact output fields in order; a name missing from
// any record fails the whole operation rather than padding with blanks.
// The input slice is not reordered.
func Project(records []*scan.Record, fields []string, sortBy string) ([]*scan.Record, error) {
	out := make([]*scan.Record, len(records))
	copy(out, records)

	if sortBy != "" {
		if err := sortRecords(out, sortBy); err != nil {
			return nil, err
		}
	}

	if fields == nil {
		return out, nil
	}

	for i, rec := range out {
		projected := scan.NewRecord()
		for _, name := range fields {
			v, ok := rec.Get(name)
			if !ok {
				return nil, xerrors.Errorf("%q: %w", name, ErrUnknownField)
			}
			projected.Set(name, v)
		}
		out[i] = projected
	}
	return out, nil
}

func sortRecords(records []*scan.Record, sortBy string) error {
	values := make([]any, len(records))
	for i, rec := range records {
		v, ok := rec.Get(sortBy)
		if !ok {
			return xerrors.Errorf("%q: %w", sortBy, ErrUnknownField)
		}
		values[i] = v
	}

	// Values of one concrete type compare naturally. A field whose values
	// mix types across records is compared by its textual representation
	// instead; deterministic, if crude.
	asText := mixedTypes(values)
	sort.SliceStable(records, func(i, j int) bool {
		vi, _ := records[i].Get(sortBy)
		vj, _ := records[j].Get(sortBy)
		return compareValues(vi, vj, asText) < 0
	})
	return nil
}

func mixedTypes(values []any) bool {
	kind := func(v any) string {
		switch v.(type) {
		case string:
			return "string"
		case float64, int:
			return "number"
		default:
			// bools, nulls, nested values: no natural cross-type order.
			return "other"
		}
	}
	for i := 1; i < len(values); i++ {
		if kind(values[i]) != kind(values[0]) {
			return true
		}
	}
	return len(values) > 0 && kind(values[0]) == "other"
}

func compareValues(a, b any, asText bool) int {
	if asText {
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	default:
		af, bf := toFloat(a), toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
