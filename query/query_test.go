package query_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/twistql/twistql/query"
	"github.com/twistql/twistql/scan"
)

var (
	digestA = "sha256:" + repeat("a")
	digestB = "sha256:" + repeat("b")
)

func repeat(hex string) string {
	out := ""
	for i := 0; i < 64; i++ {
		out += hex
	}
	return out
}

// Two images sharing the "shared:tag" tag, with overlapping python
// entries stored in reverse alphabetical order on the first image.
func testCatalog(t *testing.T) *scan.Catalog {
	t.Helper()
	raw := fmt.Sprintf(`{
	  "images": [
	    {
	      "info": {
	        "image": {"ID": "%s", "RepoTags": ["myimg:latest", "shared:tag"]},
	        "cveVulnerabilities": [
	          {"cve": "CVE-2020-0001", "severity": "high", "packageName": "b"},
	          {"cve": "CVE-2020-0002", "severity": "low", "packageName": "a"}
	        ],
	        "data": {"packages": [
	          {"pkgsType": "python", "pkgs": [
	            {"path": "b", "version": "2"},
	            {"path": "a", "version": "1"}
	          ]},
	          {"pkgsType": "nodejs", "pkgs": []}
	        ]}
	      }
	    },
	    {
	      "info": {
	        "image": {"ID": "%s", "RepoTags": ["other:1.0", "shared:tag"]},
	        "cveVulnerabilities": [],
	        "data": {"packages": [
	          {"pkgsType": "python", "pkgs": [
	            {"path": "a", "version": "9"}
	          ]},
	          {"pkgsType": "gem", "pkgs": [
	            {"name": "rack", "version": "1.5.3", "cveCount": 2}
	          ]}
	        ]}
	      }
	    }
	  ]
	}`, digestA, digestB)
	c, err := scan.NewCatalog([]byte(raw))
	require.NoError(t, err)
	return c
}

func digests(images []*scan.Image) []string {
	var out []string
	for _, img := range images {
		out = append(out, img.Digest())
	}
	return out
}

func field(t *testing.T, rec *scan.Record, name string) any {
	t.Helper()
	v, ok := rec.Get(name)
	require.True(t, ok, name)
	return v
}

func TestMatch(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name string
		spec string
		want []string
	}{
		{name: "digest lookup", spec: digestA, want: []string{digestA}},
		{name: "digest absent", spec: "sha256:" + repeat("c"), want: nil},
		{name: "tag lookup", spec: "myimg:latest", want: []string{digestA}},
		{name: "malformed digest falls back to tag", spec: "sha256:doesnotexist", want: nil},
		{name: "shared tag returns all in catalog order", spec: "shared:tag", want: []string{digestA, digestB}},
		{name: "no such tag", spec: "nothing", want: nil},
		{name: "tag must match exactly", spec: "myimg", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, digests(query.Match(c, tt.spec)))
		})
	}
}

func TestMatchSubstring(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name string
		spec string
		want []string
	}{
		{name: "empty matches all", spec: "", want: []string{digestA, digestB}},
		{name: "digest fragment", spec: "bbbb", want: []string{digestB}},
		{name: "tag fragment", spec: "myimg", want: []string{digestA}},
		{name: "shared tag fragment", spec: "shared", want: []string{digestA, digestB}},
		{name: "no match", spec: "zzz", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, digests(query.MatchSubstring(c, tt.spec)))
		})
	}
}

func TestParseView(t *testing.T) {
	for _, selector := range []string{"binary", "gem", "jar", "nodejs", "package", "python", "windows", "cves", "list"} {
		v, err := query.ParseView(selector)
		require.NoError(t, err, selector)
		assert.Equal(t, selector, v.String())
	}

	_, err := query.ParseView("rubbish-category")
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, query.ErrUnknownCategory))
	assert.Contains(t, err.Error(), "rubbish-category")
}

func TestExtractCategory(t *testing.T) {
	c := testCatalog(t)
	images := query.Match(c, "shared:tag")

	records := query.Extract(images, query.CategoryView(scan.CategoryPython))
	require.Len(t, records, 3)

	// Image order, then stored entry order; each record tagged with its
	// originating digest. The same path in two images stays two records.
	assert.Equal(t, "b", field(t, records[0], "path"))
	assert.Equal(t, "a", field(t, records[1], "path"))
	assert.Equal(t, "a", field(t, records[2], "path"))
	assert.Equal(t, digestA, field(t, records[0], "digest"))
	assert.Equal(t, digestA, field(t, records[1], "digest"))
	assert.Equal(t, digestB, field(t, records[2], "digest"))

	assert.Equal(t, []string{"digest", "path", "version"}, records[0].Fields())
}

func TestExtractCves(t *testing.T) {
	c := testCatalog(t)
	records := query.Extract(query.Match(c, "shared:tag"), query.Cves)
	require.Len(t, records, 2)
	assert.Equal(t, "CVE-2020-0001", field(t, records[0], "cve"))
	assert.Equal(t, "CVE-2020-0002", field(t, records[1], "cve"))
	assert.Equal(t, digestA, field(t, records[0], "digest"))
}

func TestExtractList(t *testing.T) {
	c := testCatalog(t)
	records := query.Extract(query.Match(c, "shared:tag"), query.List)
	require.Len(t, records, 3)

	type row struct {
		digest, category string
		count            int
	}
	var rows []row
	for _, rec := range records {
		rows = append(rows, row{
			digest:   field(t, rec, "digest").(string),
			category: field(t, rec, "category").(string),
			count:    field(t, rec, "count").(int),
		})
	}
	// nodejs has zero entries on image A and must not appear.
	assert.Equal(t, []row{
		{digest: digestA, category: "python", count: 2},
		{digest: digestB, category: "python", count: 1},
		{digest: digestB, category: "gem", count: 1},
	}, rows)
}

func TestExtractEmptyInput(t *testing.T) {
	assert.Empty(t, query.Extract(nil, query.Cves))
}

func TestProjectFields(t *testing.T) {
	c := testCatalog(t)
	records := query.Extract(query.Match(c, "myimg:latest"), query.CategoryView(scan.CategoryPython))

	got, err := query.Project(records, []string{"path"}, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"path"}, got[0].Fields())
	assert.Equal(t, "b", field(t, got[0], "path"))

	// Requested order wins over schema order.
	got, err = query.Project(records, []string{"version", "path"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"version", "path"}, got[0].Fields())

	_, err = query.Project(records, []string{"path", "nope"}, "")
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, query.ErrUnknownField))
	assert.Contains(t, err.Error(), "nope")
}

func TestProjectSort(t *testing.T) {
	c := testCatalog(t)
	records := query.Extract(query.Match(c, "myimg:latest"), query.CategoryView(scan.CategoryPython))

	// Entries are stored b-then-a; sorting flips them.
	got, err := query.Project(records, nil, "path")
	require.NoError(t, err)
	assert.Equal(t, "a", field(t, got[0], "path"))
	assert.Equal(t, "b", field(t, got[1], "path"))

	// The input slice order is left alone.
	assert.Equal(t, "b", field(t, records[0], "path"))

	_, err = query.Project(records, nil, "nope")
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, query.ErrUnknownField))
}

func TestProjectSortByDroppedField(t *testing.T) {
	c := testCatalog(t)
	records := query.Extract(query.Match(c, "myimg:latest"), query.CategoryView(scan.CategoryPython))

	got, err := query.Project(records, []string{"version"}, "path")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"version"}, got[0].Fields())
	// path a carries version 1, so sorting by the dropped path field
	// must order version 1 before version 2.
	assert.Equal(t, "1", field(t, got[0], "version"))
	assert.Equal(t, "2", field(t, got[1], "version"))
}

func TestProjectSortStable(t *testing.T) {
	records := []*scan.Record{
		makeRecord("name", "x", "rank", "1"),
		makeRecord("name", "y", "rank", "1"),
		makeRecord("name", "z", "rank", "0"),
	}
	got, err := query.Project(records, nil, "rank")
	require.NoError(t, err)
	assert.Equal(t, "z", mustGet(got[0], "name"))
	assert.Equal(t, "x", mustGet(got[1], "name"))
	assert.Equal(t, "y", mustGet(got[2], "name"))
}

func TestProjectSortNumeric(t *testing.T) {
	records := []*scan.Record{
		makeRecord("name", "a", "cveCount", float64(10)),
		makeRecord("name", "b", "cveCount", float64(2)),
	}
	got, err := query.Project(records, nil, "cveCount")
	require.NoError(t, err)
	// 2 < 10 numerically, although "10" < "2" as text.
	assert.Equal(t, "b", mustGet(got[0], "name"))
}

func TestProjectSortMixedTypesFallsBackToText(t *testing.T) {
	records := []*scan.Record{
		makeRecord("name", "a", "value", float64(10)),
		makeRecord("name", "b", "value", "2"),
	}
	got, err := query.Project(records, nil, "value")
	require.NoError(t, err)
	// Text fallback: "10" sorts before "2".
	assert.Equal(t, "a", mustGet(got[0], "name"))
	assert.Equal(t, "b", mustGet(got[1], "name"))
}

func makeRecord(kv ...any) *scan.Record {
	rec := scan.NewRecord()
	for i := 0; i < len(kv); i += 2 {
		rec.Set(kv[i].(string), kv[i+1])
	}
	return rec
}

func mustGet(rec *scan.Record, name string) any {
	v, _ := rec.Get(name)
	return v
}
