package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twistql/twistql/query"
	"github.com/twistql/twistql/scan"
)

func TestRenderRecords(t *testing.T) {
	first := scan.NewRecord()
	first.Set("name", "dpkg")
	first.Set("version", "1.18.4ubuntu1.4")
	first.Set("cveCount", float64(1))

	second := scan.NewRecord()
	second.Set("name", "tar")
	second.Set("version", "1.28")
	second.Set("cveCount", float64(0))

	var buf bytes.Buffer
	require.NoError(t, renderRecords(&buf, []*scan.Record{first, second}))

	want := "NAME  VERSION          CVECOUNT\n" +
		"dpkg  1.18.4ubuntu1.4  1\n" +
		"tar   1.28             0\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderImages(t *testing.T) {
	var buf bytes.Buffer
	err := renderImages(&buf, []query.ImageSummary{
		{
			Digest:   "sha256:abc",
			Tags:     []string{"a:1", "b:2"},
			Hostname: "host",
			ScanTime: time.Date(2018, 6, 7, 13, 55, 14, 0, time.UTC),
		},
		{Digest: "sha256:def"},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "DIGEST")
	assert.Contains(t, buf.String(), "a:1, b:2")
	assert.Contains(t, buf.String(), "2018-06-07 13:55:14")
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "string", in: "x", want: "x"},
		{name: "integral float", in: float64(3), want: "3"},
		{name: "fractional float", in: 1.5, want: "1.5"},
		{name: "int", in: 7, want: "7"},
		{name: "bool", in: true, want: "true"},
		{name: "nil", in: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.in))
		})
	}
}
