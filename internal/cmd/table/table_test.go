package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/products"
)

func TestRecordsToTableData(t *testing.T) {
	start := time.Date(2008, 2, 1, 10, 30, 0, 0, time.UTC)
	records := []index.Record{
		{Path: "/data/2008/032/a.hdf", Product: "P", StartTime: start, EndTime: start.Add(99 * time.Minute)},
		{Path: "/elsewhere/b.hdf", Product: "P", StartTime: start, EndTime: start},
	}

	data := RecordsToTableData(records, []int{3, 7}, "/data", false)
	assert.Equal(t, []string{"#", "Start", "End", "Duration", "Path"}, data.Headers)
	assert.Equal(t, [][]string{
		{"3", "2008-02-01 10:30:00", "2008-02-01 12:09:00", "1h39m0s", "2008/032/a.hdf"},
		{"7", "2008-02-01 10:30:00", "2008-02-01 10:30:00", "0s", "/elsewhere/b.hdf"},
	}, data.Rows)

	wide := RecordsToTableData(records, []int{3, 7}, "/data", true)
	assert.Equal(t, "/data/2008/032/a.hdf", wide.Rows[0][4])
}

func TestProductsToTableData(t *testing.T) {
	open := func(string) (products.Reader, error) { return nil, nil }
	r := products.NewRegistry()
	r.MustRegister("A", `a_\d+`, open)
	r.MustRegister("B", `b_\d+`, open)

	data := ProductsToTableData(r.List(), nil, false)
	assert.Equal(t, [][]string{{"A", "-"}, {"B", "-"}}, data.Rows)

	data = ProductsToTableData(r.List(), map[products.ID]int{"A": 12}, true)
	assert.Equal(t, []string{"Product", "Files", "Pattern"}, data.Headers)
	assert.Equal(t, [][]string{{"A", "12", `a_\d+`}, {"B", "0", `b_\d+`}}, data.Rows)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", FormatTime(time.Time{}))
	loc := time.FixedZone("X", 3600)
	assert.Equal(t, "2008-02-01 09:00:00", FormatTime(time.Date(2008, 2, 1, 10, 0, 0, 0, loc)))
}

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "x/y.hdf", RelativePath("/data", "/data/x/y.hdf"))
	assert.Equal(t, "/other/y.hdf", RelativePath("/data", "/other/y.hdf"))
	assert.Equal(t, "/data/y.hdf", RelativePath("", "/data/y.hdf"))
}
