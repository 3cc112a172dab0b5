package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

func TestParse_NoTable(t *testing.T) {
	ts, err := Parse("## Statement\nno tables here")
	require.NoError(t, err)
	assert.Empty(t, ts)
}

func TestParse_THeadAndBody(t *testing.T) {
	html := `
<table>
  <thead><tr><th>Date</th><th>Description</th><th>Amount</th></tr></thead>
  <tbody>
    <tr><td>01/02</td><td>Coffee   shop</td><td>-4.50</td></tr>
    <tr><td>01/03</td><td>Salary</td><td>2000.00</td></tr>
  </tbody>
</table>`
	ts, err := Parse(html)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, ts[0].Columns)
	assert.Equal(t, 3, ts[0].Width())
	require.Len(t, ts[0].Rows, 2)
	assert.Equal(t, entity.Record{"Date": "01/02", "Description": "Coffee shop", "Amount": "-4.50"}, ts[0].Rows[0])
}

func TestParse_FirstRowIsHeaderWithoutTH(t *testing.T) {
	html := `<table><tr><td>Date</td><td>Amount</td></tr><tr><td>01/02</td><td>5</td></tr></table>`
	ts, err := Parse(html)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, []string{"Date", "Amount"}, ts[0].Columns)
	assert.Equal(t, []entity.Record{{"Date": "01/02", "Amount": "5"}}, ts[0].Rows)
}

func TestParse_ColspanAndDuplicateHeaders(t *testing.T) {
	html := `<table>
<tr><th>Date</th><th colspan="2">Amount</th><th></th></tr>
<tr><td>01/02</td><td>1</td><td>2</td><td>x</td></tr>
</table>`
	ts, err := Parse(html)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, []string{"Date", "Amount", "Amount.1", "Unnamed: 3"}, ts[0].Columns)
	assert.Equal(t, "2", ts[0].Rows[0]["Amount.1"])
}

func TestParse_RowspanCarriesDown(t *testing.T) {
	html := `<table>
<tr><th>Date</th><th>Description</th></tr>
<tr><td rowspan="2">01/02</td><td>A</td></tr>
<tr><td>B</td></tr>
</table>`
	ts, err := Parse(html)
	require.NoError(t, err)
	require.Len(t, ts[0].Rows, 2)
	assert.Equal(t, entity.Record{"Date": "01/02", "Description": "B"}, ts[0].Rows[1])
}

func TestParse_ShortRowsPadded(t *testing.T) {
	html := `<table><tr><th>A</th><th>B</th><th>C</th></tr><tr><td>1</td></tr></table>`
	ts, err := Parse(html)
	require.NoError(t, err)
	assert.Equal(t, entity.Record{"A": "1", "B": "", "C": ""}, ts[0].Rows[0])
}

func TestRecords_ConcatenatesTablesInOrder(t *testing.T) {
	html := `<p>page</p>
<table><tr><th>Date</th></tr><tr><td>1</td></tr></table>
<table><tr><th>Date</th></tr><tr><td>2</td></tr></table>`
	recs, err := Records(html)
	require.NoError(t, err)
	assert.Equal(t, []entity.Record{{"Date": "1"}, {"Date": "2"}}, recs)
}
