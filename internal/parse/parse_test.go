package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-extractor/internal/entity"
)

var statementFields = entity.NewFieldSet([]string{"Date", "Description", "Amount", "Running Balance"})

func TestParse_EmptyContent(t *testing.T) {
	assert.Empty(t, Parse("", statementFields))
	assert.Empty(t, Parse("   \n\t", statementFields))
}

func TestParse_NoStructure(t *testing.T) {
	out := NewParser(nil).Parse("The statement period has no transactions.", statementFields)
	assert.Empty(t, out.Records)
	assert.Zero(t, out.Skipped)
}

func TestParse_HTMLTable(t *testing.T) {
	content := `<table><tr><th>date</th><th>description</th><th>amount</th></tr>
<tr><td>01/02</td><td>Coffee</td><td>-4.50</td></tr></table>`
	out := NewParser(nil).Parse(content, statementFields)
	require.Len(t, out.Records, 1)
	assert.Equal(t, 1, out.Tables)
	assert.Equal(t, entity.Record{"Date": "01/02", "Description": "Coffee", "Amount": "-4.50"}, out.Records[0])
}

func TestParse_JSONArray(t *testing.T) {
	content := "Here are the rows:\n```json\n" +
		`[{"date": "01/02", "description": "Coffee", "amount": -4.5, "running_balance": 100.25},
 {"date": "01/03", "description": "Refund", "amount": 4.50, "running_balance": null}]` + "\n```"
	out := NewParser(nil).Parse(content, statementFields)
	assert.Equal(t, 2, out.JSON)
	assert.Zero(t, out.Lines)
	assert.Equal(t, []entity.Record{
		{"Date": "01/02", "Description": "Coffee", "Amount": "-4.5", "Running Balance": "100.25"},
		{"Date": "01/03", "Description": "Refund", "Amount": "4.50", "Running Balance": ""},
	}, out.Records)
}

func TestParse_JSONArrayIgnoresHTMLComments(t *testing.T) {
	content := `<!-- [not, json] -->[{"Date": "01/02"}]`
	out := NewParser(nil).Parse(content, statementFields)
	assert.Equal(t, []entity.Record{{"Date": "01/02"}}, out.Records)
	assert.Zero(t, out.Skipped)
}

func TestParse_MalformedArrayNextToValidOne(t *testing.T) {
	content := `[{"Date": "01/01", "Amount": }] and then [{"Date": "01/02", "Amount": "7"}]`
	out := NewParser(nil).Parse(content, statementFields)
	assert.Equal(t, []entity.Record{{"Date": "01/02", "Amount": "7"}}, out.Records)
	assert.Equal(t, 1, out.Skipped)
}

func TestParse_ValidArrayNestedInMalformedText(t *testing.T) {
	content := `[note: [{"Date": "01/02"}] ]`
	out := NewParser(nil).Parse(content, statementFields)
	assert.Equal(t, []entity.Record{{"Date": "01/02"}}, out.Records)
}

func TestJSONArrays_ManyUnclosedBrackets(t *testing.T) {
	content := strings.Repeat("[", 200_000) + `[{"Date": "01/02"}]`
	recs, skipped := jsonArrays(content)
	assert.Equal(t, []entity.Record{{"Date": "01/02"}}, recs)
	assert.Zero(t, skipped)
}

func TestMatchBrackets(t *testing.T) {
	closes := map[int]int{}
	matchBrackets(`[["]"] x] [`, 0, closes)
	assert.Equal(t, map[int]int{0: 8, 1: 5, 10: -1}, closes)
}

func TestParse_BracketsInsideStrings(t *testing.T) {
	content := `[{"Description": "Transfer [ref 12]", "Amount": "3"}]`
	out := NewParser(nil).Parse(content, statementFields)
	assert.Equal(t, []entity.Record{{"Description": "Transfer [ref 12]", "Amount": "3"}}, out.Records)
}

func TestParse_NestedValuesBecomeCompactJSON(t *testing.T) {
	content := `[{"Date": "01/02", "Tags": ["a", "b"], "Meta": {"x": 1}, "Posted": true}]`
	out := NewParser(nil).Parse(content, statementFields)
	require.Len(t, out.Records, 1)
	assert.Equal(t, `["a","b"]`, out.Records[0]["Tags"])
	assert.Equal(t, `{"x":1}`, out.Records[0]["Meta"])
	assert.Equal(t, "true", out.Records[0]["Posted"])
}

func TestParse_BraceLines(t *testing.T) {
	content := `Transactions:
{'date': '01/02', 'description': 'Coffee', 'amount': -4.5, 'cleared': True}
{"Date": "01/03", "Amount": 10,}
{'Date': '01/04', 'Amount': (1, 2), 'Note': None}
{this is not a record}
not a line {'Date': 'x'}`
	out := NewParser(nil).Parse(content, statementFields)
	assert.Equal(t, 3, out.Lines)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, []entity.Record{
		{"Date": "01/02", "Description": "Coffee", "Amount": "-4.5", "cleared": "true"},
		{"Date": "01/03", "Amount": "10"},
		{"Date": "01/04", "Amount": "[1,2]", "Note": ""},
	}, out.Records)
}

func TestParse_StrategiesAreUnioned(t *testing.T) {
	content := `<table><tr><th>Date</th></tr><tr><td>t1</td></tr></table>
[{"Date": "j1"}]
{"Date": "b1"}`
	out := NewParser(nil).Parse(content, statementFields)
	assert.Equal(t, []entity.Record{{"Date": "t1"}, {"Date": "j1"}, {"Date": "b1"}}, out.Records)
}

func TestNormalize_Idempotent(t *testing.T) {
	in := []entity.Record{
		{"date": "01/02", "running_balance": "5", "Other": "x"},
		{"RUNNING BALANCE": "6", "amount": "1"},
		{"runningbalance": "7", "Description ": "y"},
	}
	once := Normalize(in, statementFields)
	twice := Normalize(once, statementFields)
	assert.Equal(t, once, twice)
	assert.Equal(t, entity.Record{"Date": "01/02", "Running Balance": "5", "Other": "x"}, once[0])
	assert.Equal(t, entity.Record{"Running Balance": "6", "Amount": "1"}, once[1])
	assert.Equal(t, entity.Record{"Running Balance": "7", "Description": "y"}, once[2])
}

func TestNormalize_CanonicalKeyWins(t *testing.T) {
	out := Normalize([]entity.Record{{"Date": "canonical", "date": "variant"}}, statementFields)
	assert.Equal(t, []entity.Record{{"Date": "canonical"}}, out)
}

func TestNormalize_DoesNotRewriteValues(t *testing.T) {
	out := Normalize([]entity.Record{{"description": "date of amount"}}, statementFields)
	assert.Equal(t, "date of amount", out[0]["Description"])
}

func TestParseLiteral(t *testing.T) {
	v, err := parseLiteral(`{'a': 'it\'s', "b": [1, 2.5e3,], 'c': False, 1: None}`)
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, "it's", m["a"])
	assert.Equal(t, false, m["c"])
	assert.Nil(t, m["1"])
	assert.Len(t, m["b"], 2)

	for _, bad := range []string{`{'a' 1}`, `{'a': }`, `{'a': 'x'`, `{'a': undefined}`, `{'a': 1} extra`} {
		_, err := parseLiteral(bad)
		assert.Error(t, err, bad)
	}
}
