package repair_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infograph/internal/repair"
)

func TestParse_DirectJSON(t *testing.T) {
	out, err := repair.Parse(`{"a": [1, 2], "b": "x"}`)
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Equal(t, "x", v["b"])
}

func TestParse_DirectJSONArray(t *testing.T) {
	out, err := repair.Parse(`[1, 2, 3]`)
	require.NoError(t, err)

	var v []any
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Len(t, v, 3)
}

func TestParse_LabeledFencedBlock(t *testing.T) {
	raw := "Here is the data you asked for:\n```json\n{\"columns\": [\"A\"]}\n```\nLet me know if you need more."
	out, err := repair.Parse(raw)
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Contains(t, v, "columns")
}

func TestParse_UnlabeledFencedBlock(t *testing.T) {
	raw := "Sure!\n```\n{\"rows\": []}\n```"
	out, err := repair.Parse(raw)
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Contains(t, v, "rows")
}

func TestParse_TrailingCommas(t *testing.T) {
	out, err := repair.Parse(`{"a": [1, 2,], "b": {"c": 3,},}`)
	require.NoError(t, err)

	var v struct {
		A []int `json:"a"`
		B struct {
			C int `json:"c"`
		} `json:"b"`
	}
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Equal(t, []int{1, 2}, v.A)
	assert.Equal(t, 3, v.B.C)
}

func TestParse_FencedBlockWithTrailingComma(t *testing.T) {
	// Fenced interior is itself invalid JSON; recovery falls through to the
	// brace-substring step with comma stripping.
	raw := "```json\n{\"a\": [1,2,],}\n```"
	out, err := repair.Parse(raw)
	require.NoError(t, err)

	var v struct {
		A []int `json:"a"`
	}
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Equal(t, []int{1, 2}, v.A)
}

func TestParse_ProseWrappedObject(t *testing.T) {
	raw := `The extraction result is {"title": "Sales", "rows": [{"x": 1}]} as requested.`
	out, err := repair.Parse(raw)
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(out, &v))
	assert.Equal(t, "Sales", v["title"])
}

func TestParse_UnrecoverableProse(t *testing.T) {
	raw := "I could not find any data in this image, sorry."
	_, err := repair.Parse(raw)
	require.Error(t, err)

	var parseErr *repair.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, raw, parseErr.Raw)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := repair.Parse("   ")
	var parseErr *repair.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestDecode_ProjectsIntoTarget(t *testing.T) {
	var v struct {
		Items []string `json:"items"`
	}
	err := repair.Decode("```json\n{\"items\": [\"a\", \"b\"]}\n```", &v)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.Items)
}

func TestDecode_ShapeMismatchFails(t *testing.T) {
	var v struct {
		Items []string `json:"items"`
	}
	err := repair.Decode(`{"items": "not-a-list"}`, &v)
	require.Error(t, err)

	var parseErr *repair.ParseError
	assert.True(t, errors.As(err, &parseErr))
}
