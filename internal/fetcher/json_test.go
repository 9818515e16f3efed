package fetcher

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONArray_Rows(t *testing.T) {
	input := `[["a","b"],["1","2"],["3","4"]]`

	ch, errCh := DecodeJSONArray[[]string](context.Background(), strings.NewReader(input))

	var rows [][]string
	for row := range ch {
		rows = append(rows, row)
	}
	for err := range errCh {
		require.NoError(t, err)
	}

	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}}, rows)
}

func TestDecodeJSONArray_EmptyInput(t *testing.T) {
	ch, errCh := DecodeJSONArray[[]string](context.Background(), strings.NewReader(""))
	for range ch { //nolint:revive // drain
	}
	for err := range errCh {
		require.NoError(t, err)
	}
}

func TestDecodeJSONArray_ContextCancellation(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := range 10000 {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`["x","1"]`)
	}
	sb.WriteString("]")

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Millisecond)
	defer cancel()
	time.Sleep(5 * time.Millisecond)

	ch, errCh := DecodeJSONArray[[]string](ctx, strings.NewReader(sb.String()))
	for range ch { //nolint:revive // drain
	}

	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	if gotErr != nil {
		assert.Contains(t, gotErr.Error(), "context")
	}
}

func TestDecodeJSONArray_InvalidFormat(t *testing.T) {
	ch, errCh := DecodeJSONArray[[]string](context.Background(), strings.NewReader(`{"id":"20055"}`))
	for range ch { //nolint:revive // drain
	}

	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "expected '['")
}

func TestReadCensusJSON_AddsID(t *testing.T) {
	input := `[["NAME","B01003_001E","state","county"],
		["Finney County, Kansas","38470","20","055"],
		["Doña Ana County, New Mexico","219561","35","013"]]`

	table, err := ReadCensusJSON(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"NAME", "B01003_001E", "state", "county", "id"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "20055", table.Rows[0][4])
	assert.Equal(t, "35013", table.Rows[1][4])
}

func TestReadCensusJSON_KeepsExistingID(t *testing.T) {
	input := `[["id","Total population"],["0500000US20055","38470"]]`

	table, err := ReadCensusJSON(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Total population"}, table.Header)
	assert.Equal(t, [][]string{{"0500000US20055", "38470"}}, table.Rows)
}

func TestReadCensusJSON_NullCells(t *testing.T) {
	input := `[["id","Total population"],["0500000US20055",null]]`

	table, err := ReadCensusJSON(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"0500000US20055", ""}}, table.Rows)
}

func TestReadCensusJSON_Empty(t *testing.T) {
	_, err := ReadCensusJSON(context.Background(), strings.NewReader(`[]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}
