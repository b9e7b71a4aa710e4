package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmountIsLenient(t *testing.T) {
	cases := map[string]float64{
		`12.75`:      12.75,
		`"40"`:       40,
		`" 7.5 "`:    7.5,
		`null`:       0,
		`"abc"`:      0,
		`"NaN"`:      0,
		`"Inf"`:      0,
		`"-Inf"`:     0,
		`1e400`:      0,
		`3000000000`: 3e9,
	}
	for in, want := range cases {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(in), &a), in)
		require.InDelta(t, want, float64(a), 0.0001, in)
	}
}

func TestWriterRequestKeepsFractionalRate(t *testing.T) {
	var req WriterRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Kim","rate":"60.5"}`), &req))
	require.InDelta(t, 60.5, float64(req.Rate), 0.0001)
}
