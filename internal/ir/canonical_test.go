package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeysNoWhitespace(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"z": 1,
		"a": "x<y",
		"m": []any{true, int64(-2), uint64(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x<y","m":[true,-2,3],"z":1}`, string(got))
}

func TestMarshalCanonical_IntSlice(t *testing.T) {
	got, err := MarshalCanonical([]int{5, 3, 8})
	require.NoError(t, err)
	assert.Equal(t, `[5,3,8]`, string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" + combining acute accent normalizes to a single code point
	got, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.ErrorContains(t, err, "null")

	_, err = MarshalCanonical(1.5)
	assert.ErrorContains(t, err, "floats")

	_, err = MarshalCanonical(map[string]any{"k": struct{}{}})
	assert.ErrorContains(t, err, "unsupported type")
}

func TestEventDocument(t *testing.T) {
	e := Compare(0, 1)
	e.Seq = 1
	e.Comparisons = 1
	got, err := MarshalCanonical(EventDocument(e))
	require.NoError(t, err)
	assert.Equal(t, `{"comparisons":1,"i":0,"j":1,"kind":"compare","seq":1,"swaps":0}`, string(got))

	d := Done()
	d.Seq = 2
	got, err = MarshalCanonical(EventDocument(d))
	require.NoError(t, err)
	assert.Equal(t, `{"comparisons":0,"kind":"done","seq":2,"swaps":0}`, string(got))
}

func TestTraceDocument_AlgorithmIsString(t *testing.T) {
	got, err := MarshalCanonical(TraceDocument("t", AlgorithmQuick, []int{2, 1}, nil))
	require.NoError(t, err)
	assert.Equal(t, `{"algorithm":"quick","input":[2,1],"name":"t","trace":[]}`, string(got))
}
