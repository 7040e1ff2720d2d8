package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportToJSON(t *testing.T) {
	r := &Report{
		InputPath:   "in.ps1",
		OutputPath:  "out.ps1",
		RenderLevel: 3,
		StepCount:   42,
		OutputItems: 2,
		ErrorCount:  0,
		Success:     true,
		InputSize:   100,
		OutputSize:  50,
	}
	b, err := r.ToJSON()
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, "in.ps1", back["inputPath"])
	require.Equal(t, float64(42), back["stepCount"])
	require.Equal(t, true, back["success"])
}

func TestReportToJSONOmitsEmptyFields(t *testing.T) {
	r := &Report{InputPath: "in.ps1"}
	b, err := r.ToJSON()
	require.NoError(t, err)
	require.NotContains(t, string(b), "warnings")
	require.NotContains(t, string(b), "opacityScore")
}

func TestReportWarningsFromErrors(t *testing.T) {
	errs := []*ValError{
		newValError(ErrDivideByZero, Span{}, "divide by zero"),
		newValError(ErrIndexOutOfBounds, Span{}, "index %d out of range", 5),
	}
	warnings := reportWarningsFromErrors(errs)
	require.Len(t, warnings, 2)
	require.Contains(t, warnings[0], "divide by zero")
	require.Contains(t, warnings[1], "index 5 out of range")
}

func TestReportWarningsFromErrorsEmpty(t *testing.T) {
	require.Empty(t, reportWarningsFromErrors(nil))
}
