package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dativo-io/piiredact/internal/testutil"
)

func TestRedactCommand(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteInputCSV(t, dir, "in.csv", testutil.SampleBatchCSV)
	out := filepath.Join(dir, "out.csv")

	output, err := executeCommand(t, "redact", in, "-o", out, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, output, "Processed 4 records")
	assert.Contains(t, output, "PII:          2 (50.0%)")
	assert.Contains(t, output, "Invalid JSON: 1 (25.0%)")
	assert.Contains(t, output, "Output:       "+out)

	recs := testutil.ReadOutputCSV(t, out)
	require.Len(t, recs, 5)
	assert.Equal(t, []string{"record_id", "redacted_data_json", "is_pii"}, recs[0])
	assert.JSONEq(t, `{"phone":"98XXXXXX10","order":"A-1"}`, recs[1][1])
	assert.Equal(t, "True", recs[1][2])
	assert.JSONEq(t, `{"name":"JXXX DXX","email":"jXXXn@example.com"}`, recs[2][1])
	assert.Equal(t, "True", recs[2][2])
	assert.JSONEq(t, `{"age":"25","city":"Mumbai"}`, recs[3][1])
	assert.Equal(t, "False", recs[3][2])
	assert.Equal(t, `{"error": "Invalid JSON format"}`, recs[4][1])
	assert.Equal(t, "False", recs[4][2])
}

func TestRedactCommand_OutputFromConfig(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteInputCSV(t, dir, "in.csv", testutil.SampleBatchCSV)
	out := filepath.Join(dir, "configured.csv")
	t.Setenv("PIIREDACT_OUTPUT_FILE", out)

	_, err := executeCommand(t, "redact", in)
	require.NoError(t, err)
	assert.Len(t, testutil.ReadOutputCSV(t, out), 5)
}

func TestRedactCommand_MissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")

	_, err := executeCommand(t, "redact", filepath.Join(dir, "nope.csv"), "-o", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file not found")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRedactCommand_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteInputCSV(t, dir, "in.csv", "id,payload\n1,{}\n")

	_, err := executeCommand(t, "redact", in, "-o", filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestRedactCommand_BadWorkers(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteInputCSV(t, dir, "in.csv", testutil.SampleBatchCSV)

	_, err := executeCommand(t, "redact", in, "-o", filepath.Join(dir, "out.csv"), "--workers", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--workers must be positive")
}

func TestRedactCommand_RequiresOneArg(t *testing.T) {
	_, err := executeCommand(t, "redact")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
