package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSplit-QC/internal/domain/dataset"
	"github.com/turtacn/ChemSplit-QC/internal/infrastructure/storage/npy"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Version(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestPairsCommand_Text(t *testing.T) {
	out, err := execute(t, "pairs")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 28)
	assert.Contains(t, lines[0], "DD")
	assert.Contains(t, lines[27], "LL")
	assert.Contains(t, lines[27], "270-279")
}

func TestPairsCommand_JSON(t *testing.T) {
	out, err := execute(t, "pairs", "-o", "json")
	require.NoError(t, err)

	var blocks []struct {
		Key  string `json:"key"`
		From int    `json:"column_from"`
		To   int    `json:"column_to"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &blocks))
	require.Len(t, blocks, 28)
	assert.Equal(t, "DD", blocks[0].Key)
	assert.Equal(t, 0, blocks[0].From)
	assert.Equal(t, 279, blocks[27].To)
}

func TestFingerprintCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "smiles.csv")
	output := filepath.Join(dir, "cats.npz")
	require.NoError(t, os.WriteFile(input, []byte("CCO\nc1ccccc1\n"), 0o644))

	out, err := execute(t, "fingerprint", "-i", input, "-O", output)
	require.NoError(t, err)
	assert.Contains(t, out, "fingerprinted 2/2")

	_, err = os.Stat(output)
	require.NoError(t, err, "output archive written")
}

func TestFingerprintCommand_RequiresFlags(t *testing.T) {
	_, err := execute(t, "fingerprint")
	require.Error(t, err)
}

func TestBiasCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "smiles.csv")
	features := filepath.Join(dir, "cats.npz")

	// Six parseable molecules, two structural families.
	smiles := "CCO\nCCCO\nCCCCO\nc1ccccc1\nCc1ccccc1\nCCc1ccccc1\n"
	require.NoError(t, os.WriteFile(input, []byte(smiles), 0o644))
	_, err := execute(t, "fingerprint", "-i", input, "-O", features)
	require.NoError(t, err)

	labels := filepath.Join(dir, "labels.npz")
	clusters := filepath.Join(dir, "clusters.csv")
	writeLabelMatrix(t, labels, []float64{1, 1, 1, 0, 0, 0})
	require.NoError(t, os.WriteFile(clusters, []byte("0\n0\n1\n2\n2\n3\n"), 0o644))

	out, err := execute(t, "bias",
		"-x", features, "-y", labels, "--clusters", clusters,
		"--target", "0", "--metric", "dice", "--test-fraction", "0.5", "-o", "json")
	require.NoError(t, err)

	var result struct {
		AVE    float64 `json:"ave"`
		VE     float64 `json:"ve"`
		Metric string  `json:"metric"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "dice", result.Metric)
	assert.GreaterOrEqual(t, result.VE, 0.0)
	assert.InDelta(t, 0, result.AVE, 2.0, "AVE stays in its documented range")
}

func TestBiasCommand_BadMetric(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "bias",
		"-x", filepath.Join(dir, "x.npz"),
		"-y", filepath.Join(dir, "y.npz"),
		"--clusters", filepath.Join(dir, "c.csv"),
		"--metric", "cosine")
	require.Error(t, err)
}

// writeLabelMatrix persists a one-column sparse label matrix.
func writeLabelMatrix(t *testing.T, path string, labels []float64) {
	t.Helper()
	rows := make([][]float64, len(labels))
	for i, l := range labels {
		rows[i] = []float64{l}
	}
	csr, err := dataset.NewCSRFromRows(rows, 1)
	require.NoError(t, err)
	require.NoError(t, npy.SaveCSR(path, csr))
}
