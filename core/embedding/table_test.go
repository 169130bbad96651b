package embedding

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTable(t *testing.T) {
	values := []float32{1, 2, 3, 4, 5, 6}
	raw := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	path := filepath.Join(t.TempDir(), "weights.bin")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	table, err := LoadTable(path, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, table.Row(0))
	assert.Equal(t, []float32{4, 5, 6}, table.Row(1))
}

func TestLoadTableSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 10), 0o644))

	_, err := LoadTable(path, 2, 3)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestClamp(t *testing.T) {
	table, err := NewTable(make([]float32, 4*8), 4, 8)
	require.NoError(t, err)

	assert.Equal(t, 0, table.Clamp(-1))
	assert.Equal(t, 0, table.Clamp(0))
	assert.Equal(t, 3, table.Clamp(3))
	assert.Equal(t, 3, table.Clamp(4))
	assert.Equal(t, 3, table.Clamp(104))
}
