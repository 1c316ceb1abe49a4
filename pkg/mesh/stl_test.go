package mesh

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSaveToSTL(t *testing.T) {
	s := &Surface{
		Vertices: []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Faces:   [][3]int{{0, 1, 2}},
		Normals: []r3.Vec{{Z: 1}, {Z: 1}, {Z: 1}},
	}

	path := filepath.Join(t.TempDir(), "out.stl")
	require.NoError(t, SaveToSTL(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Binary STL: 80-byte header, uint32 count, 50 bytes per facet.
	require.Len(t, data, 80+4+50)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[80:84]))

	// Facet normal is the normalized mean of the vertex normals.
	nx := float32frombytes(data[84:88])
	ny := float32frombytes(data[88:92])
	nz := float32frombytes(data[92:96])
	assert.InDelta(t, 0, nx, 1e-6)
	assert.InDelta(t, 0, ny, 1e-6)
	assert.InDelta(t, 1, nz, 1e-6)

	// First vertex follows the normal.
	assert.InDelta(t, 0, float32frombytes(data[96:100]), 1e-6)
}

func TestSaveToSTLMultipleFacets(t *testing.T) {
	s := testSurface()

	path := filepath.Join(t.TempDir(), "out.stl")
	require.NoError(t, SaveToSTL(path, s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(80+4+2*50), info.Size())
}

func TestSTLExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.stl")
	require.NoError(t, STLExporter{}.Export(testSurface(), path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func float32frombytes(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
