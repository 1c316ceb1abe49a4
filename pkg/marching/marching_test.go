package marching

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"rtstruct2stl/pkg/mesh"
)

// sphereGrid fills a size^3 binary grid with a sphere of radius size/4
// around the center.
func sphereGrid(size int) []float64 {
	data := make([]float64, size*size*size)
	radius := float64(size) / 4.0
	center := float64(size) / 2.0

	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				dx := float64(x) - center
				dy := float64(y) - center
				dz := float64(z) - center
				if math.Sqrt(dx*dx+dy*dy+dz*dz) < radius {
					data[z*size*size+y*size+x] = 1.0
				}
			}
		}
	}
	return data
}

// cuboidGrid fills a size^3 binary grid with an axis-aligned cuboid
// spanning nodes [lo, hi] on every axis.
func cuboidGrid(size, lo, hi int) []float64 {
	data := make([]float64, size*size*size)
	for z := lo; z <= hi; z++ {
		for y := lo; y <= hi; y++ {
			for x := lo; x <= hi; x++ {
				data[z*size*size+y*size+x] = 1.0
			}
		}
	}
	return data
}

func surfaceArea(s *mesh.Surface) float64 {
	area := 0.0
	for _, f := range s.Faces {
		e1 := r3.Sub(s.Vertices[f[1]], s.Vertices[f[0]])
		e2 := r3.Sub(s.Vertices[f[2]], s.Vertices[f[0]])
		area += 0.5 * r3.Norm(r3.Cross(e1, e2))
	}
	return area
}

// TestExtractSphere verifies the extraction on a simple binary sphere
func TestExtractSphere(t *testing.T) {
	size := 20
	ex := New(sphereGrid(size), size, size, size, 0.5)

	surf, err := ex.Run()
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	// A sphere at this resolution should produce a substantial mesh
	if len(surf.Faces) < 100 {
		t.Errorf("expected at least 100 faces for sphere, got %d", len(surf.Faces))
	}
	if len(surf.Normals) != len(surf.Vertices) {
		t.Fatalf("normal count %d does not match vertex count %d", len(surf.Normals), len(surf.Vertices))
	}

	// Normals should point away from the sphere center. Binary-grid
	// gradients are coarse, so allow a small number of near-tangent
	// vertices.
	center := float64(size) / 2.0
	inward := 0
	for i, v := range surf.Vertices {
		outward := r3.Vec{X: v.X - center, Y: v.Y - center, Z: v.Z - center}
		if r3.Norm(outward) == 0 {
			continue
		}
		if r3.Dot(outward, surf.Normals[i]) < 0 {
			inward++
		}
	}
	if inward > len(surf.Vertices)/100 {
		t.Errorf("%d of %d normals point inward", inward, len(surf.Vertices))
	}
}

// TestExtractWatertight verifies that every edge of the extracted surface
// is shared by exactly two faces, i.e. the mesh is closed
func TestExtractWatertight(t *testing.T) {
	size := 16
	ex := New(sphereGrid(size), size, size, size, 0.5)

	surf, err := ex.Run()
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	edges := make(map[[2]int]int)
	for _, f := range surf.Faces {
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			edges[[2]int{a, b}]++
		}
	}

	for edge, count := range edges {
		if count != 2 {
			t.Fatalf("edge %v is used by %d faces, want 2", edge, count)
		}
	}
}

// TestEmptyVolume verifies that grids without an isovalue crossing fail
// explicitly instead of yielding a silent empty mesh
func TestEmptyVolume(t *testing.T) {
	size := 8
	zeros := make([]float64, size*size*size)

	_, err := New(zeros, size, size, size, 0.5).Run()
	var empty *EmptyVolumeError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyVolumeError for all-zero grid, got %v", err)
	}
	if empty.NX != size || empty.NY != size || empty.NZ != size {
		t.Errorf("error reports %dx%dx%d, want %dx%dx%d", empty.NX, empty.NY, empty.NZ, size, size, size)
	}

	ones := make([]float64, size*size*size)
	for i := range ones {
		ones[i] = 1.0
	}
	_, err = New(ones, size, size, size, 0.5).Run()
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyVolumeError for all-one grid, got %v", err)
	}
}

// TestSetSpacing verifies that anisotropic spacing scales the output
// coordinates per axis
func TestSetSpacing(t *testing.T) {
	size := 8
	grid := cuboidGrid(size, 3, 4)

	unit := New(grid, size, size, size, 0.5)
	scaled := New(grid, size, size, size, 0.5)
	scaled.SetSpacing(2.0, 3.0, 4.0)

	unitSurf, err := unit.Run()
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	scaledSurf, err := scaled.Run()
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	if len(unitSurf.Vertices) != len(scaledSurf.Vertices) {
		t.Fatalf("vertex counts differ: %d vs %d", len(unitSurf.Vertices), len(scaledSurf.Vertices))
	}

	for i := range unitSurf.Vertices {
		u, s := unitSurf.Vertices[i], scaledSurf.Vertices[i]
		if math.Abs(u.X*2.0-s.X) > 1e-9 || math.Abs(u.Y*3.0-s.Y) > 1e-9 || math.Abs(u.Z*4.0-s.Z) > 1e-9 {
			t.Fatalf("vertex %d not scaled per axis: unit %v scaled %v", i, u, s)
		}
	}
}

// TestCuboidSurfaceArea checks the extracted area of a filled cuboid
// against its analytic surface area within discretization tolerance
func TestCuboidSurfaceArea(t *testing.T) {
	size := 12
	grid := cuboidGrid(size, 4, 7) // 4 occupied nodes per axis

	surf, err := New(grid, size, size, size, 0.5).Run()
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	// The isosurface sits half a voxel outside the occupied nodes, so the
	// extracted box spans about 4 voxels per side. Chamfered edges keep
	// the measured area a little under the analytic value.
	analytic := 6.0 * 4.0 * 4.0
	area := surfaceArea(surf)
	if area < 0.7*analytic || area > 1.1*analytic {
		t.Errorf("surface area %.2f outside tolerance of analytic %.2f", area, analytic)
	}
}

// TestRunDeterministic verifies that identical inputs produce identical
// meshes
func TestRunDeterministic(t *testing.T) {
	size := 14
	grid := sphereGrid(size)

	first, err := New(grid, size, size, size, 0.5).Run()
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}
	second, err := New(grid, size, size, size, 0.5).Run()
	if err != nil {
		t.Fatalf("extraction failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over identical input produced different meshes")
	}
}

// TestDataLengthMismatch verifies the shape guard
func TestDataLengthMismatch(t *testing.T) {
	_, err := New(make([]float64, 10), 4, 4, 4, 0.5).Run()
	if err == nil {
		t.Fatal("expected error for mismatched data length")
	}
}

// BenchmarkRun benchmarks extraction over a binary sphere
func BenchmarkRun(b *testing.B) {
	size := 16
	grid := sphereGrid(size)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := New(grid, size, size, size, 0.5).Run(); err != nil {
			b.Fatal(err)
		}
	}
}
