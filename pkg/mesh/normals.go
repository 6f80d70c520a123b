package mesh

import (
	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/spatial/r3"
)

func toCoord(v r3.Vec) model3d.Coord3D {
	return model3d.Coord3D{X: v.X, Y: v.Y, Z: v.Z}
}

func fromCoord(c model3d.Coord3D) r3.Vec {
	return r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
}

// faceKey identifies a face by its vertex set, independent of winding
type faceKey [3]int

func keyOf(f [3]int) faceKey {
	a, b, c := f[0], f[1], f[2]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return faceKey{a, b, c}
}

// orientedMesh is a surface whose triangles were turned outward by model3d,
// with every triangle mapped back to the vertex indices it came from.
type orientedMesh struct {
	mesh  *model3d.Mesh
	faces [][3]int

	// corners maps each oriented triangle to its vertex indices
	corners map[*model3d.Triangle][3]int

	// canonical maps a vertex index to the first vertex at the same position
	canonical []int
}

// orient builds a model3d mesh from s and repairs its normals so they point
// out of every closed component. Vertices sharing a position are merged.
func orient(s *Surface) *orientedMesh {
	byCoord := make(map[model3d.Coord3D]int, len(s.Vertices))
	canonical := make([]int, len(s.Vertices))
	for i, v := range s.Vertices {
		c := toCoord(v)
		if j, ok := byCoord[c]; ok {
			canonical[i] = j
			continue
		}
		byCoord[c] = i
		canonical[i] = i
	}

	faceOf := make(map[faceKey]int, len(s.Faces))
	triangles := make([]*model3d.Triangle, len(s.Faces))
	for i, f := range s.Faces {
		faceOf[keyOf([3]int{canonical[f[0]], canonical[f[1]], canonical[f[2]]})] = i
		triangles[i] = &model3d.Triangle{
			toCoord(s.Vertices[f[0]]),
			toCoord(s.Vertices[f[1]]),
			toCoord(s.Vertices[f[2]]),
		}
	}

	box := s.Bounds()
	epsilon := 1e-8 * max(r3.Norm(r3.Sub(box.Max, box.Min)), 1)
	repaired, _ := model3d.NewMeshTriangles(triangles).RepairNormals(epsilon)

	o := &orientedMesh{
		mesh:      repaired,
		faces:     make([][3]int, len(s.Faces)),
		corners:   make(map[*model3d.Triangle][3]int, len(s.Faces)),
		canonical: canonical,
	}
	copy(o.faces, s.Faces)
	for _, t := range repaired.TriangleSlice() {
		f := [3]int{byCoord[t[0]], byCoord[t[1]], byCoord[t[2]]}
		o.corners[t] = f
		if i, ok := faceOf[keyOf(f)]; ok {
			o.faces[i] = f
		}
	}
	return o
}

// vertexNormals sums the unit normals of the oriented faces around each
// vertex and normalizes the result. Normals are not split at sharp edges.
func (o *orientedMesh) vertexNormals() []r3.Vec {
	normals := make([]r3.Vec, len(o.canonical))
	for t, f := range o.corners {
		if t.Area() == 0 {
			continue
		}
		n := fromCoord(t.Normal())
		for _, v := range f {
			normals[v] = r3.Add(normals[v], n)
		}
	}
	for i, n := range normals {
		if l := r3.Norm(n); l > 0 {
			normals[i] = r3.Scale(1/l, n)
		}
	}
	for i, j := range o.canonical {
		normals[i] = normals[j]
	}
	return normals
}
