package hull3d

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"

	"github.com/tamirms/hull3d/internal/geom"
)

// Point is an input point: a 3-D position plus its identifier. Build assigns
// identifiers itself (the point's index in the input slice), so callers only
// need to fill in coordinates. Identifiers double as the total order used to
// schedule the incremental construction.
type Point struct {
	ID      int32
	X, Y, Z float64
}

func (p Point) vec() geom.Vec3 {
	return geom.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// Triangle is a hull face, stored as three point identifiers. Triangles are
// compared as arrays: the vertex order is whatever the construction produced,
// not a canonical winding.
type Triangle [3]int32

// Edge is an unordered pair of point identifiers. Map keys are always the
// canonical form, smaller identifier first.
type Edge [2]int32

func (e Edge) canonical() Edge {
	if e[0] <= e[1] {
		return e
	}
	return Edge{e[1], e[0]}
}

// hashTriangle hashes the packed 12-byte id triple with xxHash3. Equal
// Triangle values pack identically, which is all the claim map requires.
func hashTriangle(t Triangle) uint64 {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:4], uint32(t[0]))
	binary.LittleEndian.PutUint32(b[4:8], uint32(t[1]))
	binary.LittleEndian.PutUint32(b[8:12], uint32(t[2]))
	return xxh3.Hash(b[:])
}

// hashEdge hashes the packed 8-byte id pair with xxHash64. Callers pass
// canonical edges, so the two orientations of an edge never reach this.
func hashEdge(e Edge) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint32(b[0:4], uint32(e[0]))
	binary.LittleEndian.PutUint32(b[4:8], uint32(e[1]))
	return xxhash.Sum64(b[:])
}
