// Package hull3d computes 3-D convex hulls with a parallel randomized
// incremental algorithm.
//
// The construction follows "Randomized Incremental Convex Hull is Highly
// Parallel" (Blelloch, Gu, Shun and Sun): independent tasks resolve the
// ridges (shared edges) of the evolving hull concurrently, coordinating only
// through two fixed-capacity concurrent claim maps — one holding the current
// face set, one recording which facet currently owns each undecided edge.
// There is no global lock; the claim map's first-writer-wins primitive is the
// entire concurrency control.
//
// # Basic Usage
//
//	tris, err := hull3d.Build(ctx, points)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, t := range tris {
//	    // t is a [3]int32 of indices into points
//	}
//
// Inputs must be in general position: at least 4 points, no duplicates, no 4
// coplanar. Degenerate inputs are not detected and produce undefined results.
//
// # Package Structure
//
//   - Public API: hull.go (Build), point.go (Point, Triangle, Edge)
//   - Configuration: options.go (Option, With* functions)
//   - Algorithm core: hull.go (processRidge, checkEdge), facet.go (conflict
//     lists, visibility filtering)
//   - Coordination primitive: claimmap/ (generic concurrent claim map)
//   - Geometry: internal/geom/ (vectors, normals, sidedness)
//   - I/O collaborators: pointfile/ (point-set files), cmd/hull/ (driver)
package hull3d
