package hull3d

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/tamirms/hull3d/claimmap"
	hullerrors "github.com/tamirms/hull3d/errors"
)

// capacityMultiplier sizes both claim maps relative to the input. Claim map
// capacity is consumed per insertion call, and the construction performs at
// most a small constant number of inserts per point per map; 6x input size is
// the working rule inherited from the algorithm's analysis.
const capacityMultiplier = 6

// builder holds the shared state of one Build call. The two claim maps are
// the only mutable state shared between tasks; everything else is either
// immutable (points, facets) or task-local.
type builder struct {
	ctx    context.Context
	points []Point
	n      int32 // sentinel priority, greater than every point id
	hull   *claimmap.Map[Triangle, bool]
	ridges *claimmap.Map[Edge, *facet]
	sem    *semaphore.Weighted
}

// Build computes the 3-D convex hull of points and returns its faces as an
// unordered set of triangles of point indices (indices into the input slice).
//
// The input must contain at least 4 points in general position: no duplicate
// points and no 4 coplanar points. Fewer than 4 points is reported as
// ErrTooFewPoints; degenerate position is not detected and the result is
// undefined. Point identifiers are assigned by Build from input order, so the
// IDs of the passed-in values are ignored.
//
// Build runs the construction in parallel; WithParallelism bounds the number
// of concurrent tasks. The context is checked between recursion steps, so a
// cancelled context abandons the construction and returns ctx.Err().
func Build(ctx context.Context, points []Point, opts ...Option) ([]Triangle, error) {
	if len(points) < 4 {
		return nil, fmt.Errorf("%w: got %d", hullerrors.ErrTooFewPoints, len(points))
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	pts := make([]Point, len(points))
	copy(pts, points)
	for i := range pts {
		pts[i].ID = int32(i)
	}

	hint := capacityMultiplier * len(pts)
	b := &builder{
		ctx:    ctx,
		points: pts,
		n:      int32(len(pts)),
		hull:   claimmap.New[Triangle, bool](hint, claimmap.WithHasher(hashTriangle)),
		ridges: claimmap.New[Edge, *facet](hint, claimmap.WithHasher(hashEdge)),
		sem:    semaphore.NewWeighted(int64(cfg.parallelism) * forkSlack),
	}
	if err := b.run(); err != nil {
		return nil, err
	}
	return b.hull.Keys(), nil
}

// run seeds the hull with the tetrahedron of the first 4 points and resolves
// its 6 ridges in parallel. Every face of the final hull is reachable from
// those 6 resolutions.
func (b *builder) run() error {
	initTris := [4]Triangle{{0, 1, 2}, {1, 2, 3}, {0, 2, 3}, {0, 1, 3}}
	// For each initial face, the tetrahedron vertex it does not contain.
	apexes := [4]int32{3, 0, 1, 2}

	for _, t := range initTris {
		if _, err := b.hull.InsertAndClaim(t, true); err != nil {
			return err
		}
	}

	remaining := b.points[4:]
	var faces [4]*facet
	var g errgroup.Group
	for i := range initTris {
		g.Go(func() error {
			faces[i] = &facet{
				tri:       initTris[i],
				apex:      apexes[i],
				conflicts: b.visiblePoints(initTris[i], apexes[i], remaining),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// The 6 ridges of the tetrahedron: which two faces share which edge.
	shared := [6]struct {
		t1, t2 int
		e      Edge
	}{
		{0, 1, Edge{1, 2}},
		{0, 2, Edge{0, 2}},
		{0, 3, Edge{0, 1}},
		{1, 2, Edge{2, 3}},
		{1, 3, Edge{1, 3}},
		{2, 3, Edge{0, 3}},
	}
	tasks := make([]func() error, len(shared))
	for i, r := range shared {
		tasks[i] = func() error {
			return b.processRidge(faces[r.t1], r.e, faces[r.t2])
		}
	}
	return b.parDo(tasks...)
}

// priority returns the lowest pending conflict id of f, or the sentinel n
// when f has no conflicts left. The sentinel compares greater than every real
// id, making priority a total order that sorts fully resolved facets last.
func (b *builder) priority(f *facet) int32 {
	if len(f.conflicts) == 0 {
		return b.n
	}
	return f.conflicts[0].ID
}

// processRidge resolves the boundary edge r shared by facets t1 and t2. It
// terminates when neither facet has pending conflicts, or when both are about
// to be replaced by a sibling resolution around their common priority point.
// Each pass through the replacement case strictly shrinks the conflict mass
// reachable from this ridge, so the recursion bottoms out.
func (b *builder) processRidge(t1 *facet, r Edge, t2 *facet) error {
	if err := b.ctx.Err(); err != nil {
		return err
	}
	for {
		p1, p2 := b.priority(t1), b.priority(t2)
		switch {
		case len(t1.conflicts) == 0 && len(t2.conflicts) == 0:
			// Nothing pending on either side of this ridge.
			return nil
		case p1 == p2:
			// The same point sees both facets. Both are retired here; their
			// replacements are produced by the sibling resolutions around
			// that point's other ridges.
			b.hull.Remove(t1.tri)
			b.hull.Remove(t2.tri)
			return nil
		case p2 < p1:
			// Normalize so t1 holds the strictly lower pending point.
			t1, t2 = t2, t1
		default:
			return b.replace(t1, r, t2)
		}
	}
}

// replace handles the asymmetric case of processRidge: t1's priority point p
// is promoted onto the hull, t1 is superseded by the facet {r[0], r[1], p},
// and resolution fans out to the ridge against t2 plus the two edges the new
// facet introduces.
func (b *builder) replace(t1 *facet, r Edge, t2 *facet) error {
	p := b.priority(t1)
	tri := Triangle{r[0], r[1], p}
	uni := mergedConflicts(t1.conflicts, t2.conflicts)
	tNew := &facet{
		tri:       tri,
		apex:      t1.apex,
		conflicts: b.visiblePoints(tri, t1.apex, uni),
	}

	b.hull.Remove(t1.tri)
	if _, err := b.hull.InsertAndClaim(tri, true); err != nil {
		return err
	}

	return b.parDo(
		func() error { return b.processRidge(tNew, r, t2) },
		func() error { return b.checkEdge(Edge{r[0], p}, tNew) },
		func() error { return b.checkEdge(Edge{r[1], p}, tNew) },
	)
}

// checkEdge registers tp as an owner of the undecided edge e. Winning the
// claim means the edge stays pending until its other facet shows up and loses
// its own claim; losing means the other owner is already recorded, and the
// two are reconciled by recursing into the ridge between them.
func (b *builder) checkEdge(e Edge, tp *facet) error {
	key := e.canonical()
	won, err := b.ridges.InsertAndClaim(key, tp)
	if err != nil {
		return err
	}
	if won {
		return nil
	}
	other, ok := b.ridges.GetOtherValue(key, tp)
	if !ok {
		return fmt.Errorf("%w: edge %v", hullerrors.ErrRidgeOwnerMissing, key)
	}
	return b.processRidge(tp, key, other)
}

// parDo runs tasks as a structured fork-join: the extra tasks are spawned on
// new goroutines when a semaphore slot is available and run inline otherwise,
// the first task always runs on the calling goroutine, and parDo does not
// return until every task has completed. The inline fallback keeps the
// recursive fan-out deadlock-free under any semaphore size and bounds the
// goroutine count independently of recursion depth. The first non-nil error
// wins; later tasks still run to completion.
func (b *builder) parDo(tasks ...func() error) error {
	var g errgroup.Group
	var inlineErr error
	for _, task := range tasks[1:] {
		if b.sem.TryAcquire(1) {
			g.Go(func() error {
				defer b.sem.Release(1)
				return task()
			})
		} else if err := task(); err != nil && inlineErr == nil {
			inlineErr = err
		}
	}
	if err := tasks[0](); err != nil && inlineErr == nil {
		inlineErr = err
	}
	if err := g.Wait(); err != nil && inlineErr == nil {
		inlineErr = err
	}
	return inlineErr
}
