// Hull is a driver for the hull3d library: it generates (or loads) a point
// set, builds its 3-D convex hull repeatedly with timing, and writes the
// input and output files.
//
// Usage:
//
//	go run ./cmd/hull -points 1000000
//
// Flags:
//
//	-points       Number of points to generate (default: 1,000,000)
//	-seed         Seed for deterministic point generation (default: 0x1234)
//	-iters        Number of timed build iterations (default: 5)
//	-parallelism  Target number of concurrent tasks (default: GOMAXPROCS)
//	-infile       Read points from a point file instead of generating
//	-in           Where to write the generated input ("" to skip)
//	-out          Where to write the hull text output ("" to skip)
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/tamirms/hull3d"
	"github.com/tamirms/hull3d/pointfile"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024 // Convert KB to bytes on Linux
	}
	return maxRSS
}

// generatePoints derives n points in the unit cube from murmur3 of the point
// index, so a given (n, seed) pair always yields the same cloud.
func generatePoints(n int, seed uint32) []hull3d.Point {
	points := make([]hull3d.Point, n)
	var buf [8]byte
	for i := range points {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		h1, h2 := murmur3.Sum128WithSeed(buf[:], seed)
		points[i] = hull3d.Point{
			ID: int32(i),
			X:  unit(h1),
			Y:  unit(h2),
			Z:  unit(h1 ^ (h2<<21 | h2>>43)),
		}
	}
	return points
}

// unit maps a 64-bit hash to [0, 1) using its top 53 bits.
func unit(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}

func run() error {
	pointsFlag := flag.Int("points", 1_000_000, "number of points to generate")
	seedFlag := flag.Uint("seed", 0x1234, "point generation seed")
	itersFlag := flag.Int("iters", 5, "timed build iterations")
	parFlag := flag.Int("parallelism", runtime.GOMAXPROCS(0), "target concurrent tasks")
	inFileFlag := flag.String("infile", "", "read points from this point file instead of generating")
	inFlag := flag.String("in", "convex_hull.in", "write the input point file here (empty to skip)")
	outFlag := flag.String("out", "convex_hull.out", "write the hull text output here (empty to skip)")
	flag.Parse()

	var points []hull3d.Point
	if *inFileFlag != "" {
		fmt.Printf("Loading points from %s...\n", *inFileFlag)
		var err error
		points, err = pointfile.Read(*inFileFlag)
		if err != nil {
			return err
		}
	} else {
		fmt.Printf("Generating %d points...\n", *pointsFlag)
		points = generatePoints(*pointsFlag, uint32(*seedFlag))
	}

	ctx := context.Background()
	var tris []hull3d.Triangle
	for i := 0; i < *itersFlag; i++ {
		start := time.Now()
		var err error
		tris, err = hull3d.Build(ctx, points, hull3d.WithParallelism(*parFlag))
		if err != nil {
			return err
		}
		fmt.Printf("build %d: %v (%d faces)\n", i+1, time.Since(start), len(tris))
	}
	fmt.Printf("peak RSS: %.1f MiB\n", float64(getMaxRSS())/(1<<20))

	if *inFlag != "" {
		if err := pointfile.Write(*inFlag, points); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *inFlag)
	}
	if *outFlag != "" {
		f, err := os.Create(*outFlag)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pointfile.WriteHullText(f, points, tris); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *outFlag)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
