package demosaic

import (
	"context"
	"image"
	"runtime"
	"sync"
)

// Strategy controls how the output is partitioned and scheduled. It never
// affects the computed values: any strategy yields bit-identical output.
type Strategy struct {
	TileWidth  int // output columns per tile; <= 0 means the full width
	TileHeight int // output rows per tile; <= 0 means the full height
	Workers    int // concurrent tiles; <= 0 means one per CPU
}

// DefaultStrategy returns 128x16 tiles spread over every CPU.
func DefaultStrategy() Strategy {
	return Strategy{TileWidth: 128, TileHeight: 16, Workers: runtime.NumCPU()}
}

// SerialStrategy processes the whole image as one tile on the calling goroutine.
func SerialStrategy() Strategy {
	return Strategy{Workers: 1}
}

func (s Strategy) init(bounds image.Rectangle) Strategy {
	if s.TileWidth <= 0 || s.TileWidth > bounds.Dx() {
		s.TileWidth = bounds.Dx()
	}
	if s.TileHeight <= 0 || s.TileHeight > bounds.Dy() {
		s.TileHeight = bounds.Dy()
	}
	// Even tile edges keep neighboring tiles from recomputing a shared
	// half-resolution row or column.
	s.TileWidth += s.TileWidth & 1
	s.TileHeight += s.TileHeight & 1
	if s.Workers < 1 {
		s.Workers = runtime.NumCPU()
	}
	return s
}

// Tiles partitions bounds into disjoint rectangles in row-major order.
func (s Strategy) Tiles(bounds image.Rectangle) []image.Rectangle {
	if bounds.Empty() {
		return nil
	}
	s = s.init(bounds)
	tiles := make([]image.Rectangle, 0)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += s.TileHeight {
		for x := bounds.Min.X; x < bounds.Max.X; x += s.TileWidth {
			tiles = append(tiles, image.Rect(x, y, x+s.TileWidth, y+s.TileHeight).Intersect(bounds))
		}
	}
	return tiles
}

// run calls fn once per tile from a pool of s.Workers goroutines. Tiles not
// yet started when ctx is cancelled are skipped and ctx.Err() is returned;
// once every tile has been handed out the call completes with nil.
func (s Strategy) run(ctx context.Context, bounds image.Rectangle, fn func(image.Rectangle)) error {
	tiles := s.Tiles(bounds)
	workers := s.init(bounds).Workers
	if workers > len(tiles) {
		workers = len(tiles)
	}

	if workers <= 1 {
		for _, t := range tiles {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(t)
		}
		return nil
	}

	queue := make(chan image.Rectangle)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range queue {
				fn(t)
			}
		}()
	}

	var err error
feed:
	for _, t := range tiles {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case queue <- t:
		}
	}
	close(queue)
	wg.Wait()
	return err
}
