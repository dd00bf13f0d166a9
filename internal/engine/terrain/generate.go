package terrain

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// Generate validates p and builds a height field with the selected mode.
func Generate(p Params, log *zap.Logger) (*HeightField, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	log = logger.OrNop(log)

	switch p.Mode {
	case ModeFlat:
		return generateFlat(p, log)
	case ModeHeightmap:
		return LoadHeightmap(p, log)
	case ModeMidpoint:
		return generateMidpoint(p, log)
	}
	return nil, fmt.Errorf("%w: unknown mode %v", ErrInvalidParams, p.Mode)
}

// GenerateFlat builds a p.DimX x p.DimY field with every height at zero.
func GenerateFlat(p Params, log *zap.Logger) (*HeightField, error) {
	p.Mode = ModeFlat
	return Generate(p, log)
}

// GenerateMidpoint builds a fractal field with the diamond-square algorithm.
// The same Seed, size and Roughness always give the same heights.
func GenerateMidpoint(p Params, log *zap.Logger) (*HeightField, error) {
	p.Mode = ModeMidpoint
	return Generate(p, log)
}

func generateFlat(p Params, log *zap.Logger) (*HeightField, error) {
	h := newHeightField(p.DimX, p.DimY, p)
	if err := h.finish(p, log); err != nil {
		return nil, err
	}
	return h, nil
}

func generateMidpoint(p Params, log *zap.Logger) (*HeightField, error) {
	h := newHeightField(p.DimX, p.DimY, p)
	d := diamondSquare{
		heights: h.heights,
		dimX:    h.dimX,
		dimY:    h.dimY,
		rng:     rand.New(rand.NewSource(p.Seed)),
	}
	d.run(p.Roughness)

	log.Debug("midpoint displacement done",
		zap.Int("dim_x", h.dimX),
		zap.Int("dim_y", h.dimY),
		zap.Int64("seed", p.Seed),
		zap.Float32("roughness", p.Roughness),
	)

	if err := h.finish(p, log); err != nil {
		return nil, err
	}
	return h, nil
}

// diamondSquare runs midpoint displacement in place over a toroidal grid.
type diamondSquare struct {
	heights    []float32
	dimX, dimY int
	rng        *rand.Rand
}

func (d *diamondSquare) run(roughness float32) {
	rectSize := nextPowerOfTwo(max(d.dimX, d.dimY))
	amplitude := float32(rectSize) / 2
	reduce := math32.Pow(2, -roughness)

	for rectSize > 1 {
		d.diamondStep(rectSize, amplitude)
		d.squareStep(rectSize, amplitude)
		rectSize /= 2
		amplitude *= reduce
	}
}

// diamondStep sets the center of every rectSize cell to the mean of its
// four corners plus a random offset.
func (d *diamondSquare) diamondStep(rectSize int, amplitude float32) {
	half := rectSize / 2
	for y := 0; y < d.dimY; y += rectSize {
		for x := 0; x < d.dimX; x += rectSize {
			nx, ny := d.nextX(x, rectSize), d.nextY(y, rectSize)

			topLeft := d.get(x, y)
			topRight := d.get(nx, y)
			bottomLeft := d.get(x, ny)
			bottomRight := d.get(nx, ny)

			mid := (topLeft + topRight + bottomLeft + bottomRight) / 4
			d.set(x+half, y+half, mid+d.offset(amplitude))
		}
	}
}

// squareStep sets the midpoint of the top and left edge of every cell from
// its two corners and the two diamond centers on either side of the edge.
// Every edge in the grid is the top or left edge of exactly one cell.
func (d *diamondSquare) squareStep(rectSize int, amplitude float32) {
	half := rectSize / 2
	for y := 0; y < d.dimY; y += rectSize {
		for x := 0; x < d.dimX; x += rectSize {
			nx, ny := d.nextX(x, rectSize), d.nextY(y, rectSize)

			topLeft := d.get(x, y)
			topRight := d.get(nx, y)
			bottomLeft := d.get(x, ny)
			center := d.get(x+half, y+half)
			above := d.get(x+half, y-half)
			left := d.get(x-half, y+half)

			topMid := (topLeft + topRight + center + above) / 4
			leftMid := (topLeft + bottomLeft + center + left) / 4
			d.set(x+half, y, topMid+d.offset(amplitude))
			d.set(x, y+half, leftMid+d.offset(amplitude))
		}
	}
}

// nextX returns the column of the far corner of a cell. The last cell of a
// row ends on the last column instead of wrapping back to the first.
func (d *diamondSquare) nextX(x, rectSize int) int {
	nx := x + rectSize
	if nx >= d.dimX {
		return d.dimX - 1
	}
	return nx
}

func (d *diamondSquare) nextY(y, rectSize int) int {
	ny := y + rectSize
	if ny >= d.dimY {
		return d.dimY - 1
	}
	return ny
}

func (d *diamondSquare) offset(amplitude float32) float32 {
	return (d.rng.Float32()*2 - 1) * amplitude
}

func (d *diamondSquare) get(x, y int) float32 {
	return d.heights[wrap(y, d.dimY)*d.dimX+wrap(x, d.dimX)]
}

func (d *diamondSquare) set(x, y int, v float32) {
	d.heights[wrap(y, d.dimY)*d.dimX+wrap(x, d.dimX)] = v
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
