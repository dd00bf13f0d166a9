package terrain

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF heightmaps
	_ "image/jpeg" // JPEG heightmaps
	"image/png"
	"io"
	"os"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // BMP heightmaps
	_ "golang.org/x/image/tiff" // TIFF heightmaps

	"github.com/Faultbox/midgard-terrain/internal/logger"
)

// LoadHeightmap builds a height field from one 8-bit channel of the image at
// p.HeightmapPath. Pixel (x, y) becomes grid vertex (x, z=y) and the image
// size becomes the grid size. Read and decode failures match ErrAssetLoad.
func LoadHeightmap(p Params, log *zap.Logger) (*HeightField, error) {
	p.Mode = ModeHeightmap
	if err := p.Validate(); err != nil {
		return nil, err
	}
	log = logger.OrNop(log)

	img, format, err := decodeImage(p.HeightmapPath)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	h := newHeightField(b.Dx(), b.Dy(), p)
	for y := 0; y < h.dimY; y++ {
		for x := 0; x < h.dimX; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			h.heights[y*h.dimX+x] = float32(channel(c, p.HeightmapChannel)) * p.HeightScale
		}
	}

	log.Info("heightmap loaded",
		zap.String("path", p.HeightmapPath),
		zap.String("format", format),
		zap.Int("dim_x", h.dimX),
		zap.Int("dim_y", h.dimY),
	)

	if err := h.finish(p, log); err != nil {
		return nil, err
	}
	return h, nil
}

func decodeImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: opening heightmap %s: %w", ErrAssetLoad, path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, "", fmt.Errorf("%w: decoding heightmap %s: %w", ErrAssetLoad, path, err)
	}
	return img, format, nil
}

func channel(c color.NRGBA, idx int) uint8 {
	switch idx {
	case 1:
		return c.G
	case 2:
		return c.B
	case 3:
		return c.A
	default:
		return c.R
	}
}

// EncodePNG writes the height field as an 8-bit grayscale image, mapping
// the lowest height to black and the highest to white.
func (h *HeightField) EncodePNG(w io.Writer) error {
	lo, hi := h.bounds.Min.Y, h.bounds.Max.Y
	scale := float32(0)
	if hi > lo {
		scale = 255 / (hi - lo)
	}

	img := image.NewGray(image.Rect(0, 0, h.dimX, h.dimY))
	for z := 0; z < h.dimY; z++ {
		for x := 0; x < h.dimX; x++ {
			v := (h.heights[z*h.dimX+x] - lo) * scale
			img.SetGray(x, z, color.Gray{Y: uint8(clampf(v+0.5, 0, 255))})
		}
	}
	return png.Encode(w, img)
}
