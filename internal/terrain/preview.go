package terrain

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ExportPlanetMap renders an equirectangular biome map of the planet and
// writes it as a PNG. Each pixel samples the surface at the center of its
// covered region.
func ExportPlanetMap(g *Generator, path string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export map: invalid dimensions %dx%d", width, height)
	}

	start := time.Now()
	size := g.PlanetSize()
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for py := 0; py < height; py++ {
		worldZ := (float64(py) + 0.5) / float64(height) * size
		for px := 0; px < width; px++ {
			worldX := (float64(px) + 0.5) / float64(width) * size

			h := g.HeightAt(worldX, worldZ)
			biome := g.BiomeAt(worldX, worldZ)
			c := g.PreviewColor(worldX, worldZ, biome, h)
			img.SetRGBA(px, py, color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]})
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export map: create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export map: create file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("export map: encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export map: close file: %w", err)
	}

	log.Printf("terrain: exported %dx%d planet map to %s in %s", width, height, path, time.Since(start).Round(time.Millisecond))
	return nil
}
