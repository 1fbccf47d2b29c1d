package giprobe

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderIrradianceMap rasterizes a probe's irradiance into a
// latitude/longitude image: u maps to azimuth, v to elevation. Intended
// for eyeballing bakes, not for runtime use.
func RenderIrradianceMap(sh SHCoefficients, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for py := 0; py < height; py++ {
		// v=0 is the top row, looking straight up.
		theta := (float32(py) + 0.5) / float32(height) * math32.Pi
		for px := 0; px < width; px++ {
			phi := (float32(px) + 0.5) / float32(width) * 2 * math32.Pi

			dir := mgl32.Vec3{
				math32.Sin(theta) * math32.Cos(phi),
				math32.Cos(theta),
				math32.Sin(theta) * math32.Sin(phi),
			}

			irr := sh.EvaluateIrradiance(dir)
			img.SetRGBA(px, py, color.RGBA{
				R: toneMap(irr.X()),
				G: toneMap(irr.Y()),
				B: toneMap(irr.Z()),
				A: 255,
			})
		}
	}
	return img
}

func toneMap(v float32) uint8 {
	// Simple exposure clamp; irradiance values carry a factor of pi.
	v = mgl32.Clamp(v/math32.Pi, 0, 1)
	return uint8(v*254.0 + 0.5)
}

// WriteProbeAtlasPNG dumps every grid probe's irradiance map into one
// labeled atlas image, probes laid out in index order left to right.
// Useful after a bake to spot probes that captured garbage.
func WriteProbeAtlasPNG(grid *LightProbeGrid, filename string, tileWidth, tileHeight, columns int) error {
	if grid == nil || !grid.IsInitialized() {
		return fmt.Errorf("probe atlas: grid is not initialized")
	}
	if columns <= 0 {
		columns = 8
	}

	probes := grid.Probes()
	rows := (len(probes) + columns - 1) / columns
	atlas := image.NewRGBA(image.Rect(0, 0, columns*tileWidth, rows*tileHeight))

	face := basicfont.Face7x13
	for i, probe := range probes {
		tile := RenderIrradianceMap(probe.SH(), tileWidth, tileHeight)
		ox := (i % columns) * tileWidth
		oy := (i / columns) * tileHeight

		for py := 0; py < tileHeight; py++ {
			for px := 0; px < tileWidth; px++ {
				atlas.SetRGBA(ox+px, oy+py, tile.RGBAAt(px, py))
			}
		}

		label := fmt.Sprintf("p%d", probe.Id())
		if !probe.IsValid() {
			label += "!"
		}
		d := font.Drawer{
			Dst:  atlas,
			Src:  image.White,
			Face: face,
			Dot:  fixed.P(ox+2, oy+face.Metrics().Ascent.Ceil()+1),
		}
		d.DrawString(label)
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, atlas); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
