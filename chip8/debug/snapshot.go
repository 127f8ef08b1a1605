package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-chip8/chip8/log"
	"github.com/valerio/go-chip8/chip8/video"
)

// Palette is the pair of colors used to render lit and unlit pixels.
type Palette struct {
	On  color.Color
	Off color.Color
}

var DefaultPalette = Palette{On: color.White, Off: color.Black}

// FrameImage renders frame with each pixel scaled to a scale x scale square.
func FrameImage(frame *video.Frame, scale int, palette Palette) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth*scale, video.FramebufferHeight*scale))
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			c := palette.Off
			if frame[y/scale][x/scale] {
				c = palette.On
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// WritePNG encodes frame as a PNG image.
func WritePNG(w io.Writer, frame *video.Frame, scale int, palette Palette) error {
	return png.Encode(w, FrameImage(frame, scale, palette))
}

// SaveFramePNGToDir saves a frame as PNG with a timestamp in its name and
// returns the path written. An empty directory means the working directory.
func SaveFramePNGToDir(frame *video.Frame, baseName, directory string, scale int, palette Palette) (string, error) {
	if directory == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		directory = cwd
	}

	timestamp := time.Now().Format("20060102_150405.000")
	path := filepath.Join(directory, fmt.Sprintf("%s_%s.png", baseName, timestamp))

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := WritePNG(file, frame, scale, palette); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	log.ModVideo.WithField("path", path).Info("snapshot saved")
	return path, nil
}
