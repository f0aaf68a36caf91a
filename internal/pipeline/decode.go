package pipeline

import (
	"context"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"aspect/internal/data"
	"aspect/internal/errors"
	"aspect/internal/log"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// gifDelayUnit is the duration of one GIF delay tick.
const gifDelayUnit = 10 * time.Millisecond

// DecodedFrame is one fully composited frame.
type DecodedFrame struct {
	Image *image.RGBA
	Delay time.Duration
}

// Decoder reads path into frames. It runs on a background goroutine and
// should return early once ctx is cancelled.
type Decoder func(ctx context.Context, path string) ([]DecodedFrame, error)

// DecodeFile picks the animated decoder for GIF files and the static
// decoder for everything else.
func DecodeFile(ctx context.Context, path string) ([]DecodedFrame, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileError("image not found", path, errors.FileNotFound, err)
		}
		return nil, errors.NewFileError("cannot access image", path, errors.FileAccessDenied, err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.NewFileError("could not load image from path which is not a file", path, errors.NotAFile, nil)
	}

	if data.IsAnimatedName(path) {
		return decodeAnimated(ctx, path)
	}
	return decodeStatic(path)
}

func decodeStatic(path string) ([]DecodedFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFileError("cannot open image", path, errors.FileAccessDenied, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.NewDecodeError("failed to decode image", path, errors.DecodeFailed, err)
	}
	log.LogWithFields(log.F("path", path), log.F("format", format)).Debug("Decoded static image")

	return []DecodedFrame{{Image: toRGBA(img)}}, nil
}

// decodeAnimated composites every GIF frame onto a persistent canvas,
// honouring each frame's disposal method. Frames with a zero delay are drawn
// but not kept. A GIF holding a single image is treated as static.
func decodeAnimated(ctx context.Context, path string) ([]DecodedFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFileError("cannot open image", path, errors.FileAccessDenied, err)
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, errors.NewDecodeError("failed to decode gif", path, errors.DecodeFailed, err)
	}
	if len(g.Image) == 0 {
		return nil, errors.NewDecodeError("image contained no frames", path, errors.NoFrames, nil)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, g.Config.Width, g.Config.Height))
	if canvas.Bounds().Empty() {
		canvas = image.NewRGBA(g.Image[0].Bounds())
	}

	if len(g.Image) == 1 {
		draw.Draw(canvas, g.Image[0].Bounds(), g.Image[0], g.Image[0].Bounds().Min, draw.Over)
		return []DecodedFrame{{Image: canvas}}, nil
	}

	frames := make([]DecodedFrame, 0, len(g.Image))
	for i, frame := range g.Image {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var previous *image.RGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		delay := 0
		if i < len(g.Delay) {
			delay = g.Delay[i]
		}
		if delay == 0 {
			log.LogWithFields(log.F("path", path), log.F("frame", i)).
				Warn("Frame delay is zero, blitting next frame immediately")
		} else {
			frames = append(frames, DecodedFrame{
				Image: cloneRGBA(canvas),
				Delay: time.Duration(delay) * gifDelayUnit,
			})
		}

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}

	if len(frames) == 0 {
		return nil, errors.NewDecodeError("image contained no frames", path, errors.NoFrames, nil)
	}
	return frames, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
