package photos

import (
	"bytes"
	"fmt"
	"image"

	"jollybaba-backend/internal/config"

	"github.com/disintegration/imaging"
)

// Derivatives holds the two JPEG renditions stored for a repaired photo.
type Derivatives struct {
	Main  []byte
	Thumb []byte
}

// Processor downsizes camera uploads into a display rendition and a
// thumbnail. Camera EXIF rotation is applied before resizing.
type Processor struct {
	maxDimension   int
	thumbDimension int
	quality        int
	thumbQuality   int
}

func NewProcessor(cfg *config.Config) *Processor {
	return &Processor{
		maxDimension:   cfg.Cloudinary.MaxDimension,
		thumbDimension: cfg.Cloudinary.ThumbDimension,
		quality:        cfg.Cloudinary.Quality,
		thumbQuality:   cfg.Cloudinary.ThumbQuality,
	}
}

// Derive decodes the upload and produces both renditions. Either both
// succeed or an error is returned, so callers never store half a photo.
func (p *Processor) Derive(src []byte) (*Derivatives, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	main, err := encodeFitted(img, p.maxDimension, p.quality)
	if err != nil {
		return nil, fmt.Errorf("main rendition: %w", err)
	}
	thumb, err := encodeFitted(img, p.thumbDimension, p.thumbQuality)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}

	return &Derivatives{Main: main, Thumb: thumb}, nil
}

// encodeFitted shrinks the image to fit inside maxDim x maxDim (never
// upscales) and encodes it as JPEG at the given quality.
func encodeFitted(img image.Image, maxDim, quality int) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
