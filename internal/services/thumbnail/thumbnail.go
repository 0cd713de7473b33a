package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/catalogworks/catalog-service/internal/services/images"
)

// Generator produces downscaled thumbnails from uploaded images. The longest
// side of the result is bounded by maxSize; smaller images are re-encoded
// unchanged in dimensions.
type Generator struct {
	maxSize int
}

func NewGenerator(maxSize int) *Generator {
	return &Generator{maxSize: maxSize}
}

func (g *Generator) Generate(file *images.UploadedFile) (*images.UploadedFile, error) {
	src, format, err := image.Decode(bytes.NewReader(file.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", file.OriginalName, err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > g.maxSize || height > g.maxSize {
		if width >= height {
			height = height * g.maxSize / width
			width = g.maxSize
		} else {
			width = width * g.maxSize / height
			height = g.maxSize
		}
		if width < 1 {
			width = 1
		}
		if height < 1 {
			height = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
	case "png":
		err = png.Encode(&buf, dst)
	default:
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return &images.UploadedFile{
		FieldName:    file.FieldName,
		OriginalName: file.OriginalName,
		Encoding:     file.Encoding,
		MimeType:     file.MimeType,
		Size:         int64(buf.Len()),
		Content:      buf.Bytes(),
	}, nil
}
