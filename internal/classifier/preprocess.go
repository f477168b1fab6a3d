package classifier

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// SupportedFormats son los formatos que acepta la carga de imagenes.
var SupportedFormats = map[string]struct{}{
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// DefaultMaxImagePixels acota ancho x alto antes de decodificar.
const DefaultMaxImagePixels int64 = 40_000_000

// CheckDimensions rechaza imagenes vacias o con mas de maxPixels pixeles.
func CheckDimensions(cfg image.Config, maxPixels int64) error {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxImagePixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}
	return nil
}

// Preprocess decodifica la imagen, la recorta al centro en cuadrado y la
// escala a size x size. Devuelve el resultado en PNG.
func Preprocess(raw []byte, size int) ([]byte, error) {
	if size <= 0 {
		size = 224
	}
	cfg, _, err := DecodeConfig(raw)
	if err != nil {
		return nil, err
	}
	if err := CheckDimensions(cfg, DefaultMaxImagePixels); err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidImage, err)
	}
	if _, ok := SupportedFormats[format]; !ok {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidImage, format)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	square := image.Rect(x0, y0, x0+side, y0+side)

	// Escala directo desde el recorte de la fuente, sin copia intermedia.
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, square, draw.Src, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}

// DecodeConfig valida el encabezado de la imagen sin decodificarla completa.
func DecodeConfig(raw []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if _, ok := SupportedFormats[format]; !ok {
		return image.Config{}, "", fmt.Errorf("%w: unsupported format %q", ErrInvalidImage, format)
	}
	return cfg, format, nil
}
