package service

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultImageExtensions en orden de prioridad.
var DefaultImageExtensions = []string{".jpg", ".png", ".webp"}

// ImageLocator resuelve la imagen de una raza; nil si no existe.
type ImageLocator interface {
	Locate(breedName string) *string
}

// ImageResolver busca <dir>/<raza><ext> probando las extensiones en orden.
type ImageResolver struct {
	dir        string
	extensions []string
}

func NewImageResolver(dir string, extensions ...string) *ImageResolver {
	if len(extensions) == 0 {
		extensions = DefaultImageExtensions
	}
	return &ImageResolver{dir: dir, extensions: extensions}
}

func (r *ImageResolver) Locate(breedName string) *string {
	if strings.TrimSpace(breedName) == "" || breedName == "." || strings.Contains(breedName, "..") || strings.ContainsAny(breedName, `/\`) {
		return nil
	}
	for _, ext := range r.extensions {
		path := filepath.Join(r.dir, breedName+ext)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return &path
	}
	return nil
}
