package loaders

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/tiff"
)

var ErrTextureMissing = errors.New("texture file missing")

// tga registers with an empty magic string and would claim every file in
// image.DecodeConfig, so headers are read by the decoder matching the extension.
var headerDecoders = map[string]func(io.Reader) (image.Config, error){
	"png":  png.DecodeConfig,
	"jpg":  jpeg.DecodeConfig,
	"jpeg": jpeg.DecodeConfig,
	"tif":  tiff.DecodeConfig,
	"tiff": tiff.DecodeConfig,
	"tga":  tga.DecodeConfig,
}

// TextureInfo describes a texture file referenced by a material. Width and
// Height stay zero for formats without a header decoder (dds).
type TextureInfo struct {
	Path   string
	Format string
	Width  int
	Height int
	Size   int64
}

type TextureLoader struct{}

// Probe checks that path exists and reads the image header when the format is
// decodable. It never decodes pixels.
func (tl *TextureLoader) Probe(path string) (TextureInfo, error) {
	info := TextureInfo{
		Path:   path,
		Format: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
	}
	file, err := os.Open(path)
	if err != nil {
		return info, fmt.Errorf("%w: %s", ErrTextureMissing, path)
	}
	defer file.Close()

	st, err := file.Stat()
	if err != nil {
		return info, err
	}
	if st.IsDir() {
		return info, fmt.Errorf("%w: %s is a directory", ErrTextureMissing, path)
	}
	info.Size = st.Size()

	decode, ok := headerDecoders[info.Format]
	if !ok {
		return info, nil
	}
	cfg, err := decode(file)
	if err != nil {
		// the file is there, the header just isn't one we understand
		return info, nil
	}
	info.Width = cfg.Width
	info.Height = cfg.Height
	return info, nil
}
