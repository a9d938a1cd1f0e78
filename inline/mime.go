package inline

import (
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type fileType struct {
	mime   string
	format string
}

var fileTypes = map[string]fileType{
	".ico":  {IconType, "x-icon"},
	".png":  {"image/png", "png"},
	".jpg":  {"image/jpeg", "jpeg"},
	".jpeg": {"image/jpeg", "jpeg"},
	".gif":  {"image/gif", "gif"},
	".webp": {"image/webp", "webp"},
	".avif": {"image/avif", "avif"},
	".svg":  {"image/svg+xml", "svg+xml"},
	".css":  {"text/css", "css"},
	".js":   {"application/javascript", "javascript"},
	".mjs":  {"application/javascript", "javascript"},
}

// detectType returns the MIME type and format of a file, looking at the
// extension first and sniffing the content otherwise.
func detectType(name string, content []byte) (string, string) {
	if ft, ok := fileTypes[strings.ToLower(path.Ext(name))]; ok {
		return ft.mime, ft.format
	}
	mime := mimetype.Detect(content)
	typ, _, _ := strings.Cut(mime.String(), ";")
	_, format, ok := strings.Cut(typ, "/")
	if !ok {
		return typ, ""
	}
	if typ == "image/vnd.microsoft.icon" {
		return IconType, "x-icon"
	}
	return typ, format
}
