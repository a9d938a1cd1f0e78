package main

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"html"
	"html/template"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp"
)

// imageInfo is what the image shortcode needs to know about a source image.
type imageInfo struct {
	url    string
	width  int
	height int
}

// imageShortcode copies an image into the output directory under a content
// hashed name and returns an <img> element with its dimensions. src is
// relative to the site root.
func (s *Site) imageShortcode(src string, alt string, sizes ...string) (template.HTML, error) {
	info, err := s.processImage(src)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(`<img src="` + html.EscapeString(info.url) + `"`)
	b.WriteString(` alt="` + html.EscapeString(alt) + `"`)
	if len(sizes) > 0 && sizes[0] != "" {
		b.WriteString(` sizes="` + html.EscapeString(sizes[0]) + `"`)
	}
	b.WriteString(` loading="lazy" decoding="async"`)
	b.WriteString(` width="` + strconv.Itoa(info.width) + `" height="` + strconv.Itoa(info.height) + `">`)
	return template.HTML(b.String()), nil
}

// processImage reads and copies an image once per build, however many
// pages reference it.
func (s *Site) processImage(src string) (imageInfo, error) {
	if v, ok := s.images.Load(src); ok {
		return v.(imageInfo), nil
	}

	data, err := os.ReadFile(filepath.Join(s.RootDir, strings.TrimPrefix(src, "/")))
	if err != nil {
		return imageInfo{}, fmt.Errorf("image %s: %w", src, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return imageInfo{}, fmt.Errorf("image %s: %w", src, err)
	}

	h := fnv.New32a()
	h.Write(data)
	name := fmt.Sprintf("%08x-%s", h.Sum32(), path.Base(src))
	if err := writeFile(filepath.Join(s.OutDir, "img", name), data); err != nil {
		return imageInfo{}, err
	}

	info := imageInfo{
		url:    "/img/" + name,
		width:  cfg.Width,
		height: cfg.Height,
	}
	v, _ := s.images.LoadOrStore(src, info)
	return v.(imageInfo), nil
}
