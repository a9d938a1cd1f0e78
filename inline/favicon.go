package inline

import (
	"encoding/base64"
	"fmt"
)

// Favicon turns an icon reference into an element carrying a data URI.
// Link tags keep their type attribute and get the URI in href; every other
// tag gets it in src.
var Favicon = HandlerFunc(favicon)

func favicon(src Source, c Context) (Result, error) {
	if src.FileContent == nil || src.Content != "" || src.Type != IconType {
		return Unhandled, nil
	}
	return dataElement(src, c, !src.Errored)
}

// dataElement renders src as a self-closing element whose reference
// attribute is replaced by a base64 data URI.
func dataElement(src Source, c Context, strict bool) (Result, error) {
	if src.Format == "" {
		return Unhandled, fmt.Errorf("%w: %s has no image format", ErrMalformedSource, src.Path)
	}

	attributeType, hasType := src.Attrs.Get("type")
	attrs := src.Attrs.Without("type")
	sourceProp := "src"

	data := base64.StdEncoding.EncodeToString(src.FileContent)
	encoding := EncodingBase64

	if src.Tag == "link" {
		// link tags carry rel and sizes verbatim
		if hasType {
			attrs = attrs.With(Attr{Name: "type", Value: attributeType})
		}
		sourceProp = "href"
		strict = false
	}
	// the old reference never survives next to the new one, even when
	// strict filtering is off
	attrs = attrs.Without(sourceProp)

	uri := "data:image/" + src.Format + ";" + encoding + "," + data
	attrString := AttributeString(attrs, c.Attribute, strict)
	attrString += " " + sourceProp + `="` + uri + `"`

	return Replace("<"+src.Tag+attrString+"/>", uri), nil
}
