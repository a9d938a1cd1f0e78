package inline

import "strings"

// Image inlines any image other than an icon as a data URI.
var Image = HandlerFunc(func(src Source, c Context) (Result, error) {
	if src.FileContent == nil || src.Content != "" || src.Type == IconType {
		return Unhandled, nil
	}
	if !strings.HasPrefix(src.Type, "image/") {
		return Unhandled, nil
	}
	return dataElement(src, c, !src.Errored)
})

// Stylesheet replaces a stylesheet link with a style element.
var Stylesheet = HandlerFunc(func(src Source, c Context) (Result, error) {
	if src.FileContent == nil || src.Content != "" || src.Tag != "link" || src.Type != "text/css" {
		return Unhandled, nil
	}
	css := strings.ReplaceAll(string(src.FileContent), "</", `<\/`)
	attrs := src.Attrs.Without("type")
	return Replace("<style"+AttributeString(attrs, c.Attribute, true)+">"+css+"</style>", css), nil
})

// Script replaces an external script with its source.
var Script = HandlerFunc(func(src Source, c Context) (Result, error) {
	if src.FileContent == nil || src.Content != "" || src.Tag != "script" {
		return Unhandled, nil
	}
	if src.Type != "text/javascript" && src.Type != "application/javascript" {
		return Unhandled, nil
	}
	js := strings.ReplaceAll(string(src.FileContent), "</script", `<\/script`)
	return Replace("<script"+AttributeString(src.Attrs, c.Attribute, true)+">"+js+"</script>", js), nil
})

// Defaults run after the handlers passed in Options.
var Defaults = []Handler{Image, Stylesheet, Script}
