// Package inline replaces references to local resources in HTML markup with
// self-contained elements, such as a favicon link carrying a data URI.
package inline

import "errors"

// IconType is the MIME type the favicon handler acts on.
const IconType = "image/x-icon"

// EncodingBase64 is the only encoding used in generated data URIs.
const EncodingBase64 = "base64"

// DefaultAttribute marks an element for inlining, e.g. <link rel="icon" href="/favicon.ico" inline>.
const DefaultAttribute = "inline"

// ErrMalformedSource is returned by handlers for an eligible source that
// cannot produce a valid element, such as an image without a format.
var ErrMalformedSource = errors.New("malformed inline source")

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string

	// Empty is set for attributes written without a value, like hidden.
	Empty bool
}

// Attrs is an ordered attribute list. Order is kept as written in the
// document so serialized elements are stable.
type Attrs []Attr

// Get returns the value of the first attribute called name.
func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Has reports whether an attribute called name is present.
func (a Attrs) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Without returns a copy of a with every attribute called name removed.
func (a Attrs) Without(name string) Attrs {
	out := make(Attrs, 0, len(a))
	for _, attr := range a {
		if attr.Name != name {
			out = append(out, attr)
		}
	}
	return out
}

// With returns a copy of a with attr appended after any existing attribute
// of the same name was removed.
func (a Attrs) With(attr Attr) Attrs {
	out := a.Without(attr.Name)
	return append(out, attr)
}

// Source is a snapshot of one embeddable reference found in a document.
// Handlers receive it by value and must not modify the Attrs or FileContent
// backing arrays.
type Source struct {
	// Tag is the element name, e.g. link or img.
	Tag   string
	Attrs Attrs

	// FileContent holds the bytes of the referenced file, nil when it was
	// not loaded.
	FileContent []byte

	// Content is inline content produced by an earlier step, if any.
	Content string

	// Format is the resource sub-format, e.g. x-icon or png.
	Format string

	// Type is the MIME type of the resource.
	Type string

	// Errored is set when loading the resource or an earlier handler failed.
	Errored bool

	// Path is the resolved file path, Raw the original markup occurrence.
	Path string
	Raw  string
}

// Context carries pipeline settings handlers need.
type Context struct {
	// Attribute is the prefix of pipeline-internal attributes, which never
	// appear in generated markup.
	Attribute string
}

// Kind tells whether a handler replaced a source.
type Kind int

const (
	Unchanged Kind = iota
	Replaced
)

func (k Kind) String() string {
	if k == Replaced {
		return "replaced"
	}
	return "unchanged"
}

// Result is what a handler produced for a source.
type Result struct {
	Kind Kind

	// Markup replaces the original occurrence verbatim.
	Markup string

	// Content is the inlined content, e.g. the data URI.
	Content string
}

// Unhandled is the zero Result: the source is left to later handlers.
var Unhandled = Result{Kind: Unchanged}

// Replace returns a Result substituting the occurrence with markup.
func Replace(markup, content string) Result {
	return Result{Kind: Replaced, Markup: markup, Content: content}
}
