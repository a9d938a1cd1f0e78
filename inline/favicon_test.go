package inline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var icon = []byte{0, 0, 1, 0}

const iconBase64 = "AAABAA=="

func TestAttributeString(t *testing.T) {
	tests := []struct {
		name     string
		attrs    Attrs
		prefix   string
		strict   bool
		expected string
	}{
		{
			name:     "empty",
			attrs:    nil,
			prefix:   "inline",
			strict:   true,
			expected: "",
		},
		{
			name:     "presence only",
			attrs:    Attrs{{Name: "hidden", Empty: true}},
			prefix:   "inline",
			strict:   true,
			expected: " hidden",
		},
		{
			name:     "strict drops blacklisted names",
			attrs:    Attrs{{Name: "alt", Value: "x"}, {Name: "src", Value: "a.png"}, {Name: "data", Value: "d"}, {Name: "xmlns:xlink", Value: "ns"}},
			prefix:   "inline",
			strict:   true,
			expected: ` alt="x"`,
		},
		{
			name:     "lenient keeps blacklisted names",
			attrs:    Attrs{{Name: "rel", Value: "icon"}, {Name: "sizes", Value: "16x16"}, {Name: "version", Value: "1.1"}},
			prefix:   "inline",
			strict:   false,
			expected: ` rel="icon" sizes="16x16" version="1.1"`,
		},
		{
			name:     "prefixed names always dropped",
			attrs:    Attrs{{Name: "inline", Empty: true}, {Name: "inline-id", Value: "1"}, {Name: "id", Value: "x"}},
			prefix:   "inline",
			strict:   false,
			expected: ` id="x"`,
		},
		{
			name:     "order is kept",
			attrs:    Attrs{{Name: "b", Value: "2"}, {Name: "a", Value: "1"}, {Name: "c", Empty: true}},
			prefix:   "inline",
			strict:   true,
			expected: ` b="2" a="1" c`,
		},
		{
			name:     "quotes are escaped",
			attrs:    Attrs{{Name: "title", Value: `say "hi"`}},
			prefix:   "inline",
			strict:   true,
			expected: ` title="say &#34;hi&#34;"`,
		},
		{
			name:     "decoded entities are escaped again",
			attrs:    Attrs{{Name: "title", Value: "&lt;b&gt; &copy; <i>"}},
			prefix:   "inline",
			strict:   true,
			expected: ` title="&amp;lt;b&amp;gt; &amp;copy; &lt;i&gt;"`,
		},
		{
			name:     "empty prefix matches everything",
			attrs:    Attrs{{Name: "alt", Value: "x"}},
			prefix:   "",
			strict:   false,
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AttributeString(tc.attrs, tc.prefix, tc.strict)
			if got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
			if again := AttributeString(tc.attrs, tc.prefix, tc.strict); again != got {
				t.Errorf("second call returned %q, first returned %q", again, got)
			}
		})
	}
}

func TestFavicon(t *testing.T) {
	c := Context{Attribute: "inline"}

	tests := []struct {
		name     string
		source   Source
		expected Result
	}{
		{
			name: "img gets data uri in src",
			source: Source{
				Tag:         "img",
				Format:      "png",
				Type:        IconType,
				FileContent: icon,
				Attrs:       Attrs{{Name: "alt", Value: "x"}, {Name: "src", Value: "old.png"}},
			},
			expected: Result{
				Kind:    Replaced,
				Markup:  `<img alt="x" src="data:image/png;base64,` + iconBase64 + `"/>`,
				Content: "data:image/png;base64," + iconBase64,
			},
		},
		{
			name: "link keeps rel and type and gets data uri in href",
			source: Source{
				Tag:         "link",
				Format:      "x-icon",
				Type:        IconType,
				FileContent: icon,
				Attrs: Attrs{
					{Name: "rel", Value: "icon"},
					{Name: "href", Value: "old.ico"},
					{Name: "type", Value: "image/x-icon"},
				},
			},
			expected: Result{
				Kind:    Replaced,
				Markup:  `<link rel="icon" type="image/x-icon" href="data:image/x-icon;base64,` + iconBase64 + `"/>`,
				Content: "data:image/x-icon;base64," + iconBase64,
			},
		},
		{
			name: "link without type attribute",
			source: Source{
				Tag:         "link",
				Format:      "x-icon",
				Type:        IconType,
				FileContent: icon,
				Attrs: Attrs{
					{Name: "rel", Value: "shortcut icon"},
					{Name: "href", Value: "/favicon.ico"},
					{Name: "inline", Empty: true},
				},
			},
			expected: Result{
				Kind:    Replaced,
				Markup:  `<link rel="shortcut icon" href="data:image/x-icon;base64,` + iconBase64 + `"/>`,
				Content: "data:image/x-icon;base64," + iconBase64,
			},
		},
		{
			name: "img drops type attribute",
			source: Source{
				Tag:         "img",
				Format:      "x-icon",
				Type:        IconType,
				FileContent: icon,
				Attrs:       Attrs{{Name: "src", Value: "favicon.ico"}, {Name: "type", Value: "image/x-icon"}, {Name: "hidden", Empty: true}},
			},
			expected: Result{
				Kind:    Replaced,
				Markup:  `<img hidden src="data:image/x-icon;base64,` + iconBase64 + `"/>`,
				Content: "data:image/x-icon;base64," + iconBase64,
			},
		},
		{
			name: "errored source filters leniently",
			source: Source{
				Tag:         "img",
				Format:      "png",
				Type:        IconType,
				FileContent: icon,
				Errored:     true,
				Attrs:       Attrs{{Name: "alt", Value: "x"}, {Name: "data", Value: "keep"}, {Name: "src", Value: "old.png"}},
			},
			expected: Result{
				Kind:    Replaced,
				Markup:  `<img alt="x" data="keep" src="data:image/png;base64,` + iconBase64 + `"/>`,
				Content: "data:image/png;base64," + iconBase64,
			},
		},
		{
			name:     "not an icon",
			source:   Source{Tag: "img", Format: "png", Type: "image/png", FileContent: icon},
			expected: Unhandled,
		},
		{
			name:     "content already set",
			source:   Source{Tag: "img", Format: "x-icon", Type: IconType, FileContent: icon, Content: "data:"},
			expected: Unhandled,
		},
		{
			name:     "file not loaded",
			source:   Source{Tag: "link", Format: "x-icon", Type: IconType},
			expected: Unhandled,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			attrs := append(Attrs(nil), tc.source.Attrs...)
			got, err := favicon(tc.source, c)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("favicon() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(attrs, tc.source.Attrs); diff != "" {
				t.Errorf("source attributes were modified (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFaviconWithoutFormat(t *testing.T) {
	_, err := favicon(Source{Tag: "link", Type: IconType, FileContent: icon}, Context{Attribute: "inline"})
	if !errors.Is(err, ErrMalformedSource) {
		t.Errorf("expected ErrMalformedSource, got %v", err)
	}
}

func BenchmarkAttributeString(b *testing.B) {
	attrs := Attrs{
		{Name: "rel", Value: "icon"},
		{Name: "sizes", Value: "32x32"},
		{Name: "href", Value: "/favicon.ico"},
		{Name: "type", Value: "image/x-icon"},
		{Name: "inline", Empty: true},
	}
	for n := 0; n < b.N; n++ {
		AttributeString(attrs, "inline", true)
	}
}
