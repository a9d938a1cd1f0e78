package inline

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// AttributeBlacklist lists attributes dropped in strict mode: they are
// replaced by the inlined content or meaningless once inlined.
var AttributeBlacklist = []string{
	"href",
	"rel",
	"src",
	"data",
	"xmlns",
	"xmlns:xlink",
	"version",
	"baseprofile",
}

// AttributeString renders attrs for splicing after a tag name. Attributes
// whose name starts with prefix are always skipped, and in strict mode so is
// every blacklisted name. Each attribute is written with a leading space and
// its value escaped again, since tokenizers hand out decoded values.
func AttributeString(attrs Attrs, prefix string, strict bool) string {
	var b strings.Builder
	for _, attr := range attrs {
		if strings.HasPrefix(attr.Name, prefix) {
			continue
		}
		if strict && slices.Contains(AttributeBlacklist, attr.Name) {
			continue
		}
		b.WriteString(" ")
		b.WriteString(attr.Name)
		if attr.Empty {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Value))
		b.WriteString(`"`)
	}
	return b.String()
}
