package main

import (
	"bytes"
	"html"
	"html/template"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"
)

// Heading is a heading with an id found in rendered content.
type Heading struct {
	ID    string
	Title string
	Level int

	Subheadings []Heading
}

// headingLevel returns 1 to 6 for h1 to h6, 0 for anything else.
func headingLevel(name []byte) int {
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	return 0
}

// htmlHeadings returns the headings between minLevel and maxLevel that have
// an id, in document order.
func htmlHeadings(r io.Reader, minLevel, maxLevel int) ([]Heading, error) {
	var headings []Heading
	var current *Heading
	var title bytes.Buffer
	tokenizer := nethtml.NewTokenizer(r)
	for {
		tokenType := tokenizer.Next()
		// TagName rewrites the token buffer, so keep the markup first
		raw := bytes.Clone(tokenizer.Raw())
		switch tokenType {
		case nethtml.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return nil, err
			}
			return headings, nil
		case nethtml.StartTagToken:
			if current != nil {
				title.Write(raw)
				continue
			}
			name, moreAttr := tokenizer.TagName()
			level := headingLevel(name)
			if level < minLevel || level > maxLevel {
				continue
			}
			for moreAttr {
				var key, val []byte
				key, val, moreAttr = tokenizer.TagAttr()
				if string(key) == "id" && len(val) > 0 {
					current = &Heading{ID: string(val), Level: level}
					break
				}
			}
		case nethtml.TextToken, nethtml.SelfClosingTagToken:
			if current != nil {
				title.Write(raw)
			}
		case nethtml.EndTagToken:
			if current == nil {
				continue
			}
			name, _ := tokenizer.TagName()
			if headingLevel(name) != current.Level {
				title.Write(raw)
				continue
			}
			current.Title = strings.TrimSpace(title.String())
			headings = append(headings, *current)
			current = nil
			title.Reset()
		}
	}
}

// nestHeadings turns a flat heading list into a tree, placing every heading
// under the closest preceding heading of a higher level.
func nestHeadings(flat []Heading) []Heading {
	var out []Heading
	for i := 0; i < len(flat); {
		h := flat[i]
		j := i + 1
		for j < len(flat) && flat[j].Level > h.Level {
			j++
		}
		h.Subheadings = nestHeadings(flat[i+1 : j])
		out = append(out, h)
		i = j
	}
	return out
}

func writeHeadings(b *strings.Builder, headings []Heading) {
	b.WriteString("<ol>")
	for _, h := range headings {
		b.WriteString(`<li><a href="#` + html.EscapeString(h.ID) + `">` + h.Title + "</a>")
		if len(h.Subheadings) > 0 {
			writeHeadings(b, h.Subheadings)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ol>")
}

// toc renders a nested table of contents for content, or nothing when it
// has no linkable headings.
func (s *Site) toc(content template.HTML) (template.HTML, error) {
	flat, err := htmlHeadings(strings.NewReader(string(content)), s.TOC.MinLevel, s.TOC.MaxLevel)
	if err != nil {
		return "", err
	}
	if len(flat) == 0 {
		return "", nil
	}

	var b strings.Builder
	if s.TOC.Heading != "" {
		b.WriteString("<h2>" + html.EscapeString(s.TOC.Heading) + "</h2>")
	}
	b.WriteString("<" + s.TOC.Wrapper + ` class="toc">`)
	writeHeadings(&b, nestHeadings(flat))
	b.WriteString("</" + s.TOC.Wrapper + ">")
	return template.HTML(b.String()), nil
}
