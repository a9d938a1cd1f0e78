package main

import (
	_ "embed"
	"encoding/xml"
	"path/filepath"
	"strings"
	"time"
)

//go:embed sitemap.xsl
var sitemapXSL []byte

const generator = "inkpot"

// sitemapURL is a single <url> entry of the sitemap.
type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type sitemapURLSet struct {
	XMLName        xml.Name     `xml:"urlset"`
	XMLNS          string       `xml:"xmlns,attr"`
	SchemaLocation string       `xml:"xsi:schemaLocation,attr"`
	XSI            string       `xml:"xmlns:xsi,attr"`
	URLs           []sitemapURL `xml:""`
}

// sitemapURLs lists every page that is a real document. Pages written to a
// fixed file such as 404.html are left out. Posts report their publication
// date, other pages the modification time of their source.
func (s *Site) sitemapURLs() []sitemapURL {
	urls := make([]sitemapURL, 0, len(s.pages))
	for _, p := range s.pages {
		if !strings.HasSuffix(p.dest(), "index.html") {
			continue
		}
		lastMod := p.DateModified
		if !p.DatePublished.IsZero() {
			lastMod = p.DatePublished
		}
		urls = append(urls, sitemapURL{
			Loc:     p.Permalink,
			LastMod: lastMod.UTC().Format(time.RFC3339),
		})
	}
	return urls
}

func (s *Site) createSitemap() error {
	defer measure("createSitemap")()

	out, err := xml.Marshal(sitemapURLSet{
		SchemaLocation: "http://www.sitemaps.org/schemas/sitemap/0.9 http://www.sitemaps.org/schemas/sitemap/0.9/sitemap.xsd",
		XMLNS:          "http://www.sitemaps.org/schemas/sitemap/0.9",
		XSI:            "http://www.w3.org/2001/XMLSchema-instance",
		URLs:           s.sitemapURLs(),
	})
	if err != nil {
		return err
	}
	header := []byte(`<?xml version="1.0" encoding="UTF-8"?><?xml-stylesheet type="text/xsl" href="/sitemap.xsl"?>`)
	if err := writeFile(filepath.Join(s.OutDir, "sitemap.xml"), append(header, out...)); err != nil {
		return err
	}
	return writeFile(filepath.Join(s.OutDir, "sitemap.xsl"), sitemapXSL)
}

// feedPosts returns the most recent posts to put in a feed, together with
// their rendered content.
func (s *Site) feedPosts() ([]Page, []string) {
	n := min(len(s.posts), s.FeedSize)
	posts := make([]Page, 0, n)
	contents := make([]string, 0, n)
	for _, p := range s.posts[0:n] {
		pageContent, err := p.ParseContent(s.md)
		if err != nil {
			log.Warn("error parsing content of %s: %s", p.Filepath, err)
			continue
		}
		posts = append(posts, p)
		contents = append(contents, pageContent)
	}
	return posts, contents
}

func (s *Site) createRSSFeed() error {
	defer measure("createRSSFeed")()

	type Item struct {
		Title       string `xml:"title"`
		Link        string `xml:"link"`
		Description string `xml:"description"`
		PubDate     string `xml:"pubDate"`
		GUID        string `xml:"guid"`
	}

	type Channel struct {
		Title         string `xml:"title"`
		Link          string `xml:"link"`
		Description   string `xml:"description"`
		Generator     string `xml:"generator"`
		LastBuildDate string `xml:"lastBuildDate"`
		Items         []Item `xml:"item"`
	}

	type Feed struct {
		XMLName xml.Name `xml:"rss"`
		Version string   `xml:"version,attr"`
		Atom    string   `xml:"xmlns:atom,attr"`
		Channel Channel  `xml:"channel"`
	}

	posts, contents := s.feedPosts()
	items := make([]Item, 0, len(posts))
	for i, p := range posts {
		items = append(items, Item{
			Title:       p.Title,
			Link:        p.Permalink,
			Description: contents[i],
			PubDate:     p.DatePublished.Format(time.RFC1123Z),
			GUID:        p.Permalink,
		})
	}

	feed := Feed{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: Channel{
			Title:         s.Title,
			Link:          s.SiteUrl,
			Description:   s.Description,
			Generator:     generator,
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	out, err := xml.Marshal(feed)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.OutDir, "feed.xml"), append([]byte(xml.Header), out...))
}

// AtomFeed represents an atom feed (i.e. a list of posts).
type AtomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	ID      string      `xml:"id"`
	Title   string      `xml:"title"`
	Updated string      `xml:"updated"`
	Author  *AtomAuthor `xml:"author,omitempty"`
	Link    []AtomLink  `xml:"link"`
	Entry   []AtomEntry `xml:"entry"`
}

// AtomAuthor represents the author of a feed.
type AtomAuthor struct {
	Name string `xml:"name"`
}

// AtomEntry represents an atom entry (i.e. a post).
type AtomEntry struct {
	ID        string     `xml:"id"`
	Title     string     `xml:"title"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
	Link      []AtomLink `xml:"link"`
	Summary   AtomText   `xml:"summary"`
	Content   AtomCDATA  `xml:"content"`
}

// AtomLink represents an atom link.
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// AtomText represents some text in atom.
type AtomText struct {
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// AtomCDATA represents CDATA in atom.
type AtomCDATA struct {
	Type    string `xml:"type,attr"`
	Content string `xml:",cdata"`
}

func (s *Site) createAtomFeed() error {
	defer measure("createAtomFeed")()

	posts, contents := s.feedPosts()
	feed := AtomFeed{
		Xmlns: "http://www.w3.org/2005/Atom",
		ID:    s.SiteUrl,
		Title: s.Title,
		Link: []AtomLink{
			{Href: s.SiteUrl + "atom.xml", Rel: "self"},
			{Href: s.SiteUrl, Rel: "alternate"},
		},
		Entry: make([]AtomEntry, 0, len(posts)),
	}
	if s.Author != "" {
		feed.Author = &AtomAuthor{Name: s.Author}
	}

	var updated time.Time
	for i, p := range posts {
		summary := p.Description
		if summary == "" {
			summary = excerpt(contents[i])
		}
		if p.DateModified.After(updated) {
			updated = p.DateModified
		}
		feed.Entry = append(feed.Entry, AtomEntry{
			ID:        p.Permalink,
			Title:     p.Title,
			Published: p.DatePublished.UTC().Format(time.RFC3339),
			Updated:   p.DateModified.UTC().Format(time.RFC3339),
			Link:      []AtomLink{{Href: p.Permalink, Rel: "alternate"}},
			Summary:   AtomText{Type: "text", Content: stripTags(summary)},
			Content:   AtomCDATA{Type: "html", Content: contents[i]},
		})
	}
	if updated.IsZero() {
		updated = time.Now()
	}
	feed.Updated = updated.UTC().Format(time.RFC3339)

	out, err := xml.Marshal(feed)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.OutDir, "atom.xml"), append([]byte(xml.Header), out...))
}
