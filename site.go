package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"
	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"

	"git.sr.ht/~dvko/inkpot/inline"
)

var (
	ErrTemplateNotFound      = errors.New("template not found")
	ErrMissingFrontMatterEnd = errors.New("missing closing front-matter identifier")
)

// frontMatterSize is how much of a file is read to parse its front matter.
const frontMatterSize = 8 << 10

type Site struct {
	pages  []Page
	posts  []Page
	tags   []string
	tagged map[string][]Page
	nav    []Page
	data   map[string]any

	md        goldmark.Markdown
	templates *template.Template
	inliner   *inline.Inliner
	images    sync.Map

	Title           string            `toml:"title"`
	SiteUrl         string            `toml:"url"`
	Description     string            `toml:"description"`
	Author          string            `toml:"author"`
	Language        string            `toml:"language"`
	Posts           string            `toml:"posts"`
	Passthrough     []string          `toml:"passthrough"`
	Watch           []string          `toml:"watch"`
	HighlightStyle  string            `toml:"highlight_style"`
	FeedSize        int               `toml:"feed_size"`
	InlineAttribute string            `toml:"inline_attribute"`
	Layouts         map[string]string `toml:"layouts"`
	TOC             TOCConfig         `toml:"toc"`
	ReadTime        ReadTimeConfig    `toml:"read_time"`

	RootDir string `toml:"-"`
	OutDir  string `toml:"-"`
	Dev     bool   `toml:"-"`
}

// Navigation places a page in the site navigation.
type Navigation struct {
	Key    string `toml:"key" yaml:"key"`
	Parent string `toml:"parent" yaml:"parent"`
	Order  int    `toml:"order" yaml:"order"`
}

type Page struct {
	Title       string     `toml:"title" yaml:"title"`
	Template    string     `toml:"template" yaml:"template"`
	Layout      string     `toml:"layout" yaml:"layout"`
	Description string     `toml:"description" yaml:"description"`
	Tags        []string   `toml:"tags" yaml:"tags"`
	Draft       bool       `toml:"draft" yaml:"draft"`
	Date        Date       `toml:"date" yaml:"date"`
	OutputPath  string     `toml:"permalink" yaml:"permalink"`
	Navigation  Navigation `toml:"navigation" yaml:"navigation"`

	DatePublished time.Time `toml:"-" yaml:"-"`
	DateModified  time.Time `toml:"-" yaml:"-"`
	Permalink     string    `toml:"-" yaml:"-"`
	UrlPath       string    `toml:"-" yaml:"-"`
	Filepath      string    `toml:"-" yaml:"-"`
}

// Date is a front matter date, written either as a full timestamp or as a
// plain day.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (d *Date) UnmarshalText(text []byte) error {
	value := strings.TrimSpace(string(text))
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", value)
}

// parseFilename parses the URL path and optional date component from the given file path
func parseFilename(path string, rootDir string) (string, time.Time) {
	path = strings.TrimPrefix(path, rootDir+"content/")
	path = strings.TrimSuffix(path, ".md")
	path = strings.TrimSuffix(path, ".html")
	path = strings.TrimSuffix(path, "index")

	filename := filepath.Base(path)
	if len(filename) > 11 && filename[4] == '-' && filename[7] == '-' && filename[10] == '-' {
		date, err := time.Parse("2006-01-02", filename[0:10])
		if err == nil {
			return path[0:len(path)-len(filename)] + filename[11:] + "/", date
		}
	}

	if path != "" && path[len(path)-1] != '/' {
		path += "/"
	}

	return path, time.Time{}
}

// splitFrontMatter separates TOML (+++) or YAML (---) front matter from the
// rest of a file. delim is nil when the file has no front matter.
func splitFrontMatter(content []byte) (fm []byte, body []byte, delim []byte, err error) {
	for _, delim := range [][]byte{frontMatter, yamlFrontMatter} {
		if !bytes.HasPrefix(content, delim) {
			continue
		}
		rest := content[len(delim):]
		pos := bytes.Index(rest, append([]byte("\n"), delim...))
		if pos == -1 {
			return nil, content, delim, ErrMissingFrontMatterEnd
		}
		body = rest[pos+1+len(delim):]
		body = bytes.TrimPrefix(bytes.TrimPrefix(body, []byte("\r")), []byte("\n"))
		return rest[:pos], body, delim, nil
	}
	return nil, content, nil, nil
}

func parseFrontMatter(p *Page) error {
	fh, err := os.Open(p.Filepath)
	if err != nil {
		return err
	}
	defer fh.Close()

	buf := make([]byte, frontMatterSize)
	n, err := io.ReadFull(fh, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}

	fm, _, delim, err := splitFrontMatter(buf[:n])
	if err != nil {
		return fmt.Errorf("%w in %s", err, p.Filepath)
	}

	switch {
	case bytes.Equal(delim, frontMatter):
		err = toml.Unmarshal(fm, p)
	case bytes.Equal(delim, yamlFrontMatter):
		err = yaml.Unmarshal(fm, p)
	}
	if err != nil {
		return fmt.Errorf("parsing front matter of %s: %w", p.Filepath, err)
	}
	return nil
}

// ParseContent returns the page body as HTML, rendering it as markdown
// unless the source is an HTML file.
func (p *Page) ParseContent(md goldmark.Markdown) (string, error) {
	fileContent, err := os.ReadFile(p.Filepath)
	if err != nil {
		return "", err
	}

	_, body, _, err := splitFrontMatter(fileContent)
	if err != nil {
		return "", fmt.Errorf("%w in %s", err, p.Filepath)
	}

	// If source file has HTML extension, return content directly
	if strings.HasSuffix(p.Filepath, ".html") {
		return string(body), nil
	}

	// Otherwise, parse as Markdown
	var buf2 strings.Builder
	if err := md.Convert(body, &buf2); err != nil {
		return "", err
	}
	return buf2.String(), nil
}

// dest returns the path of the output file, relative to the output directory.
func (p *Page) dest() string {
	if p.OutputPath != "" {
		return strings.TrimPrefix(p.OutputPath, "/")
	}
	return p.UrlPath + "index.html"
}

func (s *Site) isPost(p *Page) bool {
	if !p.DatePublished.IsZero() {
		return true
	}
	matched, _ := filepath.Match(s.RootDir+s.Posts, p.Filepath)
	return matched
}

// resolveTemplate picks the template for a page from its layout, if any.
func (s *Site) resolveTemplate(p *Page) {
	if p.Layout == "" {
		return
	}
	if name, ok := s.Layouts[p.Layout]; ok {
		p.Template = name
	} else if strings.HasSuffix(p.Layout, ".html") {
		p.Template = p.Layout
	} else {
		p.Template = p.Layout + ".html"
	}
}

func (s *Site) AddPageFromFile(file string) error {
	info, err := os.Stat(file)
	if err != nil {
		return err
	}

	urlPath, datePublished := parseFilename(file, s.RootDir)

	p := Page{
		Filepath:      file,
		UrlPath:       urlPath,
		DatePublished: datePublished,
		DateModified:  info.ModTime(),
		Template:      "default.html",
	}

	if err := parseFrontMatter(&p); err != nil {
		return err
	}

	if p.Draft && !s.Dev {
		log.Debug("Skipping draft %s", file)
		return nil
	}
	if !p.Date.IsZero() {
		p.DatePublished = p.Date.Time
	}
	if p.OutputPath != "" {
		p.UrlPath = strings.TrimPrefix(p.OutputPath, "/")
	}
	p.Permalink = s.SiteUrl + p.UrlPath
	s.resolveTemplate(&p)

	s.pages = append(s.pages, p)

	// every page with a date or under the posts glob is a blog post
	if s.isPost(&p) {
		s.posts = append(s.posts, p)
	}

	return nil
}

func (s *Site) readContent(dir string) error {
	defer measure("readContent")()

	// walk over files in "content" directory
	err := filepath.WalkDir(dir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(file)
		if ext != ".md" && ext != ".html" {
			return nil
		}
		return s.AddPageFromFile(file)
	})

	// sort posts by date
	sort.SliceStable(s.posts, func(i int, j int) bool {
		return s.posts[i].DatePublished.After(s.posts[j].DatePublished)
	})

	return err
}

// sourceDir is the directory of a page's source file relative to the site
// root. Relative inline references in the page resolve against it, so a
// post can inline an image stored next to its markdown file.
func (s *Site) sourceDir(p *Page) string {
	return path.Dir(filepath.ToSlash(strings.TrimPrefix(p.Filepath, s.RootDir)))
}

func (s *Site) buildPage(ctx context.Context, p *Page) error {
	content, err := p.ParseContent(s.md)
	if err != nil {
		return err
	}

	tmpl := s.templates.Lookup(p.Template)
	if tmpl == nil {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, p.Template)
	}

	description := p.Description
	if description == "" {
		description = excerpt(content)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"Page":        p,
		"Posts":       s.posts,
		"Pages":       s.pages,
		"Site":        s,
		"SiteUrl":     s.SiteUrl,
		"Title":       p.Title,
		"Description": description,
		"Content":     template.HTML(content),
		"Data":        s.data,
		"TagList":     s.tags,
		"Tagged":      s.tagged,
		"Navigation":  s.nav,
		"Dev":         s.Dev,
	}); err != nil {
		return err
	}

	dest := p.dest()
	out := buf.Bytes()
	if strings.HasSuffix(dest, ".html") && s.inliner != nil {
		out, err = s.inliner.Inline(ctx, out, s.sourceDir(p))
		if err != nil {
			return err
		}
	}

	return writeFile(filepath.Join(s.OutDir, dest), out)
}

// buildPages renders every page in parallel. A page that fails is logged and
// skipped; the error returned only reports cancellation.
func (s *Site) buildPages(ctx context.Context) error {
	defer measure("buildPages")()

	group, groupctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	for _, p := range s.pages {
		group.Go(func() error {
			if err := s.buildPage(groupctx, &p); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn("Error processing %s: %s\n", p.Filepath, err)
			}
			return nil
		})
	}
	return group.Wait()
}

// func to calculate and print execution time
func measure(name string) func() {
	start := time.Now()
	return func() {
		log.Debug("%s execution time: %v\n", name, time.Since(start))
	}
}

func newSite(rootPath, configFile, outDir string, dev bool) (*Site, error) {
	site := &Site{
		RootDir: rootPath,
		OutDir:  outDir,
		Dev:     dev,
	}

	if err := parseConfig(site, rootPath+configFile); err != nil {
		return nil, fmt.Errorf("reading configuration file at %s: %w", rootPath+configFile, err)
	}

	site.md = newMarkdown(site.HighlightStyle)

	data, err := readData(rootPath + "_data/")
	if err != nil {
		return nil, fmt.Errorf("reading _data/: %w", err)
	}
	site.data = data

	site.templates, err = template.New("").Funcs(site.funcMap()).ParseFS(os.DirFS(rootPath+"templates/"), "*.html")
	if err != nil {
		return nil, fmt.Errorf("reading templates/ directory: %w", err)
	}

	site.inliner = inline.New(inline.Options{
		FS:            site.staticFS(),
		Attribute:     site.InlineAttribute,
		Handlers:      []inline.Handler{inline.Favicon},
		SwallowErrors: dev,
		Logger:        log.Zap(),
	})

	return site, nil
}

func buildSite(ctx context.Context, rootPath string, configFile string, outDir string, dev bool) (*Site, error) {
	timeStart := time.Now()

	site, err := newSite(rootPath, configFile, outDir, dev)
	if err != nil {
		return nil, err
	}

	// read content
	if err := site.readContent(rootPath + "content/"); err != nil {
		return nil, fmt.Errorf("reading content/: %w", err)
	}
	site.collect()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	// build each individual page
	if err := site.buildPages(ctx); err != nil {
		return nil, err
	}

	// create XML sitemap
	if err := site.createSitemap(); err != nil {
		log.Warn("Error creating sitemap: %s\n", err)
	}

	// create RSS and Atom feeds
	if err := site.createRSSFeed(); err != nil {
		log.Warn("Error creating RSS feed: %s\n", err)
	}
	if err := site.createAtomFeed(); err != nil {
		log.Warn("Error creating Atom feed: %s\n", err)
	}

	// static files
	if err := site.copyStatic(); err != nil {
		return nil, fmt.Errorf("copying static files: %w", err)
	}

	log.Info("Built site containing %d pages in %d ms\n", len(site.pages), time.Since(timeStart).Milliseconds())
	return site, nil
}

// writeFile atomically replaces name with data, creating parent directories.
func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}
	return atomic.WriteFile(name, bytes.NewReader(data))
}
