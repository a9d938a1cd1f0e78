package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/net/html"
)

// defaultISOLayout renders ISO timestamps like "05 Mar 2021 at 02:30PM".
const defaultISOLayout = "02 Jan 2006 at 03:04PM"

// excerptLength is the position the excerpt filter cuts at.
const excerptLength = 150

var (
	lastSpaceRegex = regexp.MustCompile(`((.*)\s(.*))$`)
	quotedRegex    = regexp.MustCompile(`"(.*)"`)
)

func (s *Site) funcMap() template.FuncMap {
	return template.FuncMap{
		"readableDate":         readableDate,
		"htmlDateString":       htmlDateString,
		"yearFromDate":         yearFromDate,
		"readableDateFromISO":  readableDateFromISO,
		"excerpt":              func(content any) string { return excerpt(fmt.Sprint(content)) },
		"addNbsp":              addNbsp,
		"getWebmentionsForUrl": getWebmentionsForUrl,
		"webmentionsByType":    webmentionsByType,
		"size":                 size,
		"emojiReadTime":        s.emojiReadTime,
		"groupByYear":          groupByYear,
		"image":                s.imageShortcode,
		"toc":                  s.toc,
		"absoluteUrl":          s.absoluteUrl,
		"safeHTML": func(x any) template.HTML {
			if x == nil {
				return ""
			}
			return template.HTML(fmt.Sprint(x))
		},
	}
}

func readableDate(t time.Time) string {
	return t.UTC().Format("Jan 2006")
}

func htmlDateString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func yearFromDate(t time.Time) int {
	return t.UTC().Year()
}

// readableDateFromISO formats an ISO 8601 timestamp, keeping its offset.
// An optional Go layout replaces the default one.
func readableDateFromISO(dateStr string, layout ...string) (string, error) {
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return "", err
	}
	if len(layout) > 0 && layout[0] != "" {
		return t.Format(layout[0]), nil
	}
	return t.Format(defaultISOLayout), nil
}

// excerpt strips all markup from content and cuts it at the last space
// before excerptLength characters.
func excerpt(content string) string {
	var text strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(content))
	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			if tokenizer.Err() != io.EOF {
				// keep what was collected so far
				log.Debug("excerpt: %s", tokenizer.Err())
			}
			break
		}
		if tokenType == html.TextToken {
			text.Write(tokenizer.Raw())
		}
	}

	s := text.String()
	cut := strings.LastIndex(s[:min(len(s), excerptLength+1)], " ")
	if cut < 0 {
		cut = 0
	}
	return s[:cut] + "..."
}

// addNbsp joins the last two words of a title with a non-breaking space so
// the last line never holds a single word.
func addNbsp(str string) template.HTML {
	if str == "" {
		return ""
	}
	title := lastSpaceRegex.ReplaceAllString(str, "$2&nbsp;$3")
	title = quotedRegex.ReplaceAllString(title, `\"${1}\"`)
	return template.HTML(title)
}

// getWebmentionsForUrl returns the mentions in a webmention.io feed that
// target url.
func getWebmentionsForUrl(webmentions any, url string) []any {
	feed, ok := webmentions.(map[string]any)
	if !ok {
		return nil
	}
	children, _ := feed["children"].([]any)
	return lo.Filter(children, func(entry any, _ int) bool {
		mention, ok := entry.(map[string]any)
		return ok && mention["wm-target"] == url
	})
}

// webmentionsByType keeps mentions carrying a value for mentionType, such
// as "like-of" or "in-reply-to".
func webmentionsByType(mentions []any, mentionType string) []any {
	return lo.Filter(mentions, func(entry any, _ int) bool {
		mention, ok := entry.(map[string]any)
		return ok && truthy(mention[mentionType])
	})
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	}
	return true
}

// size returns the length of a list, map or string, and 0 for nil.
func size(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String, reflect.Chan:
		return rv.Len()
	}
	return 0
}

// emojiReadTime estimates the reading time of content, e.g. "☕  3 min. read".
func (s *Site) emojiReadTime(content any) string {
	cfg := s.ReadTime
	words := max(len(strings.Fields(fmt.Sprint(content))), 1)
	minutes := int(math.Ceil(float64(words) / float64(cfg.WPM)))
	buckets := max(int(math.Round(float64(minutes)/float64(cfg.BucketSize))), 1)

	displayLabel := fmt.Sprintf("%d %s", minutes, cfg.Label)
	if cfg.ShowEmoji {
		return strings.Repeat(cfg.Emoji, buckets) + "  " + displayLabel
	}
	return displayLabel
}

// YearGroup holds the posts published in one year.
type YearGroup struct {
	Year  int
	Posts []Page
}

// groupByYear groups posts by publication year, keeping the order in which
// years first appear.
func groupByYear(posts []Page) []YearGroup {
	var groups []YearGroup
	index := make(map[int]int)
	for _, p := range posts {
		year := p.DatePublished.UTC().Year()
		i, ok := index[year]
		if !ok {
			i = len(groups)
			index[year] = i
			groups = append(groups, YearGroup{Year: year})
		}
		groups[i].Posts = append(groups[i].Posts, p)
	}
	return groups
}

// absoluteUrl resolves a site-relative path against the site URL.
func (s *Site) absoluteUrl(urlPath string) string {
	if strings.Contains(urlPath, "://") {
		return urlPath
	}
	return s.SiteUrl + strings.TrimPrefix(urlPath, "/")
}

// stripTags is used where markup must not end up in plain text fields.
func stripTags(content string) string {
	var buf bytes.Buffer
	tokenizer := html.NewTokenizer(strings.NewReader(content))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.TextToken:
			buf.Write(tokenizer.Text())
		}
	}
}
