package main

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ignoredTags never show up in the tag list; they group pages internally.
var ignoredTags = []string{"all", "nav", "post", "posts"}

// collect derives the tag list, the posts per tag and the navigation from
// the pages read so far.
func (s *Site) collect() {
	s.tags = tagList(s.pages)
	s.tagged = make(map[string][]Page, len(s.tags))
	for _, p := range s.posts {
		for _, tag := range lo.Uniq(lo.Map(p.Tags, func(tag string, _ int) string { return strings.ToLower(tag) })) {
			if lo.Contains(ignoredTags, tag) {
				continue
			}
			s.tagged[tag] = append(s.tagged[tag], p)
		}
	}
	s.nav = navigation(s.pages)
}

// tagList returns the lowercased tags of all pages, sorted and without
// duplicates.
func tagList(pages []Page) []string {
	tags := lo.FlatMap(pages, func(p Page, _ int) []string {
		return lo.Map(p.Tags, func(tag string, _ int) string { return strings.ToLower(tag) })
	})
	tags = lo.Filter(lo.Uniq(tags), func(tag string, _ int) bool {
		return !lo.Contains(ignoredTags, tag)
	})
	sort.Strings(tags)
	return tags
}

// navigation returns the pages with a navigation key, ordered by their
// order field and then by key.
func navigation(pages []Page) []Page {
	nav := lo.Filter(pages, func(p Page, _ int) bool {
		return p.Navigation.Key != ""
	})
	sort.SliceStable(nav, func(i, j int) bool {
		if nav[i].Navigation.Order != nav[j].Navigation.Order {
			return nav[i].Navigation.Order < nav[j].Navigation.Order
		}
		return nav[i].Navigation.Key < nav[j].Navigation.Key
	})
	return nav
}
