package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"git.sr.ht/~dvko/inkpot/inline"
)

// envVar switches development mode when set to "development".
const envVar = "INKPOT_ENV"

type TOCConfig struct {
	Heading  string `toml:"heading"`
	Wrapper  string `toml:"wrapper"`
	MinLevel int    `toml:"min_level"`
	MaxLevel int    `toml:"max_level"`
}

type ReadTimeConfig struct {
	WPM        int    `toml:"wpm"`
	ShowEmoji  bool   `toml:"show_emoji"`
	Emoji      string `toml:"emoji"`
	Label      string `toml:"label"`
	BucketSize int    `toml:"bucket_size"`
}

// setDefaults fills in everything a config file may leave out.
func (s *Site) setDefaults() {
	s.Posts = "content/posts/*"
	s.HighlightStyle = "monokai"
	s.FeedSize = 10
	s.InlineAttribute = inline.DefaultAttribute
	s.Layouts = map[string]string{"post": "post.html"}
	s.TOC = TOCConfig{
		Heading:  "Contents",
		Wrapper:  "div",
		MinLevel: 2,
		MaxLevel: 4,
	}
	s.ReadTime = ReadTimeConfig{
		WPM:        400,
		ShowEmoji:  true,
		Emoji:      "☕",
		Label:      "min. read",
		BucketSize: 5,
	}
}

func parseConfig(s *Site, file string) error {
	s.setDefaults()
	_, err := toml.DecodeFile(file, s)
	if err != nil {
		return err
	}

	// ensure site url has trailing slash
	if !strings.HasSuffix(s.SiteUrl, "/") {
		s.SiteUrl += "/"
	}
	if s.TOC.MinLevel < 1 {
		s.TOC.MinLevel = 1
	}
	if s.TOC.MaxLevel > 6 || s.TOC.MaxLevel < s.TOC.MinLevel {
		s.TOC.MaxLevel = 6
	}
	if s.ReadTime.WPM <= 0 {
		s.ReadTime.WPM = 400
	}
	if s.ReadTime.BucketSize <= 0 {
		s.ReadTime.BucketSize = 5
	}

	return nil
}

// loadEnv reads a .env file in the site root, if there is one, and reports
// whether development mode is on.
func loadEnv(rootPath string) (bool, error) {
	err := godotenv.Load(rootPath + ".env")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	return os.Getenv(envVar) == "development", nil
}
