package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"
)

var errUsage = errors.New("usage")

const usage = `Inkpot - a static blog generator that inlines its own assets

Usage: inkpot [OPTIONS] <COMMAND>

Commands:
	build	Deletes the output directory if there is one and builds the site
	serve	Builds the site, rebuilds it on change and serves it on http://localhost:8080
	watch	Builds the site and rebuilds it on change
	new	Creates a new site structure in the given directory

Options:
	-r, --root <ROOT> Directory to use as root of project (default: .)
	-c, --config <CONFIG> Path to configuration file (default: config.toml)
	-o, --out <OUT> Output directory (default: build/)
	-p, --port <PORT> Port to listen on for serve (default: 8080)

Set INKPOT_ENV=development (in the environment or a .env file) to build drafts,
log debug output and keep building when an asset cannot be inlined.
`

type options struct {
	rootPath   string
	configFile string
	outDir     string
	port       int
	command    string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	opts := options{
		configFile: "config.toml",
		outDir:     "build/",
		port:       8080,
	}

	fs := flag.NewFlagSet("inkpot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.StringVarP(&opts.rootPath, "root", "r", opts.rootPath, "")
	fs.StringVarP(&opts.configFile, "config", "c", opts.configFile, "")
	fs.StringVarP(&opts.outDir, "out", "o", opts.outDir, "")
	fs.IntVarP(&opts.port, "port", "p", opts.port, "")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if fs.NArg() != 1 {
		return opts, errUsage
	}
	opts.command = fs.Arg(0)
	switch opts.command {
	case "build", "serve", "watch", "new":
	default:
		return opts, errUsage
	}

	// ensure rootPath has a trailing slash
	if opts.rootPath != "" && !strings.HasSuffix(opts.rootPath, "/") {
		opts.rootPath += "/"
	}
	return opts, nil
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
		case errors.Is(err, errUsage):
			fmt.Print(usage)
		default:
			os.Exit(2)
		}
		return
	}

	if opts.command == "new" {
		if err := createDirectoryStructure(opts.rootPath); err != nil {
			log.Fatal("Error creating site structure: %s", err)
		}
		return
	}

	dev, err := loadEnv(opts.rootPath)
	if err != nil {
		log.Fatal("Error reading .env file: %s", err)
	}
	log.SetDebug(dev)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, dev); err != nil {
		log.Fatal("%s", err)
	}
}

func run(ctx context.Context, opts options, dev bool) error {
	if opts.command == "build" {
		if err := os.RemoveAll(opts.outDir); err != nil {
			return err
		}
	}

	site, err := buildSite(ctx, opts.rootPath, opts.configFile, opts.outDir, dev)
	if err != nil {
		return err
	}
	if opts.command == "build" {
		return nil
	}

	rebuild := func() {
		if _, err := buildSite(ctx, opts.rootPath, opts.configFile, opts.outDir, dev); err != nil {
			log.Err("Error rebuilding site: %s", err)
		}
	}

	group, groupctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return watchDirs(groupctx, append(site.watchTargets(), opts.rootPath+opts.configFile), rebuild)
	})
	if opts.command == "serve" {
		group.Go(func() error {
			return serve(groupctx, fmt.Sprintf("localhost:%d", opts.port), opts.outDir)
		})
	}
	return group.Wait()
}

func createDirectoryStructure(rootPath string) error {
	for _, dir := range []string{"content/posts", "templates", "public", "_data"} {
		if err := os.MkdirAll(rootPath+dir, 0755); err != nil {
			return err
		}
	}

	files := []struct {
		name    string
		content string
	}{
		{"config.toml", "url = \"http://localhost:8080\"\ntitle = \"My website\"\n"},
		{"templates/default.html", "<!DOCTYPE html>\n<head>\n\t<title>{{ .Title }}</title>\n</head>\n<body>\n{{ .Content }}\n</body>\n</html>\n"},
		{"templates/post.html", "<!DOCTYPE html>\n<head>\n\t<title>{{ .Title }}</title>\n</head>\n<body>\n<h1>{{ .Title }}</h1>\n<p>{{ readableDate .Page.DatePublished }} {{ emojiReadTime .Content }}</p>\n{{ toc .Content }}\n{{ .Content }}\n</body>\n</html>\n"},
		{"content/index.md", "+++\ntitle = \"Inkpot!\"\n+++\n\nWelcome to my website.\n"},
	}
	for _, f := range files {
		if _, err := os.Stat(rootPath + f.name); err == nil {
			return fmt.Errorf("%s: %w", rootPath+f.name, os.ErrExist)
		}
		if err := os.WriteFile(rootPath+f.name, []byte(f.content), 0644); err != nil {
			return err
		}
	}

	return nil
}
