package inline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// refAttrs maps the elements considered for inlining to the attribute
// holding their reference.
var refAttrs = map[string]string{
	"link":   "href",
	"img":    "src",
	"script": "src",
	"object": "data",
}

// Options configures an Inliner.
type Options struct {
	// FS is the root referenced files are read from.
	FS fs.FS

	// Attribute marks elements to inline. Defaults to DefaultAttribute.
	Attribute string

	// Handlers run in order before Defaults.
	Handlers []Handler

	// SwallowErrors logs failures and marks the source as errored instead
	// of failing the whole document.
	SwallowErrors bool

	// Concurrency bounds the number of sources resolved at once.
	// Defaults to runtime.NumCPU().
	Concurrency int

	Logger *zap.Logger
}

// Inliner rewrites marked references in HTML documents.
type Inliner struct {
	fsys          fs.FS
	attribute     string
	handlers      []Handler
	swallowErrors bool
	concurrency   int
	logger        *zap.Logger
}

// New creates an Inliner from opts.
func New(opts Options) *Inliner {
	in := &Inliner{
		fsys:          opts.FS,
		attribute:     opts.Attribute,
		swallowErrors: opts.SwallowErrors,
		concurrency:   opts.Concurrency,
		logger:        opts.Logger,
	}
	if in.attribute == "" {
		in.attribute = DefaultAttribute
	}
	if in.concurrency <= 0 {
		in.concurrency = runtime.NumCPU()
	}
	if in.logger == nil {
		in.logger = zap.NewNop()
	}
	in.handlers = append(in.handlers, opts.Handlers...)
	in.handlers = append(in.handlers, Defaults...)
	return in
}

// segment is either markup copied through verbatim or, when source is not
// nil, an occurrence that may be replaced.
type segment struct {
	raw    []byte
	source *Source
	ref    string
}

// Inline returns markup with every marked reference replaced by the result
// of the first handler that handles it. Relative references are resolved
// against base, a directory inside the Inliner's FS.
func (in *Inliner) Inline(ctx context.Context, markup []byte, base string) ([]byte, error) {
	segments, err := in.scan(markup)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(segments))
	group, groupctx := errgroup.WithContext(ctx)
	group.SetLimit(in.concurrency)
	for i, seg := range segments {
		if seg.source == nil {
			continue
		}
		group.Go(func() error {
			result, err := in.resolve(groupctx, *seg.source, seg.ref, base)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(markup))
	for i, seg := range segments {
		if results[i].Kind == Replaced {
			out.WriteString(results[i].Markup)
			continue
		}
		out.Write(seg.raw)
	}
	return out.Bytes(), nil
}

// scan splits markup into verbatim segments and candidate occurrences.
func (in *Inliner) scan(markup []byte) ([]segment, error) {
	var segments []segment
	var plain bytes.Buffer
	flush := func() {
		if plain.Len() > 0 {
			segments = append(segments, segment{raw: bytes.Clone(plain.Bytes())})
			plain.Reset()
		}
	}

	// open holds a script occurrence waiting for its end tag.
	var open *segment
	tokenizer := html.NewTokenizer(bytes.NewReader(markup))
	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			if err := tokenizer.Err(); err != io.EOF {
				return nil, fmt.Errorf("inline: tokenizing: %w", err)
			}
			if open != nil {
				open.raw = append(open.raw, tokenizer.Raw()...)
				// unterminated script, keep it as written
				plain.Write(open.raw)
				open = nil
			} else {
				plain.Write(tokenizer.Raw())
			}
			flush()
			return segments, nil
		}
		raw := tokenizer.Raw()

		if open != nil {
			open.raw = append(open.raw, raw...)
			if tokenType == html.EndTagToken {
				if name, _ := tokenizer.TagName(); string(name) == "script" {
					open.source.Raw = string(open.raw)
					flush()
					segments = append(segments, *open)
					open = nil
				}
			}
			continue
		}

		if tokenType != html.StartTagToken && tokenType != html.SelfClosingTagToken {
			plain.Write(raw)
			continue
		}
		// TagName and TagAttr rewrite the token buffer in place
		rawTag := bytes.Clone(raw)
		name, moreAttr := tokenizer.TagName()
		refAttr, ok := refAttrs[string(name)]
		if !ok {
			plain.Write(rawTag)
			continue
		}
		src := Source{Tag: string(name)}
		for moreAttr {
			var key, val []byte
			key, val, moreAttr = tokenizer.TagAttr()
			src.Attrs = append(src.Attrs, Attr{
				Name:  string(key),
				Value: string(val),
				Empty: len(val) == 0 && !hasValue(rawTag, key),
			})
		}
		ref, hasRef := src.Attrs.Get(refAttr)
		if !hasRef || !src.Attrs.Has(in.attribute) || isRemote(ref) {
			plain.Write(rawTag)
			continue
		}
		seg := segment{raw: rawTag, source: &src, ref: ref}
		if src.Tag == "script" && tokenType == html.StartTagToken {
			open = &seg
			continue
		}
		src.Raw = string(rawTag)
		flush()
		segments = append(segments, seg)
	}
}

// resolve loads the file behind ref and runs the handler chain over it.
func (in *Inliner) resolve(ctx context.Context, src Source, ref, base string) (Result, error) {
	name := resourcePath(ref, base)
	src.Path = name
	content, err := fs.ReadFile(in.fsys, name)
	if err != nil {
		if !in.swallowErrors {
			return Unhandled, fmt.Errorf("inline: loading %s: %w", name, err)
		}
		in.logger.Warn("could not load inline source", zap.String("path", name), zap.Error(err))
		src.Errored = true
	} else {
		src.FileContent = content
		src.Type, src.Format = detectType(name, content)
	}

	c := Context{Attribute: in.attribute}
	for _, h := range in.handlers {
		result, err := h.Handle(ctx, src, c)
		if err != nil {
			if !in.swallowErrors || ctx.Err() != nil {
				return Unhandled, fmt.Errorf("inline %s: %w", name, err)
			}
			in.logger.Warn("inline handler failed", zap.String("path", name), zap.Error(err))
			src.Errored = true
			continue
		}
		if result.Kind == Replaced {
			in.logger.Debug("inlined source",
				zap.String("tag", src.Tag),
				zap.String("path", name),
				zap.String("type", src.Type),
			)
			return result, nil
		}
	}
	return Unhandled, nil
}

// resourcePath turns a document reference into a path inside the FS.
func resourcePath(ref, base string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if !strings.HasPrefix(ref, "/") {
		ref = path.Join("/", base, ref)
	}
	name := strings.TrimPrefix(path.Clean(ref), "/")
	if name == "" {
		return "."
	}
	return name
}

func isRemote(ref string) bool {
	if strings.HasPrefix(ref, "//") || strings.HasPrefix(ref, "data:") {
		return true
	}
	scheme, _, ok := strings.Cut(ref, ":")
	return ok && !strings.ContainsAny(scheme, "/?#")
}

// hasValue reports whether the first attribute called key in the raw tag
// is written with '=', telling hidden apart from hidden="". Values are
// skipped over, so text inside them never matches.
func hasValue(rawTag, key []byte) bool {
	n := len(rawTag)
	i := 1
	// tag name
	for i < n && !isSpace(rawTag[i]) && rawTag[i] != '/' && rawTag[i] != '>' {
		i++
	}
	for i < n {
		for i < n && (isSpace(rawTag[i]) || rawTag[i] == '/') {
			i++
		}
		if i >= n || rawTag[i] == '>' {
			return false
		}
		start := i
		for i < n && !isSpace(rawTag[i]) && rawTag[i] != '/' && rawTag[i] != '>' && (rawTag[i] != '=' || i == start) {
			i++
		}
		name := rawTag[start:i]
		for i < n && isSpace(rawTag[i]) {
			i++
		}
		valued := i < n && rawTag[i] == '='
		if valued {
			i++
			for i < n && isSpace(rawTag[i]) {
				i++
			}
			if i < n && (rawTag[i] == '"' || rawTag[i] == '\'') {
				quote := rawTag[i]
				i++
				for i < n && rawTag[i] != quote {
					i++
				}
				i++
			} else {
				for i < n && !isSpace(rawTag[i]) && rawTag[i] != '>' {
					i++
				}
			}
		}
		if bytes.EqualFold(name, key) {
			return valued
		}
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
