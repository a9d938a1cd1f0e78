package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/natefinch/atomic"
)

// watchDirs calls cb whenever a file below one of dirs changes, at most
// once per second, until ctx is done.
func watchDirs(ctx context.Context, dirs []string, cb func()) error {
	// Create new watcher.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, p := range dirs {
		if err := filepath.WalkDir(p, func(f string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && f != p {
				return nil
			}

			return watcher.Add(f)
		}); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug("Not watching %s: %s", p, err)
				continue
			}
			return err
		}
	}

	var triggered time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error: %s", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if time.Since(triggered) > 1*time.Second {
				time.Sleep(100 * time.Millisecond)
				triggered = time.Now()
				log.Debug("Change detected in %s", event.Name)
				cb()
			}
		}
	}
}

func copyFile(src string, d fs.DirEntry, dest string) error {
	// if it's a dir, just re-create it in build/
	if d.IsDir() {
		err := os.MkdirAll(dest, 0755)
		if err != nil && !errors.Is(err, os.ErrExist) {
			return err
		}

		return nil
	}

	// open source file
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	// copy src content into dest content
	return atomic.WriteFile(dest, in)
}

func copyDirRecursively(src string, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		return copyFile(path, d, filepath.Join(dst, rel))
	})
}

// copyStatic copies public/ into the root of the output directory and every
// passthrough path to the same place in the output directory.
func (s *Site) copyStatic() error {
	defer measure("copyStatic")()

	public := s.RootDir + "public"
	if _, err := os.Stat(public); err == nil {
		if err := copyDirRecursively(public, s.OutDir); err != nil {
			return err
		}
	}

	for _, pattern := range s.Passthrough {
		matches, err := filepath.Glob(s.RootDir + strings.TrimSuffix(pattern, "/"))
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			log.Debug("Passthrough %s matched nothing", pattern)
		}
		for _, match := range matches {
			rel := strings.TrimPrefix(match, s.RootDir)
			if err := copyDirRecursively(match, filepath.Join(s.OutDir, rel)); err != nil {
				return err
			}
		}
	}

	return nil
}

// overlayFS opens a file from the first file system that has it.
type overlayFS []fs.FS

func (o overlayFS) Open(name string) (fs.File, error) {
	for _, fsys := range o {
		f, err := fsys.Open(name)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// staticFS is where inlined resources are read from: public/ first, then
// the site root.
func (s *Site) staticFS() fs.FS {
	root := s.RootDir
	if root == "" {
		root = "."
	}
	return overlayFS{
		os.DirFS(filepath.Join(root, "public")),
		os.DirFS(root),
	}
}

// watchTargets lists the directories whose changes trigger a rebuild.
func (s *Site) watchTargets() []string {
	dirs := []string{
		s.RootDir + "content",
		s.RootDir + "templates",
		s.RootDir + "_data",
		s.RootDir + "public",
	}
	for _, dir := range s.Watch {
		dirs = append(dirs, s.RootDir+dir)
	}
	return dirs
}
