package main

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// emit routes the final url list to whichever output mode the flags
// selected. list and total are checked first since they're cheap and
// mutually informative even when a sitemap file is also requested; the
// sitemap file always gets written last if named.
func emit(sites []*url.URL, flags cliFlags) error {
	switch {
	case flags.list:
		for _, u := range sites {
			fmt.Println(u.String())
		}
	case flags.total:
		fmt.Println(len(sites))
	default:
		for _, u := range sites {
			fmt.Println(u.String())
		}
	}

	if flags.sitemapFile == "" {
		return nil
	}

	if flags.additionalDir != "" {
		if err := emptyDir(flags.additionalDir, flags.force); err != nil {
			return err
		}
	}

	return writeSitemapFile(flags.sitemapFile, sites, flags.force)
}

// writeSitemapFile truncates (or creates) sitemapPath and writes one URL per
// line. If the file already exists and force is false, the user is asked to
// confirm the overwrite on stdin.
func writeSitemapFile(sitemapPath string, sites []*url.URL, force bool) error {
	if !force {
		if _, err := os.Stat(sitemapPath); err == nil {
			ok, err := confirm(fmt.Sprintf("%q already exists. Overwrite?", sitemapPath))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("aborted: not overwriting %q", sitemapPath)
			}
		}
	}

	f, err := os.Create(sitemapPath)
	if err != nil {
		return fmt.Errorf("cannot create file %s: %w", sitemapPath, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, u := range sites {
		if _, err := fmt.Fprintln(w, u.String()); err != nil {
			return fmt.Errorf("cannot write to file %s: %w", sitemapPath, err)
		}
	}
	return w.Flush()
}

// emptyDir removes every entry directly inside dir, asking for confirmation
// first unless force is set or the directory is already empty.
func emptyDir(dir string, force bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0o755)
		}
		return fmt.Errorf("cannot read directory %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return nil
	}

	if !force {
		ok, err := confirm(fmt.Sprintf("%q is not empty. Empty it?", dir))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("aborted: not emptying %q", dir)
		}
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("cannot remove %s: %w", filepath.Join(dir, entry.Name()), err)
		}
	}
	return nil
}

func confirm(prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
