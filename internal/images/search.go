package images

import (
	"errors"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
)

var extPattern = regexp.MustCompile(`\.\w+$`)

// Matches maps each logical name to the files found for it, in search order.
type Matches map[string][]string

// FindMatches walks root recursively and collects files whose whole name
// matches one of names, case-insensitively. With explicitSuffix the name
// must already include its extension; otherwise names are stems and any
// ".<word>" suffix is accepted. Every name is present in the result, with
// an empty slice when nothing matched. A missing root yields no matches.
func FindMatches(root string, names []string, explicitSuffix bool) (Matches, error) {
	out := make(Matches, len(names))
	if len(names) == 0 {
		return out, nil
	}

	byFold := make(map[string][]string, len(names))
	alts := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := out[name]; ok {
			continue
		}
		out[name] = []string{}
		key := strings.ToLower(name)
		if _, ok := byFold[key]; !ok {
			alts = append(alts, regexp.QuoteMeta(name))
		}
		byFold[key] = append(byFold[key], name)
	}

	expr := `(?i)^(` + strings.Join(alts, "|") + `)`
	if !explicitSuffix {
		expr += `\.\w+`
	}
	expr += `$`
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		m := pattern.FindStringSubmatch(d.Name())
		if m == nil {
			return nil
		}
		for _, name := range byFold[strings.ToLower(m[1])] {
			out[name] = append(out[name], path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return out, nil
}

// MergeAcrossDirectories runs FindMatches over dirs in priority order and
// concatenates the results per name, first directory first.
func MergeAcrossDirectories(dirs []string, names []string, explicitSuffix bool) (Matches, error) {
	merged := make(Matches, len(names))
	for _, name := range names {
		merged[name] = []string{}
	}
	for _, dir := range dirs {
		found, err := FindMatches(dir, names, explicitSuffix)
		if err != nil {
			return nil, err
		}
		for name, paths := range found {
			merged[name] = append(merged[name], paths...)
		}
	}
	return merged, nil
}
