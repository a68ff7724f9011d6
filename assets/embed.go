// Package assets holds text embedded into the binaries.
package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed rules.txt
var FS embed.FS

// readLines returns the non-empty, non-comment lines of an embedded file.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Rules returns the game rules, one per line.
func Rules() []string {
	lines, err := readLines("rules.txt")
	if err != nil {
		panic("assets: " + err.Error())
	}
	return lines
}
