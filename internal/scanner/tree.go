package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	branch     = "├── "
	lastBranch = "└── "
	pipe       = "│   "
	blank      = "    "
)

// render draws the filtered tree below root. It walks independently of
// collect; only the deny-lists are applied, so non-code files still show.
func (s *Scanner) render(root string) (string, error) {
	top, err := s.open(root, 0, "")
	if err != nil {
		return "", err
	}
	top.entries = visible(top.entries)

	var b strings.Builder
	stack := []*frame{top}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		if cur.next >= len(cur.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := cur.entries[cur.next]
		cur.next++
		last := cur.next == len(cur.entries)

		connector, cont := branch, pipe
		if last {
			connector, cont = lastBranch, blank
		}
		b.WriteString(cur.prefix)
		b.WriteString(connector)
		b.WriteString(entry.Name())
		b.WriteByte('\n')

		if entry.IsDir() {
			child, err := s.open(filepath.Join(cur.path, entry.Name()), cur.depth+1, cur.prefix+cont)
			if err != nil {
				return "", err
			}
			child.entries = visible(child.entries)
			stack = append(stack, child)
		}
	}
	return b.String(), nil
}

func visible(entries []os.FileInfo) []os.FileInfo {
	out := entries[:0]
	for _, e := range entries {
		if ignoredDirs[e.Name()] || ignoredFiles[e.Name()] {
			continue
		}
		out = append(out, e)
	}
	return out
}
