package fs

import (
	"bufio"
	"os"
	"strings"

	"github.com/fwojciec/corpus"
)

// ReadItems returns the non-empty trimmed lines of the file at path, in
// order. Lines are returned as is; parsing them is left to the crawl so
// that malformed lines still occupy their place in the list.
func ReadItems(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, corpus.Errorf(corpus.EINVALID, "open items file: %v", err)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
