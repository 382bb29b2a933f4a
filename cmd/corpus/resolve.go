package main

import (
	"fmt"

	"github.com/fwojciec/corpus"
)

// Run executes the resolve command. Every identifier is attempted; the
// command fails if any of them could not be resolved.
func (c *ResolveCmd) Run(deps *Dependencies) error {
	var failed int
	for _, id := range c.IDs {
		url, err := deps.Registry.ResolveID(id)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s: %s\n", id, corpus.ErrorMessage(err))
			failed++
			continue
		}
		fmt.Fprintln(deps.Stdout, url)
	}

	if failed > 0 {
		return corpus.Errorf(corpus.EINVALID, "%d of %d items could not be resolved", failed, len(c.IDs))
	}
	return nil
}
