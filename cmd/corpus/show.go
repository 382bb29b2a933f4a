package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/corpus"
)

// previewWords is how much text show prints without --full.
const previewWords = 50

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	url := c.Target
	if strings.Contains(c.Target, corpus.ItemSeparator) {
		var err error
		url, err = deps.Registry.ResolveID(c.Target)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", corpus.ErrorMessage(err))
			return err
		}
	}

	doc, err := deps.Documents.FindDocument(deps.Ctx, url)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", corpus.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "URL:           %s\n", doc.URL)
	fmt.Fprintf(deps.Stdout, "Title:         %s\n", doc.Title)
	fmt.Fprintf(deps.Stdout, "Source:        %s\n", doc.Source)
	fmt.Fprintf(deps.Stdout, "Fetched:       %s\n", doc.FetchedAt.Format(time.RFC3339))
	fmt.Fprintf(deps.Stdout, "Content hash:  %s\n", doc.ContentHash)
	fmt.Fprintf(deps.Stdout, "Last-Modified: %s\n", orNone(doc.LastModified))
	fmt.Fprintf(deps.Stdout, "ETag:          %s\n", orNone(doc.ETag))
	fmt.Fprintf(deps.Stdout, "Words:         %d\n", corpus.WordCount(doc.Text))
	fmt.Fprintln(deps.Stdout)

	if c.Full {
		fmt.Fprintln(deps.Stdout, doc.Text)
		return nil
	}
	words := strings.Fields(doc.Text)
	if len(words) > previewWords {
		fmt.Fprintln(deps.Stdout, strings.Join(words[:previewWords], " ")+" ...")
		return nil
	}
	fmt.Fprintln(deps.Stdout, doc.Text)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
