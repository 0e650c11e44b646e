package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/sift"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Search result table layout.
const (
	titleColumnWidth   = 30
	urlColumnWidth     = 50
	previewColumnWidth = 60
	previewLength      = 160
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	mode, err := sift.ParseSearchMode(c.Mode)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	k := c.Limit
	if k <= 0 {
		k = deps.Config.Search.MaxResults
	}

	filter := sift.DatasetFilter{Latest: !c.All}
	if c.Domain != "" {
		filter.Domain = &c.Domain
	}
	datasets, err := deps.Datasets.FindDatasets(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	if len(datasets) == 0 {
		fmt.Fprintln(deps.Stderr, "error: no datasets found. Use 'sift crawl URL' to create one.")
		return sift.Errorf(sift.ENOTFOUND, "no datasets found")
	}

	pages, err := deps.Datasets.LoadPages(deps.Ctx, datasets)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	if _, err := deps.Index.Load(deps.Ctx, pages); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}

	results, err := deps.Searcher.Search(deps.Ctx, c.Query, mode, k)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(deps.Stdout, "No results for %q.\n", c.Query)
		return nil
	}

	renderResults(deps, results, c.Query, mode)
	return nil
}

func renderResults(deps *Dependencies, results []sift.SearchResult, query string, mode sift.SearchMode) {
	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = true
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: titleColumnWidth},
		{Number: 4, WidthMax: urlColumnWidth},
		{Number: 5, WidthMax: previewColumnWidth},
	})
	t.AppendHeader(table.Row{"#", "Score", "Title", "URL", "Preview"})
	for i, r := range results {
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.3f", r.Score()),
			r.SourceTitle,
			r.SourceURL,
			preview(r.Content, previewLength),
		})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d results", len(results)), fmt.Sprintf("%s: %s", mode, query)})
	t.Render()
}

// preview collapses whitespace and truncates s to n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
