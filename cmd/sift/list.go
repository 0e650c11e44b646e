package main

import (
	"fmt"

	"github.com/fwojciec/sift"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
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
		fmt.Fprintln(deps.Stdout, "No datasets found. Use 'sift crawl URL' to create one.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Domain", "Crawled", "Pages", "Words", "Size (MB)"})
	var pages, words int
	for _, ds := range datasets {
		t.AppendRow(table.Row{
			ds.Domain,
			ds.CrawledAt.Format("2006-01-02 15:04:05"),
			ds.PagesCount,
			ds.WordsCount,
			fmt.Sprintf("%.2f", ds.FileSizeMB()),
		})
		pages += ds.PagesCount
		words += ds.WordsCount
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d datasets", len(datasets)), "", pages, words, ""})
	t.Render()
	return nil
}
