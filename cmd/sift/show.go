package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/fwojciec/sift"
	"github.com/fwojciec/sift/crawl"
	"github.com/fwojciec/sift/fs"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	datasets, err := deps.Datasets.FindDatasets(deps.Ctx, sift.DatasetFilter{Domain: &c.Domain, Latest: true})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	if len(datasets) == 0 {
		fmt.Fprintf(deps.Stderr, "error: no dataset for %q. Use 'sift list' to see available datasets.\n", c.Domain)
		return sift.Errorf(sift.ENOTFOUND, "no dataset for %q", c.Domain)
	}
	ds := datasets[0]

	stats, err := deps.Datasets.LoadStats(deps.Ctx, ds)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	renderStats(deps, ds, stats)

	if c.Export == "" {
		return nil
	}
	pages, err := deps.Datasets.LoadPages(deps.Ctx, []*sift.Dataset{ds})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	n, err := fs.NewMarkdownExporter(c.Export).Export(deps.Ctx, pages)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sift.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Exported %d pages to %s\n", n, c.Export)
	return nil
}

func renderStats(deps *Dependencies, ds *sift.Dataset, stats *sift.CrawlStats) {
	t := table.NewWriter()
	t.SetOutputMirror(deps.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(ds.Domain)

	t.AppendRows([]table.Row{
		{"Run ID", stats.RunID},
		{"Start URL", stats.StartURL},
		{"Started", stats.StartTime.Format("2006-01-02 15:04:05 MST")},
		{"Duration", fmt.Sprintf("%.1fs (%s)", stats.DurationSeconds, crawl.FormatRate(stats.PagesCrawled, stats.DurationSeconds))},
		{"Strategy", stats.Strategy},
		{"Pages crawled", stats.PagesCrawled},
		{"Pages failed", stats.PagesFailed},
		{"Words", stats.TotalWords},
		{"Pages file", fmt.Sprintf("%s (%s)", ds.PagesFile, crawl.FormatBytes(ds.FileSize))},
	})
	t.AppendSeparator()

	p := stats.Policy
	t.AppendRows([]table.Row{
		{"Max pages", p.MaxPages},
		{"Max depth", p.MaxDepth},
		{"Workers", p.Workers},
		{"Delay", fmt.Sprintf("%.2fs", p.DelaySeconds)},
		{"Timeout", fmt.Sprintf("%.0fs", p.TimeoutSeconds)},
		{"Respect robots", p.RespectRobots},
	})

	if est := stats.Estimate; est != nil {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Estimated pages", est.EstimatedPages},
			{"Pages sampled", est.PagesSampled},
			{"Sitemap URLs", est.SitemapURLs},
		})
	}

	if len(stats.FailureReasons) > 0 {
		t.AppendSeparator()
		for _, reason := range slices.Sorted(maps.Keys(stats.FailureReasons)) {
			t.AppendRow(table.Row{"Failed: " + reason, stats.FailureReasons[reason]})
		}
	}
	t.Render()
}
