package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/taxvault/internal/client/client"
	"github.com/dmitrijs2005/taxvault/internal/export"
	"github.com/dmitrijs2005/taxvault/internal/report"
)

func parseYear(args []string, usage string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("%w: %s", errUsage, usage)
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", args[0])
	}
	return year, nil
}

func (a *App) export(ctx context.Context, args []string) error {
	year, err := parseYear(args, "export <year> [dest|-]")
	if err != nil {
		return err
	}

	d, err := a.api.ExportTaxYear(ctx, year)
	if err != nil {
		return err
	}

	dest := ""
	if len(args) > 1 {
		dest = args[1]
	}
	return a.save(d, dest, export.ArchiveName(year))
}

func (a *App) summary(ctx context.Context, args []string) error {
	year, err := parseYear(args, "summary <year>")
	if err != nil {
		return err
	}

	s, err := a.api.Summary(ctx, year)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Jahr %d\n", s.Year)
	fmt.Fprintf(a.out, "Gesamteinkommen: %s\n", report.FormatCurrency(s.TotalIncome))
	fmt.Fprintf(a.out, "Gesamtausgaben: %s\n", report.FormatCurrency(s.TotalExpenses))
	fmt.Fprintf(a.out, "Nettoeinkommen: %s\n", report.FormatCurrency(s.NetIncome))
	return nil
}

func (a *App) monthly(ctx context.Context, args []string) error {
	year, err := parseYear(args, "monthly <year>")
	if err != nil {
		return err
	}

	months, err := a.api.Monthly(ctx, year)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Monat\tEinkommen\tAusgaben\tNetto\t")
	for _, m := range months {
		fmt.Fprintf(tw, "%02d\t%s\t%s\t%s\t\n", m.Month,
			report.FormatCurrency(m.Income), report.FormatCurrency(m.Expenses), report.FormatCurrency(m.Net))
	}
	return tw.Flush()
}

func (a *App) recent(ctx context.Context, args []string) error {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid limit %q", args[0])
		}
		limit = n
	}

	entries, err := a.api.Recent(ctx, limit)
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Fprintf(a.out, "%s  %-7s  %12s  %s%s\n", e.InvoiceDate, e.Type,
			report.FormatCurrency(e.Amount), e.Description, attachedMark(e))
	}
	return nil
}

func attachedMark(e client.Entry) string {
	if e.FileURL == "" {
		return ""
	}
	return " [Anhang]"
}

func (a *App) attach(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: attach <income|expense> <id> <file-url>", errUsage)
	}
	kind, id, ref := args[0], args[1], args[2]
	if kind != "income" && kind != "expense" {
		return fmt.Errorf("%w: kind must be income or expense", errUsage)
	}

	// имя и тип берём из списка файлов, если файл там есть
	att := client.Attachment{FileURL: ref}
	if files, err := a.api.ListFiles(ctx); err == nil {
		for _, f := range files {
			if f.URL == ref {
				att.FileName, att.FileType = f.OriginalName, f.FileType
				break
			}
		}
	}

	if err := a.api.Attach(ctx, kind, id, att); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Attached %s to %s %s\n", ref, kind, id)
	return nil
}
