package output

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/jpalmerr/freeboost/internal/catalog"
)

// ServiceTable renders the services of one platform.
func ServiceTable(w io.Writer, services []catalog.Service) error {
	table := newTable(w)
	table.Header([]string{"ID", "Service", "Status", "Description"})

	rows := make([][]string, 0, len(services))
	for _, svc := range services {
		rows = append(rows, []string{
			string(svc.ID),
			svc.DisplayName(),
			availability(svc.Available),
			svc.Description,
		})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// PlatformTable renders platform ids, names and service counts.
func PlatformTable(w io.Writer, cat *catalog.Catalog) error {
	table := newTable(w)
	table.Header([]string{"ID", "Platform", "Services", "Available"})

	platforms := cat.Platforms()
	rows := make([][]string, 0, len(platforms))
	for _, pl := range platforms {
		services := cat.Services(pl.ID)
		available := 0
		for _, svc := range services {
			if svc.Available {
				available++
			}
		}
		rows = append(rows, []string{pl.ID, pl.Name, strconv.Itoa(len(services)), strconv.Itoa(available)})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func availability(on catalog.Flag) string {
	if on {
		return "[ON]"
	}
	return "[OFF]"
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}
