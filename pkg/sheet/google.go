package sheet

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Exporter pushes tabular rows to a remote spreadsheet.
type Exporter interface {
	AppendTable(ctx context.Context, spreadsheetId string, table Table) error
}

type GoogleConfig struct {
	AccessToken   string `koanf:"accessToken"`
	SpreadsheetId string `koanf:"spreadsheetId"`
}

// GoogleExporter appends rows to a Google spreadsheet through the Sheets API.
type GoogleExporter struct {
	token oauth2.TokenSource
	opts  []option.ClientOption
}

func NewGoogleExporter(cfg GoogleConfig, opts ...option.ClientOption) *GoogleExporter {
	return &GoogleExporter{
		token: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken}),
		opts:  opts,
	}
}

func (e *GoogleExporter) AppendTable(ctx context.Context, spreadsheetId string, table Table) error {
	opts := append([]option.ClientOption{option.WithTokenSource(e.token)}, e.opts...)
	service, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		err := fmt.Errorf("unable to create Google Sheets client: %w", err)
		log.Error(err)
		return err
	}

	values := make([][]interface{}, 0, len(table.Rows)+1)
	header := []interface{}{"Name", "Category"}
	for _, col := range table.Columns {
		header = append(header, col)
	}
	values = append(values, header)
	for _, row := range table.Rows {
		cells := []interface{}{row.Name, row.Category}
		for _, v := range row.Values {
			cells = append(cells, v)
		}
		values = append(values, cells)
	}

	_, err = service.Spreadsheets.Values.
		Append(spreadsheetId, "A1", &gsheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		err := fmt.Errorf("unable to append rows to spreadsheet %s: %w", spreadsheetId, err)
		log.Error(err)
		return err
	}
	return nil
}
