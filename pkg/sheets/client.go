package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Client struct {
	service *sheets.Service
}

type Config struct {
	CredentialsPath string
	CredentialsJSON []byte
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var opts []option.ClientOption

	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	} else if len(cfg.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
	} else {
		return nil, fmt.Errorf("sheets: credentials path or JSON is required")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	return &Client{
		service: service,
	}, nil
}

// ReplaceTable clears tab and writes header plus rows starting at A1
func (c *Client) ReplaceTable(ctx context.Context, spreadsheetID, tab string, header []any, rows [][]any) error {
	if c == nil || c.service == nil {
		return fmt.Errorf("sheets: service is nil")
	}
	if tab == "" {
		tab = "Sheet1"
	}

	clearRange := fmt.Sprintf("%s!A:Z", tab)
	if _, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets: clear %s: %w", clearRange, err)
	}

	values := make([][]any, 0, len(rows)+1)
	if len(header) > 0 {
		values = append(values, header)
	}
	values = append(values, rows...)
	if len(values) == 0 {
		return nil
	}

	writeRange := fmt.Sprintf("%s!A1", tab)
	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: update %s: %w", writeRange, err)
	}
	return nil
}
