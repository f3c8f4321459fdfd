package gsheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sammcj/mcp-gsheets/internal/sheetdata"
	"github.com/sammcj/mcp-gsheets/internal/utils/httpclient"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	DefaultRateLimit   = 60 // requests per minute, shared by Sheets and Drive calls
	RateLimitEnvVar    = "SHEETS_API_RATE_LIMIT"
	HTTPTimeoutEnvVar  = "SHEETS_HTTP_TIMEOUT"
	DefaultHTTPTimeout = 60 * time.Second

	rateLimitBurst = 2

	spreadsheetFields = "spreadsheetId,spreadsheetUrl,properties.title," +
		"sheets.properties(sheetId,title,index,gridProperties)"
	gridFields = "sheets.data(startRow,startColumn,rowData.values(effectiveValue,formattedValue,hyperlink))"
	fileFields = "createdTime,modifiedTime,lastModifyingUser(displayName,emailAddress)"
)

// ClientConfig controls the outbound behaviour of a Client
type ClientConfig struct {
	RateLimit   int // requests per minute
	HTTPTimeout time.Duration
}

// Client reads spreadsheets through the Sheets and Drive APIs.
// It implements sheetdata.Source.
type Client struct {
	sheets  *sheets.Service
	drive   *drive.Service
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewClient creates a Client authenticated as the given service account
func NewClient(ctx context.Context, account *ServiceAccount, cfg ClientConfig, logger *logrus.Logger) (*Client, error) {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	base := httpclient.New(cfg.HTTPTimeout, logger)
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, base)
	authClient := account.JWTConfig().Client(authCtx)
	authClient.Timeout = cfg.HTTPTimeout

	return newClient(ctx, authClient, cfg.RateLimit, logger)
}

func newClient(ctx context.Context, httpClient *http.Client, perMinute int, logger *logrus.Logger, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Client{
		sheets:  sheetsService,
		drive:   driveService,
		limiter: rate.NewLimiter(rate.Limit(perMinute)/60, rateLimitBurst), // Convert per-minute to per-second
		logger:  logger,
	}, nil
}

// LoadSpreadsheet fetches spreadsheet properties and file metadata in parallel.
// File metadata is optional: if Drive cannot supply it the fields are left blank.
func (c *Client) LoadSpreadsheet(ctx context.Context, id string) (*sheetdata.Spreadsheet, error) {
	var (
		spreadsheet *sheets.Spreadsheet
		file        *drive.File
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.wait(gctx); err != nil {
			return err
		}
		var err error
		spreadsheet, err = c.sheets.Spreadsheets.Get(id).
			Fields(googleapi.Field(spreadsheetFields)).
			Context(gctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to get spreadsheet %s: %w", id, err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.wait(gctx); err != nil {
			return nil
		}
		f, err := c.drive.Files.Get(id).
			Fields(googleapi.Field(fileFields)).
			SupportsAllDrives(true).
			Context(gctx).
			Do()
		if err != nil {
			c.logger.WithError(err).WithField("spreadsheet_id", id).Debug("File metadata unavailable")
			return nil
		}
		file = f
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return convertSpreadsheet(id, spreadsheet, file), nil
}

// LoadGrid fetches every cell of one worksheet with effective value, formatted value and hyperlink
func (c *Client) LoadGrid(ctx context.Context, id string, worksheet sheetdata.Worksheet) (sheetdata.Grid, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.sheets.Spreadsheets.Get(id).
		Ranges(quoteSheetTitle(worksheet.Title)).
		IncludeGridData(true).
		Fields(googleapi.Field(gridFields)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get grid data for '%s': %w", worksheet.Title, err)
	}

	var sheet *sheets.Sheet
	if len(resp.Sheets) > 0 {
		sheet = resp.Sheets[0]
	}
	return newSheetGrid(worksheet, sheet), nil
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait failed: %w", err)
	}
	return nil
}

func convertSpreadsheet(id string, s *sheets.Spreadsheet, file *drive.File) *sheetdata.Spreadsheet {
	out := &sheetdata.Spreadsheet{
		ID:  s.SpreadsheetId,
		URL: s.SpreadsheetUrl,
	}
	if out.ID == "" {
		out.ID = id
	}
	if s.Properties != nil {
		out.Title = s.Properties.Title
	}

	for _, sheet := range s.Sheets {
		if sheet == nil || sheet.Properties == nil {
			continue
		}
		p := sheet.Properties
		ws := sheetdata.Worksheet{
			SheetID: p.SheetId,
			Title:   p.Title,
			Index:   int(p.Index),
		}
		if gp := p.GridProperties; gp != nil {
			ws.GridProperties = sheetdata.GridProperties{
				RowCount:          int(gp.RowCount),
				ColumnCount:       int(gp.ColumnCount),
				FrozenRowCount:    int(gp.FrozenRowCount),
				FrozenColumnCount: int(gp.FrozenColumnCount),
				HideGridlines:     gp.HideGridlines,
			}
		}
		out.Worksheets = append(out.Worksheets, ws)
	}

	if file != nil {
		out.CreatedTime = file.CreatedTime
		out.ModifiedTime = file.ModifiedTime
		if u := file.LastModifyingUser; u != nil {
			out.LastModifyingUser = u.DisplayName
			if out.LastModifyingUser == "" {
				out.LastModifyingUser = u.EmailAddress
			}
		}
	}

	return out
}

// quoteSheetTitle renders a worksheet title as an A1 range covering the whole sheet
func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
