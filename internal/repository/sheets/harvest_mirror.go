package sheets

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/beeconnect/server/internal/config"
	"github.com/beeconnect/server/internal/domain/models"
)

// HarvestRange is the sheet range confirmed harvests are appended to.
const HarvestRange = "Colheitas!A:E"

// HarvestMirror appends confirmed harvests to a Google spreadsheet.
type HarvestMirror struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewHarvestMirror builds a Google Sheets backed mirror. Extra client options are
// appended after the configured credentials.
func NewHarvestMirror(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger, opts ...option.ClientOption) (*HarvestMirror, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}
	if cfg.CredentialsPath != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheetsapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &HarvestMirror{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// MirrorHarvest appends h as one row: id, apiary id, apiary name, date, kg.
func (m *HarvestMirror) MirrorHarvest(ctx context.Context, h models.Harvest) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{HarvestRow(h)}}

	call := m.service.Spreadsheets.Values.Append(m.spreadsheetID, HarvestRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append harvest %s into range %s: %w", h.ID, HarvestRange, err)
	}

	m.logger.Debug("harvest mirrored to sheet", zap.String("harvest_id", h.ID))
	return nil
}

// HarvestRow renders the spreadsheet cells of h.
func HarvestRow(h models.Harvest) []interface{} {
	return []interface{}{
		h.ID,
		h.ApiaryID,
		h.ApiaryName,
		h.Date.Format(models.InspectionDateLayout),
		strconv.FormatFloat(h.AmountKg, 'f', 2, 64),
	}
}
