// Package sheets mirrors the reservations collection into a Google
// spreadsheet for the shuttle managers. The mirror is observational: it never
// feeds back into the storage chain.
package sheets

import (
	"context"
	"fmt"
	"os"

	"grislo/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const reservationsRange = "Reservations!A2"

type Service struct {
	service       *sheets.Service
	spreadsheetID string
}

// New builds a sheets client from a service-account credentials file.
func New(credentialsFile, spreadsheetID string) (*Service, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &Service{service: srv, spreadsheetID: spreadsheetID}, nil
}

// TestConnection reads one cell to verify credentials and sharing.
func (s *Service) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, "Reservations!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// ReplaceReservations rewrites the sheet below the header row with the full
// reservation set. Wholesale replacement keeps the sheet consistent with
// whatever the chain currently holds, including records cancelled since the
// last run.
func (s *Service) ReplaceReservations(ctx context.Context, reservations []models.Reservation) error {
	clearReq := &sheets.ClearValuesRequest{}
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, "Reservations!A2:Z", clearReq).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear reservations sheet: %v", err)
	}

	values := make([][]interface{}, 0, len(reservations))
	for _, r := range reservations {
		values = append(values, []interface{}{
			r.ID,
			r.DisplayName,
			r.Date,
			r.Time,
			r.PickupLocation,
			r.Notes,
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	if len(values) == 0 {
		return nil
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, reservationsRange, valueRange).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update reservations sheet: %v", err)
	}
	return nil
}
