package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AngelCh415/brandpulse/internal/sheet"
	"github.com/AngelCh415/brandpulse/internal/utils"
)

var fetchBackoff = utils.NewBackoff(100*time.Millisecond, 2)

// FetchSheet downloads a tab published as CSV and parses it. Transport errors, 429
// and 5xx are retried with exponential backoff; 404 and other 4xx are not.
func FetchSheet(ctx context.Context, c HTTPClient, url string) (sheet.Table, error) {
	var body []byte
	err := fetchBackoff.Do(ctx, func(int) error {
		b, err := getBody(ctx, c, url)
		if err != nil {
			var se *StatusError
			if errors.Is(err, ErrNotFound) || (errors.As(err, &se) && !se.Temporary()) {
				return utils.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return sheet.Table{}, err
	}
	t, err := sheet.Parse(body)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("parse %s: %w", url, err)
	}
	return t, nil
}
