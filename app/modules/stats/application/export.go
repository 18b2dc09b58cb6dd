package statsservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	sharedtypes "github.com/Five-Stack-Club/rift-bot/app/shared/types/shared"
	"github.com/Five-Stack-Club/rift-bot/app/shared/utils/results"
)

// queueNames labels the queue IDs players actually encounter.
var queueNames = map[int]string{
	0:    "Custom",
	400:  "Normal Draft",
	420:  "Ranked Solo",
	430:  "Normal Blind",
	440:  "Ranked Flex",
	450:  "ARAM",
	490:  "Quickplay",
	700:  "Clash",
	1700: "Arena",
}

func queueName(queueID int) string {
	if name, ok := queueNames[queueID]; ok {
		return name
	}
	return fmt.Sprintf("Queue %d", queueID)
}

// GenerateMatchWorkbook renders a match history as an XLSX workbook.
func GenerateMatchWorkbook(history *MatchHistory) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Matches"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := []string{"Match ID", "Date", "Queue", "Champion", "Result", "Kills", "Deaths", "Assists", "CS", "Duration"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, m := range history.Matches {
		outcome := "Loss"
		if m.Win {
			outcome = "Win"
		}
		values := []any{
			m.MatchID,
			time.UnixMilli(m.GameCreation).UTC().Format("2006-01-02 15:04"),
			queueName(m.QueueID),
			m.Champion,
			outcome,
			m.Kills,
			m.Deaths,
			m.Assists,
			m.CS,
			(time.Duration(m.DurationSec) * time.Second).String(),
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	// Widen the ID and date columns so the sheet opens readable.
	if err := f.SetColWidth(sheet, "A", "B", 20); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportMatches renders the user's match history as a spreadsheet. The
// second return value is the attachment filename.
func (s *StatsService) ExportMatches(ctx context.Context, userID sharedtypes.DiscordID, count int) ([]byte, string, error) {
	count = clampMatchCount(count)
	result, err := withTelemetry(s, ctx, "ExportMatches", string(userID), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		history, err := s.recentHistory(ctx, userID, count)
		if err != nil {
			if errors.Is(err, ErrNoLink) {
				return results.FailureResult[[]byte, error](err), nil
			}
			return results.OperationResult[[]byte, error]{}, err
		}
		file, err := GenerateMatchWorkbook(history)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		return results.SuccessResult[[]byte, error](file), nil
	})
	if err != nil {
		return nil, "", err
	}
	if result.IsFailure() {
		return nil, "", *result.Failure
	}
	return *result.Success, "match_history.xlsx", nil
}
