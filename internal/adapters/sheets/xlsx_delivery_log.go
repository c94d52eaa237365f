package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"delivery-log-service/internal/domain"
)

const worksheet = "Deliveries"

var headerRow = []any{
	"Date", "Sender", "Client", "Quantity", "Feed", "Price",
	"Location", "Notes", "Reminders",
}

// XLSXDeliveryLog appends confirmed deliveries to a workbook on disk, one
// row per record, mirroring the bookkeeping sheet the farm already reads.
// The workbook is rewritten per append; fine at the volumes one farm
// produces.
type XLSXDeliveryLog struct {
	mu   sync.Mutex
	path string
}

func NewXLSXDeliveryLog(path string) (*XLSXDeliveryLog, error) {
	if path == "" {
		return nil, errors.New("xlsx delivery log: path is required")
	}

	l := &XLSXDeliveryLog{path: path}
	if err := l.ensureWorkbook(); err != nil {
		return nil, err
	}
	return l, nil
}

// Create the workbook with its header row on first use.
func (l *XLSXDeliveryLog) ensureWorkbook() error {
	if _, err := os.Stat(l.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("xlsx delivery log: stat %q: %w", l.path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(worksheet)
	if err != nil {
		return fmt.Errorf("xlsx delivery log: create worksheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("xlsx delivery log: drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(worksheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("xlsx delivery log: write header: %w", err)
	}

	if err := f.SaveAs(l.path); err != nil {
		return fmt.Errorf("xlsx delivery log: save %q: %w", l.path, err)
	}

	return nil
}

// Append writes one record after the last occupied row. Appends are
// serialized; concurrent confirmations take turns on the workbook.
func (l *XLSXDeliveryLog) Append(ctx context.Context, rec *domain.DeliveryRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return fmt.Errorf("append delivery: open workbook %q: %w", l.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(worksheet)
	if err != nil {
		return fmt.Errorf("append delivery: read worksheet: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("append delivery: next row cell: %w", err)
	}

	row := rec.Row()
	if err := f.SetSheetRow(worksheet, cell, &row); err != nil {
		return fmt.Errorf("append delivery: write row: %w", err)
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("append delivery: save workbook: %w", err)
	}

	return nil
}
