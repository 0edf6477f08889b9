package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/org"
	"github.com/clockwise-hq/attendance-backend-go/internal/domain/stats"
	"github.com/xuri/excelize/v2"
)

// Service exports daily scope roll-ups as XLSX workbooks.
type Service interface {
	// ExportDaily writes one workbook for the scope and date: a summary
	// block followed by one row per active employee.
	ExportDaily(ctx context.Context, scope org.Scope, date time.Time, w io.Writer) error
}

type serviceImpl struct {
	aggregator stats.Aggregator
	directory  org.DirectoryRepository
}

func NewService(aggregator stats.Aggregator, directory org.DirectoryRepository) Service {
	return &serviceImpl{aggregator: aggregator, directory: directory}
}

func (s *serviceImpl) ExportDaily(ctx context.Context, scope org.Scope, date time.Time, w io.Writer) error {
	report, err := s.aggregator.AggregateWithRows(ctx, scope, date)
	if err != nil {
		return fmt.Errorf("failed to aggregate scope for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Scope")
	f.SetCellValue(sheet, "B1", fmt.Sprintf("%s %s", scope.Level, scope.ID))
	f.SetCellValue(sheet, "A2", "Date")
	f.SetCellValue(sheet, "B2", date.Format("2006-01-02"))

	// Establishment exports carry their place in the tree
	if scope.Level == org.ScopeEstablishment {
		ancestry, err := s.directory.GetAncestry(ctx, scope.ID)
		if err != nil {
			return fmt.Errorf("failed to resolve establishment ancestry: %w", err)
		}
		f.SetCellValue(sheet, "A3", "Site / Company")
		f.SetCellValue(sheet, "B3", fmt.Sprintf("%s / %s", ancestry.SiteID, ancestry.CompanyID))
	}

	summary := []struct {
		label string
		value interface{}
	}{
		{"Total Employees", report.Stats.TotalEmployees},
		{"Early Arrivals", report.Stats.EarlyArrivals},
		{"On-Time Arrivals", report.Stats.OnTimeArrivals},
		{"Late Arrivals", report.Stats.LateArrivals},
		{"Absences", report.Stats.Absences},
		{"Early Exits", report.Stats.EarlyExits},
		{"On-Time Exits", report.Stats.OnTimeExits},
		{"Late Exits", report.Stats.LateExits},
		{"Total Worked Hours", report.Stats.TotalWorkedHours},
	}
	for i, item := range summary {
		row := 4 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.value)
	}

	headerRow := 4 + len(summary) + 1
	headers := []string{"Employee ID", "Full Name", "Establishment", "Schedule", "Entry", "Exit", "Arrival", "Exit Category", "Worked Minutes"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		f.SetCellValue(sheet, cell, header)
	}

	for i, r := range report.Rows {
		rowNum := headerRow + 1 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), r.EmployeeID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), r.FullName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), r.EstablishmentID)
		if r.ScheduleName != nil {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNum), *r.ScheduleName)
		}
		if r.Projection.EffectiveEntry != nil {
			f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNum), r.Projection.EffectiveEntry.String())
		}
		if r.Projection.EffectiveExit != nil {
			f.SetCellValue(sheet, fmt.Sprintf("F%d", rowNum), r.Projection.EffectiveExit.String())
		}
		if r.ArrivalBucket != nil {
			f.SetCellValue(sheet, fmt.Sprintf("G%d", rowNum), string(*r.ArrivalBucket))
		} else {
			f.SetCellValue(sheet, fmt.Sprintf("G%d", rowNum), "ABSENT")
		}
		if r.Projection.ExitCategory != nil {
			f.SetCellValue(sheet, fmt.Sprintf("H%d", rowNum), string(*r.Projection.ExitCategory))
		}
		if r.Projection.WorkedMinutes != nil {
			f.SetCellValue(sheet, fmt.Sprintf("I%d", rowNum), *r.Projection.WorkedMinutes)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
