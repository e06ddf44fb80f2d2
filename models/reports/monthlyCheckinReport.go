package reports

import (
	"fmt"

	"github.com/mmdatafocus/checkin_backend/models"
	"github.com/xuri/excelize/v2"
)

// BuildMonthlyCheckinExcel renders one user's monthly stats as a worksheet:
// one row per record plus a summary row. The caller streams the file.
func BuildMonthlyCheckinExcel(user *models.User, stats *models.MonthlyCheckinStats) (*excelize.File, error) {

	f := excelize.NewFile()
	sheet := "Sheet1"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}

	// Headers
	f.SetCellValue(sheet, "A1", "Date")
	f.SetCellValue(sheet, "B1", "Time")
	f.SetCellValue(sheet, "C1", "Status")
	f.SetCellValue(sheet, "D1", "Location")
	f.SetCellValue(sheet, "E1", "ReissueReason")

	row := 2
	for _, r := range stats.Records {
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), r.CheckinTime.Format("2006-01-02"))
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), r.CheckinTime.Format("15:04:05"))
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), string(r.Status))
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), r.Location)
		f.SetCellValue(sheet, "E"+fmt.Sprint(row), r.ReissueReason)
		row++
	}

	row++
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), fmt.Sprintf("%s %d-%02d", user.Username, stats.Year, stats.Month))
	f.SetCellValue(sheet, "B"+fmt.Sprint(row), fmt.Sprintf("checked %d of %d days", stats.CheckinDays, stats.TotalDays))
	f.SetCellValue(sheet, "C"+fmt.Sprint(row), stats.CheckinRate)

	return f, nil
}
