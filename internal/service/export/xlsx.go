package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/beeconnect/server/internal/domain/models"
)

const (
	harvestSheet = "Colheitas"
	dailySheet   = "Diario"
	ledgerSheet  = "Inspecoes"
)

// WriteHarvests writes the harvest entries and daily totals of an apiary as a workbook.
func WriteHarvests(w io.Writer, stats models.HarvestStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", harvestSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(dailySheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	rows := [][]interface{}{{"Data", "Apiário", "Quantidade (kg)", "Estado"}}
	for _, h := range stats.Entries {
		rows = append(rows, []interface{}{h.Date.Format(models.InspectionDateLayout), h.ApiaryName, h.AmountKg, string(h.Status)})
	}
	rows = append(rows, []interface{}{"Total", stats.ApiaryName, stats.TotalKg, ""})
	if err := writeRows(f, harvestSheet, rows, header); err != nil {
		return err
	}

	daily := [][]interface{}{{"Dia", "Quantidade (kg)"}}
	for _, d := range stats.Daily {
		daily = append(daily, []interface{}{d.Date.String(), d.AmountKg})
	}
	if err := writeRows(f, dailySheet, daily, header); err != nil {
		return err
	}

	if n := len(stats.Daily); n > 0 {
		chart := &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$B$1", dailySheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", dailySheet, n+1),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", dailySheet, n+1),
			}},
		}
		if err := f.AddChart(dailySheet, "D2", chart); err != nil {
			return fmt.Errorf("add chart: %w", err)
		}
	}

	return f.Write(w)
}

// WriteLedger writes a hive's inspections, newest first, as a workbook.
func WriteLedger(w io.Writer, hive models.Hive, recs []models.Inspection) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	rows := [][]interface{}{{"Data", "Alimentação", "Tratamentos", "Problemas", "Observações", "Próxima visita"}}
	for _, r := range recs {
		rows = append(rows, []interface{}{r.Date, r.Feeding, r.Treatments, r.Problems, r.Notes, r.NextVisit})
	}
	if err := writeRows(f, ledgerSheet, rows, header); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: fmt.Sprintf("Inspeções %s", hive.Name)}); err != nil {
		return fmt.Errorf("set properties: %w", err)
	}

	return f.Write(w)
}

func headerStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}
	return style, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, header int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
	}
	return nil
}
