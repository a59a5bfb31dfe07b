package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/beeconnect/server/internal/calendar"
	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/service/ledger"
	"github.com/beeconnect/server/internal/service/visits"
)

var (
	bold      = color.New(color.Bold)
	visitDay  = color.New(color.FgYellow, color.Bold)
	todayDay  = color.New(color.FgCyan, color.Underline)
	faint     = color.New(color.Faint)
	hiveColor = color.New(color.FgGreen)
)

// RenderMonth prints grid as rows of seven days followed by the visits of the month.
func RenderMonth(w io.Writer, grid calendar.Grid) {
	title := fmt.Sprintf("%s %d", grid.Month, grid.Year)
	fmt.Fprintln(w, bold.Sprint(title))

	heads := make([]string, 0, 7)
	for _, d := range grid.Weekdays() {
		heads = append(heads, d.String()[:2])
	}
	fmt.Fprintln(w, faint.Sprint(strings.Join(heads, " ")))

	for _, week := range grid.Weeks() {
		cells := make([]string, 0, len(week))
		for _, c := range week {
			cells = append(cells, dayCell(c))
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}

	var marked bool
	for _, c := range grid.Cells {
		if !c.HasVisits() {
			continue
		}
		if !marked {
			fmt.Fprintln(w)
			marked = true
		}
		names := make([]string, 0, len(c.Visits))
		for _, v := range c.Visits {
			names = append(names, v.HiveName)
		}
		fmt.Fprintf(w, "%s  %s\n", visitDay.Sprint(c.Date.String()), strings.Join(names, ", "))
	}
}

func dayCell(c calendar.Cell) string {
	if c.IsPadding() {
		return "  "
	}
	s := fmt.Sprintf("%2d", c.Date.Day)
	switch {
	case c.HasVisits():
		return visitDay.Sprint(s)
	case c.IsToday:
		return todayDay.Sprint(s)
	default:
		return s
	}
}

// RenderPage prints one ledger page as a table with a navigation footer.
func RenderPage(w io.Writer, hiveID string, page ledger.PageView) {
	fmt.Fprintln(w, bold.Sprintf("Inspeções da colmeia %s", hiveID))
	if page.Total == 0 {
		fmt.Fprintln(w, faint.Sprint("sem inspeções registadas"))
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("Data"), bold.Sprint("Alimentação"), bold.Sprint("Tratamentos"), bold.Sprint("Problemas"), bold.Sprint("Observações"), bold.Sprint("Próxima visita"))
	for _, r := range page.Entries {
		tbl.AddRow(r.Date, r.Feeding, r.Treatments, r.Problems, r.Notes, r.NextVisit)
	}
	fmt.Fprintln(w, tbl)

	prev, next := "     ", "     "
	if page.HasPrev {
		prev = "< ant"
	}
	if page.HasNext {
		next = "seg >"
	}
	fmt.Fprintln(w, faint.Sprintf("%s  página %d/%d (%d registos)  %s", prev, page.Index+1, page.Count, page.Total, next))
}

// RenderVisits prints the visits of one date grouped by apiary.
func RenderVisits(w io.Writer, date models.Date, groups []visits.ApiaryVisits) {
	fmt.Fprintln(w, bold.Sprintf("Visitas em %s", date))
	if len(groups) == 0 {
		fmt.Fprintln(w, faint.Sprint("nenhuma visita agendada"))
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, g := range groups {
		tbl.AddRow(bold.Sprint(g.ApiaryName), "")
		for _, v := range g.Visits {
			tbl.AddRow("", hiveColor.Sprintf("%s  %s", v.At.Format("15:04"), v.HiveName))
		}
	}
	fmt.Fprintln(w, tbl)
}
