package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/beeconnect/server/internal/calendar"
	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/service/ledger"
	"github.com/beeconnect/server/internal/service/visits"
)

func init() {
	color.NoColor = true
}

func TestRenderMonth(t *testing.T) {
	at := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)
	grid := calendar.Build(2024, time.May, time.Sunday).Mark([]models.VisitMarker{
		{Date: models.DateOf(at), At: at, HiveName: "Colmeia 1"},
	})

	var buf bytes.Buffer
	RenderMonth(&buf, grid)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	if lines[0] != "May 2024" || lines[1] != "Su Mo Tu We Th Fr Sa" {
		t.Fatalf("header = %q / %q", lines[0], lines[1])
	}
	if lines[2] != "          1  2  3  4" {
		t.Errorf("first week = %q", lines[2])
	}
	if last := lines[len(lines)-1]; last != "2024-05-15  Colmeia 1" {
		t.Errorf("visit line = %q", last)
	}
}

func TestRenderPage(t *testing.T) {
	recs := []models.Inspection{
		{Date: "20/05/2024", Notes: "rainha vista"},
		{Date: "10/05/2024", NextVisit: "15/05/2024 09:00"},
		{Date: "01/05/2024"},
	}
	nav := ledger.NewNavigator(ledger.Paginate(recs, 2), 0)

	var buf bytes.Buffer
	RenderPage(&buf, "H", nav.View())
	out := buf.String()

	for _, want := range []string{"20/05/2024", "rainha vista", "15/05/2024 09:00", "página 1/2 (3 registos)", "seg >"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "01/05/2024") || strings.Contains(out, "< ant") {
		t.Errorf("first page leaked second page content:\n%s", out)
	}
}

func TestRenderEmptyStates(t *testing.T) {
	var buf bytes.Buffer
	RenderPage(&buf, "H", ledger.NewNavigator(ledger.Paginate(nil, 5), 0).View())
	if !strings.Contains(buf.String(), "sem inspeções") {
		t.Errorf("empty ledger output = %q", buf.String())
	}

	buf.Reset()
	RenderVisits(&buf, models.NewDate(2024, time.May, 15), nil)
	if !strings.Contains(buf.String(), "nenhuma visita") {
		t.Errorf("empty visits output = %q", buf.String())
	}
}

func TestRenderVisits(t *testing.T) {
	at := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)
	groups := []visits.ApiaryVisits{{
		ApiaryName: "Serra",
		Visits:     []models.VisitMarker{{At: at, HiveName: "Colmeia 1"}},
	}}

	var buf bytes.Buffer
	RenderVisits(&buf, models.NewDate(2024, time.May, 15), groups)
	out := buf.String()
	if !strings.Contains(out, "Visitas em 2024-05-15") || !strings.Contains(out, "Serra") || !strings.Contains(out, "09:00  Colmeia 1") {
		t.Errorf("output:\n%s", out)
	}
}
