// Package export renders visits, harvests and ledgers into portable formats.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/beeconnect/server/internal/domain/models"
)

const (
	icsProductID = "-//BeeConnect//Visit Calendar//PT"
	// icsLineOctets is the longest content line allowed before folding.
	icsLineOctets = 75
)

// ICSOptions describes the calendar being written.
type ICSOptions struct {
	Name     string
	Location *time.Location
	Now      time.Time
}

// WriteICS writes markers as all-day events, each with an alarm at the visit time.
func WriteICS(w io.Writer, markers []models.VisitMarker, opts ICSOptions) error {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Name == "" {
		opts.Name = "BeeConnect"
	}

	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		bw.WriteString(foldLine(fmt.Sprintf(format, args...)))
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", icsProductID)
	line("CALSCALE:GREGORIAN")
	line("X-WR-CALNAME:%s", escapeText(opts.Name))
	line("X-WR-TIMEZONE:%s", opts.Location.String())

	stamp := opts.Now.UTC().Format("20060102T150405Z")
	for _, m := range markers {
		start := m.Date.Time(opts.Location)
		summary := fmt.Sprintf("Visita: %s", m.HiveName)

		line("BEGIN:VEVENT")
		line("UID:%s-%s@beeconnect", m.HiveID, m.At.UTC().Format("20060102T1504Z"))
		line("DTSTAMP:%s", stamp)
		line("DTSTART;VALUE=DATE:%s", start.Format("20060102"))
		line("DTEND;VALUE=DATE:%s", start.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:%s", escapeText(summary))
		line("DESCRIPTION:%s", escapeText(fmt.Sprintf("Inspeção da colmeia %s às %s", m.HiveName, m.At.In(opts.Location).Format("15:04"))))
		line("LOCATION:%s", escapeText(m.ApiaryName))
		line("BEGIN:VALARM")
		line("ACTION:DISPLAY")
		line("DESCRIPTION:%s", escapeText(summary))
		line("TRIGGER:%s", isoDuration(alarmOffset(m, opts.Location)))
		line("END:VALARM")
		line("END:VEVENT")
	}
	line("END:VCALENDAR")

	return bw.Flush()
}

// alarmOffset returns the minutes from the event's midnight to the visit's
// wall-clock time in loc. Daylight saving shifts do not move the alarm.
func alarmOffset(m models.VisitMarker, loc *time.Location) int {
	local := m.At.In(loc)
	visitDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	eventDay := time.Date(m.Date.Year, m.Date.Month, m.Date.Day, 0, 0, 0, 0, time.UTC)
	days := int(visitDay.Sub(eventDay).Hours() / 24)
	return days*24*60 + local.Hour()*60 + local.Minute()
}

// isoDuration formats a minute offset as an ISO 8601 duration.
func isoDuration(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	days := minutes / (24 * 60)
	minutes %= 24 * 60
	return fmt.Sprintf("%sP%dDT%dH%dM", sign, days, minutes/60, minutes%60)
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escapeText(s string) string {
	return icsEscaper.Replace(s)
}

// foldLine terminates a content line with CRLF, splitting it into chunks of at
// most 75 octets. Continuation lines start with a space. Runes are never split.
func foldLine(content string) string {
	var b strings.Builder
	limit := icsLineOctets
	for len(content) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		b.WriteString(content[:cut])
		b.WriteString("\r\n ")
		content = content[cut:]
		limit = icsLineOctets - 1
	}
	b.WriteString(content)
	b.WriteString("\r\n")
	return b.String()
}
