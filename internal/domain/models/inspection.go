package models

import (
	"strings"
	"time"
)

// Inspection is one logged visit to a hive.
type Inspection struct {
	ID         string `bson:"_id" json:"id"`
	HiveID     string `bson:"hive_id" json:"hive_id"`
	Date       string `bson:"data" json:"date"`
	Feeding    string `bson:"alimentacao" json:"feeding"`
	Treatments string `bson:"tratamentos" json:"treatments"`
	Problems   string `bson:"problemas" json:"problems"`
	Notes      string `bson:"observacoes" json:"notes"`
	NextVisit  string `bson:"proxima_visita,omitempty" json:"next_visit,omitempty"`
	// Seq is assigned by the store and grows with every append.
	Seq int64 `bson:"seq" json:"-"`
}

// InspectionDate parses the DD/MM/YYYY date of the inspection.
func (i Inspection) InspectionDate() (Date, error) {
	return ParseInspectionDate(i.Date)
}

// HasNextVisit reports whether a follow-up visit was scheduled.
func (i Inspection) HasNextVisit() bool {
	return strings.TrimSpace(i.NextVisit) != ""
}

// NextVisitAt parses the scheduled follow-up in loc. ok is false when absent or malformed.
func (i Inspection) NextVisitAt(loc *time.Location) (time.Time, bool) {
	if !i.HasNextVisit() {
		return time.Time{}, false
	}
	at, err := ParseNextVisit(i.NextVisit, loc)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// VisitMarker annotates a calendar day with a hive due for inspection.
type VisitMarker struct {
	Date       Date      `json:"date"`
	At         time.Time `json:"at"`
	HiveID     string    `json:"hive_id"`
	HiveName   string    `json:"hive_name"`
	ApiaryID   string    `json:"apiary_id"`
	ApiaryName string    `json:"apiary_name"`
}
