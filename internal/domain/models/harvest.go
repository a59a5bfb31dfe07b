package models

import "time"

// HarvestStatus tracks whether a harvest write was acknowledged by the store.
type HarvestStatus string

const (
	HarvestPending   HarvestStatus = "pending"
	HarvestConfirmed HarvestStatus = "confirmed"
)

// Harvest is a honey harvest logged against an apiary.
type Harvest struct {
	ID         string        `bson:"_id" json:"id"`
	ApiaryID   string        `bson:"apiaryId" json:"apiary_id"`
	ApiaryName string        `bson:"apiaryName" json:"apiary_name"`
	AmountKg   float64       `bson:"amount" json:"amount_kg"`
	Date       time.Time     `bson:"date" json:"date"`
	Status     HarvestStatus `bson:"-" json:"status"`
}

// DailyHarvest is the amount harvested on a single day.
type DailyHarvest struct {
	Date     Date    `json:"date"`
	AmountKg float64 `json:"amount_kg"`
}

// HarvestStats summarizes the harvests of one apiary.
type HarvestStats struct {
	ApiaryID   string         `json:"apiary_id"`
	ApiaryName string         `json:"apiary_name"`
	TotalKg    float64        `json:"total_kg"`
	Count      int            `json:"count"`
	Daily      []DailyHarvest `json:"daily"`
	Entries    []Harvest      `json:"entries"`
}
