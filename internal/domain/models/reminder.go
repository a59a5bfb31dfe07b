package models

import "time"

// Reminder is a persisted one-shot notification.
type Reminder struct {
	ID          string     `bson:"_id" json:"id"`
	Key         string     `bson:"key" json:"key"`
	HiveID      string     `bson:"hive_id,omitempty" json:"hive_id,omitempty"`
	Title       string     `bson:"title" json:"title"`
	Message     string     `bson:"message" json:"message"`
	FireAt      time.Time  `bson:"fire_at" json:"fire_at"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	DeliveredAt *time.Time `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
}

// Delivered reports whether the reminder was already claimed for delivery.
func (r Reminder) Delivered() bool {
	return r.DeliveredAt != nil
}
