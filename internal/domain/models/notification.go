package models

// Notification is a user-visible message delivered outside the app.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}
