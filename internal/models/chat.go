package models

// ChatMessage is a single chat line. Donations are chat lines with IsDonation set.
type ChatMessage struct {
	ID         string  `json:"id"`
	User       string  `json:"user"`
	Text       string  `json:"text"`
	IsDonation bool    `json:"isDonation"`
	Amount     float64 `json:"amount"`
}

// Donation records who donated and how much, in arrival order.
type Donation struct {
	User   string  `json:"user"`
	Amount float64 `json:"amount"`
}

// RoomSummary is the row returned by the room listing endpoint.
type RoomSummary struct {
	ID      string `json:"id"`
	Phase   Phase  `json:"phase"`
	Viewers int    `json:"viewers"`
	Title   string `json:"title"`
}

// Listed reports whether the room belongs in the public room list: it has
// viewers or has not finished.
func (s RoomSummary) Listed() bool {
	return s.Viewers > 0 || s.Phase != PhaseFinished
}
