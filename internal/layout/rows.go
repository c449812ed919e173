package layout

import "github.com/Domenick1991/tourbooking/internal/domain"

// Row is one display row of a deck, split at the aisle.
type Row struct {
	Deck  domain.Deck   `json:"deck"`
	Label string        `json:"label"`
	Left  []domain.Seat `json:"left"`
	Right []domain.Seat `json:"right"`
}

// Rows groups seats in generation order. A new row starts whenever the deck or
// the row letter changes.
func Rows(seats []domain.Seat) []Row {
	var rows []Row
	for _, s := range seats {
		if n := len(rows); n == 0 || rows[n-1].Label != s.Position.Row || rows[n-1].Deck != s.Deck {
			rows = append(rows, Row{Deck: s.Deck, Label: s.Position.Row})
		}
		row := &rows[len(rows)-1]
		if s.Side == domain.SideLeft {
			row.Left = append(row.Left, s)
		} else {
			row.Right = append(row.Right, s)
		}
	}
	return rows
}
