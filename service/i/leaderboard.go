package i

import "context"

// Entry is one leaderboard row.
type Entry struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// Leaderboard ranks members by ascending score on named boards.
type Leaderboard interface {
	// Add records member with score on board and trims the board to its size.
	Add(ctx context.Context, board string, score float64, member string) error

	// Top returns up to n members with the lowest scores.
	Top(ctx context.Context, board string, n int64) ([]Entry, error)
}
