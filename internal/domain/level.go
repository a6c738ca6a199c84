package domain

import "time"

// Level is a spend tier keyed by its coin threshold.
type Level struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Coin      int64     `db:"coin" json:"coin"`
	Image     string    `db:"image" json:"image,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ResolveLevel picks the level with the smallest threshold that is still >= spent.
// When spent exceeds every threshold the highest level is returned. Returns nil
// only for an empty slice.
func ResolveLevel(levels []Level, spent int64) *Level {
	var best, highest *Level
	for i := range levels {
		l := &levels[i]
		if highest == nil || l.Coin > highest.Coin {
			highest = l
		}
		if l.Coin >= spent && (best == nil || l.Coin < best.Coin) {
			best = l
		}
	}
	if best != nil {
		return best
	}
	return highest
}
