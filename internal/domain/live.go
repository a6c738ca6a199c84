package domain

import "time"

// LiveUser is a user currently broadcasting.
type LiveUser struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Channel   string    `db:"channel" json:"channel"`
	Token     string    `db:"token" json:"-"`
	StartedAt time.Time `db:"started_at" json:"started_at"`
}

// LiveStreamingHistory is a finished broadcast.
type LiveStreamingHistory struct {
	ID              int64      `db:"id" json:"id"`
	UserID          int64      `db:"user_id" json:"user_id"`
	DurationSeconds int64      `db:"duration_seconds" json:"duration_seconds"`
	Gifts           int64      `db:"gifts" json:"gifts"`
	Comments        int64      `db:"comments" json:"comments"`
	Fans            int64      `db:"fans" json:"fans"`
	RCoin           int64      `db:"r_coin" json:"r_coin"`
	StartTime       time.Time  `db:"start_time" json:"start_time"`
	EndTime         *time.Time `db:"end_time" json:"end_time,omitempty"`
}

// PurchaseHistory is one page of a user's wallet and live-session history.
type PurchaseHistory struct {
	WalletHistoryTotal        int64                  `json:"wallet_history_total"`
	LiveStreamingHistoryTotal int64                  `json:"live_streaming_history_total"`
	WalletHistory             []WalletHistoryItem    `json:"wallet_history"`
	LiveStreamingHistory      []LiveStreamingHistory `json:"live_streaming_history"`
}
