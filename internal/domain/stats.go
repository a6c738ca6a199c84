package domain

// Stats represents platform statistics
type Stats struct {
	TotalUsers         int64 `json:"total_users"`
	OnlineUsers        int64 `json:"online_users"`
	BusyUsers          int64 `json:"busy_users"`
	FakeUsers          int64 `json:"fake_users"`
	VIPUsers           int64 `json:"vip_users"`
	BlockedUsers       int64 `json:"blocked_users"`
	SignupsToday       int64 `json:"signups_today"`
	SignupsWeek        int64 `json:"signups_week"`
	LiveNow            int64 `json:"live_now"`
	TotalRCoin         int64 `json:"total_r_coin"`  // r_coin in circulation
	TotalDiamond       int64 `json:"total_diamond"` // diamonds in circulation
	LedgerEntriesToday int64 `json:"ledger_entries_today"`
	RechargedTotal     int64 `json:"recharged_total"`
	RechargedToday     int64 `json:"recharged_today"`
}
