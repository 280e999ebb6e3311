package models

// UserMetrics are the user/admin counts across every identity.
type UserMetrics struct {
	TotalUsers int `json:"totalUsers"`
	AdminUsers int `json:"adminUsers"`
}

// DayCount is one bucket of the daily signup histogram.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DateRange is an inclusive range of YYYY-MM-DD dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DailySignups is the 30-day signup histogram.
type DailySignups struct {
	Range  DateRange  `json:"range"`
	Series []DayCount `json:"series"`
}
