package domain

// Granularity describes one of the three independent quote resolutions:
// the source frequency token and where its records are stored.
type Granularity struct {
	Name         string
	Token        string
	Table        string
	AnchorColumn string
}

var (
	Daily   = Granularity{Name: "daily", Token: "1d", Table: "exchange_rate", AnchorColumn: "date"}
	Weekly  = Granularity{Name: "weekly", Token: "1wk", Table: "weekly_exchange_rate", AnchorColumn: "week_start"}
	Monthly = Granularity{Name: "monthly", Token: "1mo", Table: "monthly_exchange_rate", AnchorColumn: "month_start"}
)

// Granularities returns daily, weekly and monthly in that order.
func Granularities() []Granularity {
	return []Granularity{Daily, Weekly, Monthly}
}

func (g Granularity) String() string { return g.Name }
