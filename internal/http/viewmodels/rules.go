package viewmodels

type RuleItem struct {
	ID             string
	Name           string
	Description    string
	Trigger        string
	Action         string
	Status         string
	Frequency      string
	Location       string
	Classification string
	LastModified   string
	Automation     bool
	Editing        bool
}

type RuleStatusCount struct {
	Status string
	Count  int
}

type RulesFilterData struct {
	Search         string
	Trigger        string
	Location       string
	Classification string
	Date           string
	Sort           string
}

type RulesViewData struct {
	Layout      LayoutData
	Filter      RulesFilterData
	Items       []RuleItem
	Counts      []RuleStatusCount
	Channels    []string
	DateBuckets []string
	TotalCount  int64
	Page        int
	TotalPages  int
	ShowingFrom int
	ShowingTo   int
	EmptyState  string
}
