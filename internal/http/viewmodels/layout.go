package viewmodels

type NavItem struct {
	Label string
	Href  string
}

type LayoutData struct {
	Title      string
	Toast      *ToastViewData
	ActivePath string
	Nav        []NavItem
}

type ToastViewData struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
