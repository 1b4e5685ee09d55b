package domain

// ScrapeFormatRaw asks the Web Unlocker to return the page body untouched.
const ScrapeFormatRaw = "raw"

type ScrapeRequest struct {
	Zone   string `json:"zone"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

type Page struct {
	URL         string
	ContentType string
	HTML        string
}

type Delivery struct {
	URL     string
	Summary string
}
