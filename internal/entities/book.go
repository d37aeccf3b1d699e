package entities

type Format string

const (
	FormatPhysical  Format = "physical"
	FormatEbook     Format = "ebook"
	FormatAudiobook Format = "audiobook"
)

const (
	DefaultFormat   = FormatPhysical
	DefaultCurrency = "USD"
)

// Book is a single tracked reading entry. JSON field names match the data
// files written by the original desktop app so existing libraries load
// unchanged.
type Book struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Narrator string `json:"narrator,omitempty"`
	CoverURL string `json:"coverUrl,omitempty"`

	Format Format `json:"format,omitempty"`
	Source string `json:"source,omitempty"`

	Pages    int     `json:"pages"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
	Rating   int     `json:"rating"`

	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	// DateRead is a legacy alias for EndDate, still present in old data files.
	DateRead  string `json:"dateRead,omitempty"`
	DateAdded string `json:"dateAdded,omitempty"`

	DidNotFinish bool   `json:"didNotFinish"`
	DNFReason    string `json:"dnfReason,omitempty"`

	Review          string `json:"review,omitempty"`
	AuthorInstagram string `json:"authorInstagram,omitempty"`
	ReviewDrafted   bool   `json:"reviewDrafted"`
	PostedGoodreads bool   `json:"postedGoodreads"`
	PostedInstagram bool   `json:"postedInstagram"`
	PostedIgBbr     bool   `json:"postedIgBbr"`
	PostedBlog      bool   `json:"postedBlog"`
	PostedAmazon    bool   `json:"postedAmazon"`
	AmazonApproved  bool   `json:"amazonApproved"`
}

// BookMetadata is what the external book-lookup collaborator returns.
type BookMetadata struct {
	Title         string  `json:"title,omitempty"`
	Author        string  `json:"author,omitempty"`
	ISBN          string  `json:"isbn,omitempty"`
	Genre         string  `json:"genre,omitempty"`
	Pages         int     `json:"pages,omitempty"`
	Publisher     string  `json:"publisher,omitempty"`
	PublishedDate string  `json:"published_date,omitempty"`
	Description   string  `json:"description,omitempty"`
	CoverURL      string  `json:"cover_url,omitempty"`
	Price         float64 `json:"price,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	ExternalID    string  `json:"external_id,omitempty"`
}
