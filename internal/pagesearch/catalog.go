package pagesearch

// Category groups pages the way the site navigation does.
type Category string

const (
	CategoryMain     Category = "main"
	CategoryServices Category = "services"
	CategoryAccount  Category = "account"
	CategoryProvider Category = "provider"
	CategorySupport  Category = "support"
	CategoryLegal    Category = "legal"
)

// Page is one searchable catalog entry.
type Page struct {
	Title       string   `json:"title"`
	Path        string   `json:"path"`
	Description string   `json:"description"`
	Keywords    []string `json:"-"`
	Category    Category `json:"category"`
}

// Catalog is a fixed, ordered list of pages. Order breaks score ties.
type Catalog []Page

var defaultCatalog = Catalog{
	{
		Title:       "Home",
		Path:        "/",
		Description: "Find trusted priests, photographers, caterers and venues for every ceremony",
		Keywords:    []string{"home", "start", "main", "subhakaryam"},
		Category:    CategoryMain,
	},
	{
		Title:       "Browse Providers",
		Path:        "/providers",
		Description: "Search verified service providers by city and category",
		Keywords:    []string{"browse", "search", "providers", "vendors", "find"},
		Category:    CategoryMain,
	},
	{
		Title:       "How It Works",
		Path:        "/how-it-works",
		Description: "Book a provider, pay into escrow and release payment after the event",
		Keywords:    []string{"how", "guide", "process", "escrow", "steps"},
		Category:    CategoryMain,
	},
	{
		Title:       "About Us",
		Path:        "/about",
		Description: "The team and the story behind Subhakaryam",
		Keywords:    []string{"about", "team", "company", "story"},
		Category:    CategoryMain,
	},
	{
		Title:       "Priests",
		Path:        "/services/priests",
		Description: "Pandits and purohits for pujas, homams, weddings and griha pravesham",
		Keywords:    []string{"priest", "pandit", "purohit", "pooja", "puja", "homam"},
		Category:    CategoryServices,
	},
	{
		Title:       "Photographers",
		Path:        "/services/photographers",
		Description: "Wedding and event photography and videography",
		Keywords:    []string{"photo", "photography", "video", "camera", "album"},
		Category:    CategoryServices,
	},
	{
		Title:       "Caterers",
		Path:        "/services/caterers",
		Description: "Traditional vegetarian meals and banana-leaf catering for any guest count",
		Keywords:    []string{"catering", "food", "meals", "cook", "vegetarian"},
		Category:    CategoryServices,
	},
	{
		Title:       "Decorators",
		Path:        "/services/decorators",
		Description: "Mandap, flower and stage decoration",
		Keywords:    []string{"decoration", "flowers", "mandap", "stage", "lighting"},
		Category:    CategoryServices,
	},
	{
		Title:       "Function Halls",
		Path:        "/services/function-halls",
		Description: "Kalyana mandapams and banquet halls for ceremonies and receptions",
		Keywords:    []string{"hall", "venue", "mandapam", "banquet", "marriage hall"},
		Category:    CategoryServices,
	},
	{
		Title:       "Sign In",
		Path:        "/login",
		Description: "Sign in to manage your bookings",
		Keywords:    []string{"login", "signin", "sign in", "account"},
		Category:    CategoryAccount,
	},
	{
		Title:       "Create Account",
		Path:        "/register",
		Description: "Register as a customer to book services",
		Keywords:    []string{"register", "signup", "sign up", "join", "account"},
		Category:    CategoryAccount,
	},
	{
		Title:       "My Bookings",
		Path:        "/bookings",
		Description: "Track requests, confirmations and payments for your events",
		Keywords:    []string{"bookings", "orders", "events", "payments", "status"},
		Category:    CategoryAccount,
	},
	{
		Title:       "Messages",
		Path:        "/messages",
		Description: "Chat with your providers about event details",
		Keywords:    []string{"chat", "messages", "inbox", "conversation"},
		Category:    CategoryAccount,
	},
	{
		Title:       "Provider Dashboard",
		Path:        "/provider/dashboard",
		Description: "Manage booking requests, payouts and your profile",
		Keywords:    []string{"dashboard", "provider", "payouts", "requests", "earnings"},
		Category:    CategoryProvider,
	},
	{
		Title:       "Become a Provider",
		Path:        "/provider/register",
		Description: "List your services and reach customers across India",
		Keywords:    []string{"join", "list", "vendor", "partner", "provider"},
		Category:    CategoryProvider,
	},
	{
		Title:       "Portfolio",
		Path:        "/provider/portfolio",
		Description: "Upload photos of your past work",
		Keywords:    []string{"portfolio", "gallery", "photos", "work", "upload"},
		Category:    CategoryProvider,
	},
	{
		Title:       "Help Center",
		Path:        "/help",
		Description: "Answers to common questions about bookings, refunds and disputes",
		Keywords:    []string{"help", "faq", "support", "refund", "dispute"},
		Category:    CategorySupport,
	},
	{
		Title:       "Contact Us",
		Path:        "/contact",
		Description: "Reach our support team by email or phone",
		Keywords:    []string{"contact", "support", "phone", "email", "call"},
		Category:    CategorySupport,
	},
	{
		Title:       "Privacy Policy",
		Path:        "/privacy",
		Description: "How we collect and use your personal data",
		Keywords:    []string{"privacy", "data", "gdpr", "personal"},
		Category:    CategoryLegal,
	},
	{
		Title:       "Terms of Service",
		Path:        "/terms",
		Description: "Rules for customers and providers using the platform",
		Keywords:    []string{"terms", "conditions", "rules", "agreement", "legal"},
		Category:    CategoryLegal,
	},
}

// popularPaths is the fallback shown when nothing resembles a failed path.
var popularPaths = []string{"/", "/providers", "/services/priests", "/services/photographers", "/how-it-works"}

// DefaultCatalog returns a copy of the site's page catalog.
func DefaultCatalog() Catalog {
	out := make(Catalog, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// PopularPages returns the fixed fallback list: home, browse providers,
// priests, photographers and how it works.
func PopularPages() []Page {
	out := make([]Page, 0, len(popularPaths))
	for _, p := range popularPaths {
		if page, ok := defaultCatalog.byPath(p); ok {
			out = append(out, page)
		}
	}
	return out
}

func (c Catalog) byPath(path string) (Page, bool) {
	for _, p := range c {
		if p.Path == path {
			return p, true
		}
	}
	return Page{}, false
}
