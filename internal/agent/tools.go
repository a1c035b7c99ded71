package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/lushmoments/lush-chat/internal/domain"
	"github.com/lushmoments/lush-chat/internal/store"
	"google.golang.org/genai"
)

// Tool names form a fixed, enumerated capability surface. Every lookup is
// read-only against public catalog data; the router never mutates state and
// never touches personal or authentication data.
const (
	toolPackagesInfo        = "get_packages_info"
	toolPackageByName       = "get_package_by_name"
	toolPackagesByPrice     = "get_packages_by_price"
	toolThemesInfo          = "get_themes_info"
	toolThemeByName         = "get_theme_by_name"
	toolGalleryItems        = "get_gallery_items"
	toolTestimonials        = "get_testimonials"
	toolBookingInfo         = "get_booking_info"
	toolSearchFAQ           = "search_faq"
	toolPackageEnhancements = "get_package_enhancements"
)

const (
	defaultGalleryLimit     = 5
	defaultTestimonialLimit = 3
	faqSearchLimit          = 5
)

// ErrUnknownTool is returned when the model requests a tool outside the
// enumerated set.
var ErrUnknownTool = fmt.Errorf("unknown tool")

// ToolRouter dispatches model function calls over the fixed tool set.
type ToolRouter struct {
	repo store.Repository
}

// NewToolRouter creates a router backed by the given repository.
func NewToolRouter(repo store.Repository) *ToolRouter {
	return &ToolRouter{repo: repo}
}

// Dispatch executes one tool call and returns its textual result.
func (t *ToolRouter) Dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case toolPackagesInfo:
		return t.packagesInfo(ctx)
	case toolPackageByName:
		return t.packageByName(ctx, stringArg(args, "package_name"))
	case toolPackagesByPrice:
		return t.packagesByPrice(ctx, numberArg(args, "max_price"))
	case toolThemesInfo:
		return t.themesInfo(ctx)
	case toolThemeByName:
		return t.themeByName(ctx, stringArg(args, "theme_name"))
	case toolGalleryItems:
		return t.galleryItems(ctx, intArg(args, "limit", defaultGalleryLimit))
	case toolTestimonials:
		return t.testimonials(ctx, intArg(args, "limit", defaultTestimonialLimit))
	case toolBookingInfo:
		return bookingInfoText, nil
	case toolSearchFAQ:
		return t.searchFAQ(ctx, stringArg(args, "query"))
	case toolPackageEnhancements:
		return t.packageEnhancements(ctx, stringArg(args, "category"))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func numberArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func intArg(args map[string]any, key string, fallback int) int {
	n := int(numberArg(args, key))
	if n <= 0 {
		return fallback
	}
	return n
}

func (t *ToolRouter) packagesInfo(ctx context.Context) (string, error) {
	packages, err := t.repo.ListPackages(ctx)
	if err != nil {
		return "", fmt.Errorf("list packages: %w", err)
	}
	if len(packages) == 0 {
		return "No packages are currently available.", nil
	}

	var b strings.Builder
	b.WriteString("Available Event Decoration Packages:\n\n")
	for _, pkg := range packages {
		fmt.Fprintf(&b, "**%s** - $%.0f  \n", pkg.Title, pkg.Price)
		if pkg.Description != "" {
			fmt.Fprintf(&b, "%s  \n", pkg.Description)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (t *ToolRouter) packageByName(ctx context.Context, name string) (string, error) {
	packages, err := t.repo.FindPackagesByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("find packages by name: %w", err)
	}
	if len(packages) == 0 {
		return fmt.Sprintf("I couldn't find a package matching '%s'. Let me show you all available packages instead.", name), nil
	}

	if len(packages) == 1 {
		pkg := packages[0]
		var b strings.Builder
		fmt.Fprintf(&b, "**%s** - $%.0f\n\n", pkg.Title, pkg.Price)
		if pkg.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", pkg.Description)
		}
		if len(pkg.Items) > 0 {
			b.WriteString("**What's Included:**\n")
			for _, item := range pkg.Items {
				fmt.Fprintf(&b, "- %s  \n", item)
			}
		}
		return b.String(), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found multiple packages matching '%s':\n\n", name)
	for _, pkg := range packages {
		fmt.Fprintf(&b, "**%s** - $%.0f  \n", pkg.Title, pkg.Price)
		if pkg.Description != "" {
			fmt.Fprintf(&b, "%s  \n", pkg.Description)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (t *ToolRouter) packagesByPrice(ctx context.Context, maxPrice float64) (string, error) {
	all, err := t.repo.ListPackages(ctx)
	if err != nil {
		return "", fmt.Errorf("list packages: %w", err)
	}

	var withinBudget, aboveBudget []*domain.Package
	for _, pkg := range all {
		if pkg.Price <= maxPrice {
			withinBudget = append(withinBudget, pkg)
		} else {
			aboveBudget = append(aboveBudget, pkg)
		}
	}

	if len(withinBudget) == 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Unfortunately, we don't have any packages within $%.0f.  \n\n", maxPrice)
		if len(all) > 0 {
			cheapest := all[0]
			fmt.Fprintf(&b, "Our most affordable option is the **%s** at $%.0f.  \n", cheapest.Title, cheapest.Price)
			if cheapest.Description != "" {
				fmt.Fprintf(&b, "%s  \n", cheapest.Description)
			}
		}
		return b.String(), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Packages within your $%.0f budget:**\n\n", maxPrice)
	for _, pkg := range withinBudget {
		fmt.Fprintf(&b, "**%s** - $%.0f  \n", pkg.Title, pkg.Price)
		if pkg.Description != "" {
			fmt.Fprintf(&b, "%s  \n", pkg.Description)
		}
		b.WriteString("\n")
	}

	// Highest price within budget is the best value recommendation.
	bestValue := withinBudget[len(withinBudget)-1]
	fmt.Fprintf(&b, "**Recommended:** The **%s** at $%.0f offers the best value within your budget.  \n\n",
		bestValue.Title, bestValue.Price)

	if len(aboveBudget) > 0 {
		next := aboveBudget[0]
		fmt.Fprintf(&b, "*For $%.0f, you could upgrade to the **%s** ($%.0f over budget).*  \n\n",
			next.Price, next.Title, next.Price-maxPrice)
	}

	b.WriteString("Would you like more details about any of these packages?")
	return b.String(), nil
}

func (t *ToolRouter) themesInfo(ctx context.Context) (string, error) {
	themes, err := t.repo.ListThemes(ctx)
	if err != nil {
		return "", fmt.Errorf("list themes: %w", err)
	}
	if len(themes) == 0 {
		return "No themes are currently available.", nil
	}

	var b strings.Builder
	b.WriteString("Available Decoration Themes:\n\n")
	for _, theme := range themes {
		fmt.Fprintf(&b, "**%s**  \n%s  \n\n", theme.Name, theme.Description)
	}
	return b.String(), nil
}

func (t *ToolRouter) themeByName(ctx context.Context, name string) (string, error) {
	themes, err := t.repo.FindThemesByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("find themes by name: %w", err)
	}
	if len(themes) == 0 {
		return fmt.Sprintf("I couldn't find a theme matching '%s'. Let me show you all available themes instead.", name), nil
	}

	if len(themes) == 1 {
		theme := themes[0]
		var b strings.Builder
		fmt.Fprintf(&b, "**%s**\n\n", theme.Name)
		if theme.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", theme.Description)
		}
		return b.String(), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found multiple themes matching '%s':\n\n", name)
	for _, theme := range themes {
		fmt.Fprintf(&b, "**%s**  \n%s  \n\n", theme.Name, theme.Description)
	}
	return b.String(), nil
}

func (t *ToolRouter) galleryItems(ctx context.Context, limit int) (string, error) {
	items, err := t.repo.ListGalleryItems(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("list gallery items: %w", err)
	}
	if len(items) == 0 {
		return "No gallery items are currently available.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent Event Decoration Examples (showing %d):\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "**%s**  \n%s  \n", item.Title, item.Description)
		if item.Category != "" {
			fmt.Fprintf(&b, "Category: %s  \n", item.Category)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (t *ToolRouter) testimonials(ctx context.Context, limit int) (string, error) {
	testimonials, err := t.repo.ListTestimonials(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("list testimonials: %w", err)
	}
	if len(testimonials) == 0 {
		return "No testimonials are currently available.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Customer Testimonials (showing %d):\n\n", len(testimonials))
	for _, tm := range testimonials {
		fmt.Fprintf(&b, "**%s** - %s  \n", tm.ClientName, tm.EventType)
		fmt.Fprintf(&b, "%q  \n", tm.Message)
		if tm.Rating > 0 {
			fmt.Fprintf(&b, "Rating: %.1f/5  \n", tm.Rating)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (t *ToolRouter) searchFAQ(ctx context.Context, query string) (string, error) {
	faqs, err := t.repo.SearchFAQs(ctx, query, faqSearchLimit)
	if err != nil {
		return "", fmt.Errorf("search faqs: %w", err)
	}
	if len(faqs) == 0 {
		return `For specific questions not covered in our FAQ, I recommend:

1. Requesting to speak with a human agent for personalized assistance
2. Visiting our website for detailed information
3. Contacting us directly via phone or email`, nil
	}

	var b strings.Builder
	b.WriteString("Here are the answers to your questions:  \n\n")
	for _, faq := range faqs {
		fmt.Fprintf(&b, "**Q: %s**  \nA: %s  \n\n", faq.Question, faq.Answer)
	}
	return b.String(), nil
}

func (t *ToolRouter) packageEnhancements(ctx context.Context, category string) (string, error) {
	enhancements, err := t.repo.ListEnhancements(ctx, strings.ToLower(category))
	if err != nil {
		return "", fmt.Errorf("list enhancements: %w", err)
	}
	if len(enhancements) == 0 {
		return "No enhancements available at the moment. Please check back later or contact us for custom options.", nil
	}

	var b strings.Builder
	b.WriteString("**Enhance Your Package**  \n")
	b.WriteString("Add these extras to make your celebration even more special:  \n\n")

	// Group by category, preserving display order within each group.
	byCategory := make(map[string][]*domain.Enhancement)
	var order []string
	for _, e := range enhancements {
		cat := titleCase(e.Category)
		if _, ok := byCategory[cat]; !ok {
			order = append(order, cat)
		}
		byCategory[cat] = append(byCategory[cat], e)
	}
	for _, cat := range order {
		fmt.Fprintf(&b, "**%s:**  \n", cat)
		for _, e := range byCategory[cat] {
			fmt.Fprintf(&b, "- **%s** - Starting at $%.0f  \n", e.Name, e.StartingPrice)
			fmt.Fprintf(&b, "  %s  \n\n", e.Description)
		}
	}

	b.WriteString("*These enhancements can be added to any package. Prices may vary based on your specific needs.*  \n")
	return b.String(), nil
}

// titleCase uppercases the first letter of an ASCII category label.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}

const bookingInfoText = `**How to Book with Lush Moments:**

1. **Browse Packages**: Choose from our Starter, Classic, Premium, or Ultimate packages
2. **Select Theme**: Pick a theme that matches your event style
3. **Fill Booking Form**: Provide event details (date, venue, guest count)
4. **Consultation**: We'll schedule a free consultation to discuss your vision
5. **Confirmation**: Receive a detailed quote and confirm your booking

**Booking Timeline:**
- We recommend booking 4-6 weeks in advance for best availability
- Rush bookings (less than 2 weeks) may be available with limited options
- Peak seasons (holidays, summer) book up quickly

**What You'll Need:**
- Event date and time
- Venue location
- Approximate guest count
- Budget range
- Theme preferences

You can book directly through our website's booking page or request to speak with a human agent for personalized assistance.`

// Declarations exports the tool surface as genai function declarations. Tool
// descriptions carry the specific-over-general preference: the model is told
// to reach for the narrow lookup when it applies.
func (t *ToolRouter) Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        toolPackagesInfo,
			Description: "Get information about all available event decoration packages: names, descriptions and pricing. Use this for general package inquiries only; prefer get_package_by_name when the customer names a package.",
		},
		{
			Name:        toolPackageByName,
			Description: "Get detailed information about a specific package by name, including what's included. Use this when the customer asks about a specific package like 'starter', 'classic', 'premium' or 'ultimate'.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"package_name": {
						Type:        genai.TypeString,
						Description: "The name of the package to search for (e.g. 'starter', 'ultimate', 'premium')",
					},
				},
				Required: []string{"package_name"},
			},
		},
		{
			Name:        toolPackagesByPrice,
			Description: "Get packages within a price budget and suggest the best value. Use this when the customer mentions a budget, affordable options, or packages under a certain price.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"max_price": {
						Type:        genai.TypeNumber,
						Description: "Maximum price the customer is willing to spend (e.g. 500, 1000, 2000)",
					},
				},
				Required: []string{"max_price"},
			},
		},
		{
			Name:        toolThemesInfo,
			Description: "Get information about all available decoration themes. Use this for general theme inquiries only; prefer get_theme_by_name when the customer names a theme.",
		},
		{
			Name:        toolThemeByName,
			Description: "Get detailed information about a specific theme by name. Use this when the customer asks about a specific theme like 'romantic', 'rustic' or 'modern'.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"theme_name": {
						Type:        genai.TypeString,
						Description: "The name of the theme to search for",
					},
				},
				Required: []string{"theme_name"},
			},
		},
		{
			Name:        toolGalleryItems,
			Description: "Get recent gallery items showcasing past event decorations. Use this to show examples of previous work.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"limit": {
						Type:        genai.TypeInteger,
						Description: "Number of gallery items to return (default 5)",
					},
				},
			},
		},
		{
			Name:        toolTestimonials,
			Description: "Get customer testimonials and reviews. Use this when customers ask about reviews or past experiences.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"limit": {
						Type:        genai.TypeInteger,
						Description: "Number of testimonials to return (default 3)",
					},
				},
			},
		},
		{
			Name:        toolBookingInfo,
			Description: "Get information about how to book an event or consultation. Use this when customers ask about the booking process or availability.",
		},
		{
			Name:        toolSearchFAQ,
			Description: "Search frequently asked questions about Lush Moments services. Use this for general questions about services, policies, payment and delivery.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {
						Type:        genai.TypeString,
						Description: "The question or topic to search for",
					},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        toolPackageEnhancements,
			Description: "Get available package enhancements and add-ons. Use this when customers ask about extras, add-ons, or want to enhance their package.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"category": {
						Type:        genai.TypeString,
						Description: "Optional category filter (floral, entertainment, decor, food, furniture)",
					},
				},
			},
		},
	}
}
