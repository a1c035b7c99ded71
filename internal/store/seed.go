package store

import (
	"context"
	"fmt"
	"log/slog"
)

// Seed populates catalog tables with the default Lush Moments business data.
// Each table is seeded only when empty, so restarts and tests are safe.
func (s *SQLiteStore) Seed(ctx context.Context) error {
	if err := s.seedPackages(ctx); err != nil {
		return err
	}
	if err := s.seedThemes(ctx); err != nil {
		return err
	}
	if err := s.seedEnhancements(ctx); err != nil {
		return err
	}
	if err := s.seedFAQs(ctx); err != nil {
		return err
	}
	if err := s.seedTestimonials(ctx); err != nil {
		return err
	}
	if err := s.seedGallery(ctx); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) tableEmpty(ctx context.Context, table string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		return false, fmt.Errorf("count %s: %w", table, err)
	}
	return count == 0, nil
}

type seedPackage struct {
	title        string
	description  string
	price        float64
	isPopular    bool
	displayOrder int
	items        []string
}

func (s *SQLiteStore) seedPackages(ctx context.Context) error {
	empty, err := s.tableEmpty(ctx, "packages")
	if err != nil || !empty {
		return err
	}

	packages := []seedPackage{
		{
			title:        "Starter Package",
			description:  "Perfect for small intimate gatherings and events",
			price:        500,
			displayOrder: 1,
			items: []string{
				"Venue accommodation for up to 50 guests",
				"Basic catering services with 3 meal options",
				"Standard decoration package",
				"4 hours of event time",
				"Basic sound system",
			},
		},
		{
			title:        "Classic Package",
			description:  "Ideal for medium-sized events with comprehensive services",
			price:        1200,
			isPopular:    true,
			displayOrder: 2,
			items: []string{
				"Venue accommodation for up to 100 guests",
				"Full catering with 5 meal options and beverages",
				"Premium decoration package with centerpieces",
				"Professional photography (4 hours)",
				"Advanced sound system with wireless microphones",
				"Dedicated event coordinator",
				"6 hours of event time",
			},
		},
		{
			title:        "Premium Package",
			description:  "Complete luxury experience for unforgettable events",
			price:        2500,
			isPopular:    true,
			displayOrder: 3,
			items: []string{
				"Venue accommodation for up to 150 guests",
				"Gourmet catering with customizable menu",
				"Luxury decoration with floral arrangements",
				"Professional photography and videography (6 hours)",
				"Live entertainment (DJ or band)",
				"Premium lighting and AV equipment",
				"Dedicated event planning team",
				"Custom event signage and programs",
				"8 hours of event time",
			},
		},
		{
			title:        "Ultimate Package",
			description:  "All-inclusive premium service for grand celebrations",
			price:        5000,
			displayOrder: 4,
			items: []string{
				"Venue accommodation for up to 300 guests",
				"Premium gourmet catering with chef's special menu",
				"Designer decoration with custom themes",
				"Full media coverage (photo & video team)",
				"Live band performance",
				"Professional event coordinator and support staff",
				"Valet parking services",
				"Custom cake and dessert bar",
				"Welcome cocktail hour",
				"Personalized guest favors",
				"12 hours of event time",
			},
		},
	}

	for _, pkg := range packages {
		popular := 0
		if pkg.isPopular {
			popular = 1
		}
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO packages (title, description, price, is_popular, display_order) VALUES (?, ?, ?, ?, ?)`,
			pkg.title, pkg.description, pkg.price, popular, pkg.displayOrder,
		)
		if err != nil {
			return fmt.Errorf("seed package %q: %w", pkg.title, err)
		}
		packageID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("seed package %q id: %w", pkg.title, err)
		}
		for idx, item := range pkg.items {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO package_items (package_id, item_text, display_order) VALUES (?, ?, ?)`,
				packageID, item, idx,
			); err != nil {
				return fmt.Errorf("seed package item for %q: %w", pkg.title, err)
			}
		}
	}

	slog.Info("Seeded packages", "count", len(packages))
	return nil
}

func (s *SQLiteStore) seedThemes(ctx context.Context) error {
	empty, err := s.tableEmpty(ctx, "themes")
	if err != nil || !empty {
		return err
	}

	themes := [][2]string{
		{"Romantic Garden", "Elegant outdoor setting with floral arrangements and soft lighting"},
		{"Modern Minimalist", "Clean lines, contemporary design, and sophisticated aesthetics"},
		{"Rustic Charm", "Natural wood elements, vintage decor, and warm ambiance"},
		{"Classic Elegance", "Timeless sophistication with luxurious details"},
		{"Tropical Paradise", "Vibrant colors, exotic flowers, and island-inspired decor"},
		{"Corporate Professional", "Sleek and professional setup for business events"},
	}
	for _, theme := range themes {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO themes (name, description) VALUES (?, ?)`, theme[0], theme[1],
		); err != nil {
			return fmt.Errorf("seed theme %q: %w", theme[0], err)
		}
	}

	slog.Info("Seeded themes", "count", len(themes))
	return nil
}

func (s *SQLiteStore) seedEnhancements(ctx context.Context) error {
	empty, err := s.tableEmpty(ctx, "enhancements")
	if err != nil || !empty {
		return err
	}

	type enhancement struct {
		name        string
		description string
		price       float64
		category    string
	}
	enhancements := []enhancement{
		{"Floral Arrangements", "Fresh or silk floral centerpieces and accents", 150, "floral"},
		{"Photo Booth Setup", "Custom backdrop with props and signage", 300, "entertainment"},
		{"Lighting Design", "Ambient uplighting and string lights", 200, "decor"},
		{"Dessert Table Styling", "Complete dessert display with decor", 250, "food"},
		{"Lounge Area", "Comfortable seating area with decor", 400, "furniture"},
		{"Custom Signage", "Personalized welcome and directional signs", 100, "decor"},
		{"Balloon Installations", "Custom balloon arches and garlands", 180, "decor"},
		{"DJ Services", "Professional DJ with sound system", 500, "entertainment"},
	}
	for idx, e := range enhancements {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO enhancements (name, description, starting_price, category, display_order, is_available) VALUES (?, ?, ?, ?, ?, 1)`,
			e.name, e.description, e.price, e.category, idx+1,
		); err != nil {
			return fmt.Errorf("seed enhancement %q: %w", e.name, err)
		}
	}

	slog.Info("Seeded enhancements", "count", len(enhancements))
	return nil
}

func (s *SQLiteStore) seedFAQs(ctx context.Context) error {
	empty, err := s.tableEmpty(ctx, "faqs")
	if err != nil || !empty {
		return err
	}

	type faq struct {
		question string
		answer   string
		category string
	}
	faqs := []faq{
		{
			"How do I book your services?",
			"You can book our services through our website's booking form, call us directly, or send us an email. We'll schedule a free consultation to discuss your event details.",
			"booking",
		},
		{
			"What is your cancellation policy?",
			"Full refund if cancelled 30+ days in advance. 50% refund for 15-29 days. No refund for cancellations less than 14 days before the event.",
			"payment",
		},
		{
			"Do you provide setup and breakdown services?",
			"Yes! We handle complete setup 2-4 hours before your event and full breakdown after. This is included in all our packages.",
			"delivery",
		},
		{
			"Can I customize my package?",
			"Absolutely! All packages can be fully customized to match your theme, color scheme, and specific requirements. We also offer add-on enhancements.",
			"customization",
		},
		{
			"What forms of payment do you accept?",
			"We accept credit cards, debit cards, and bank transfers. A 30% deposit is required to secure your booking, with the balance due 7 days before the event.",
			"payment",
		},
		{
			"How far in advance should I book?",
			"We recommend booking 4-6 weeks in advance for best availability. Rush bookings may be available for an additional fee, but options may be limited.",
			"booking",
		},
		{
			"Do you serve areas outside your local region?",
			"Yes! We can travel to venues outside our standard service area. Additional travel fees may apply depending on the distance.",
			"delivery",
		},
		{
			"What's included in the free consultation?",
			"During your free consultation, we discuss your vision, budget, and preferences. We can meet in-person, via video call, or phone. We'll also provide mock-ups and design samples.",
			"consultation",
		},
	}
	for idx, f := range faqs {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO faqs (question, answer, category, display_order, is_active) VALUES (?, ?, ?, ?, 1)`,
			f.question, f.answer, f.category, idx+1,
		); err != nil {
			return fmt.Errorf("seed faq %q: %w", f.question, err)
		}
	}

	slog.Info("Seeded FAQs", "count", len(faqs))
	return nil
}

func (s *SQLiteStore) seedTestimonials(ctx context.Context) error {
	empty, err := s.tableEmpty(ctx, "testimonials")
	if err != nil || !empty {
		return err
	}

	type testimonial struct {
		name      string
		eventType string
		message   string
		rating    float64
	}
	testimonials := []testimonial{
		{"Sarah Johnson", "wedding", "Lush Moments made our wedding day absolutely perfect! The attention to detail was incredible, and our guests couldn't stop raving about the venue and food.", 5},
		{"Michael Chen", "corporate", "Outstanding service from start to finish. Our corporate event was a huge success thanks to the professional team at Lush Moments. Highly recommended!", 5},
		{"Emily Rodriguez", "quinceanera", "Beautiful venue, amazing food, and professional staff. Couldn't have asked for more for our daughter's quinceañera!", 4.8},
		{"David Thompson", "anniversary", "The team went above and beyond to make our anniversary celebration special. Every detail was perfect!", 5},
		{"Lisa Anderson", "corporate", "Professional, reliable, and creative. Lush Moments transformed our vision into reality for our company's gala event.", 4.9},
	}
	for _, t := range testimonials {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO testimonials (client_name, event_type, message, rating) VALUES (?, ?, ?, ?)`,
			t.name, t.eventType, t.message, t.rating,
		); err != nil {
			return fmt.Errorf("seed testimonial %q: %w", t.name, err)
		}
	}

	slog.Info("Seeded testimonials", "count", len(testimonials))
	return nil
}

func (s *SQLiteStore) seedGallery(ctx context.Context) error {
	empty, err := s.tableEmpty(ctx, "gallery_items")
	if err != nil || !empty {
		return err
	}

	type galleryItem struct {
		title       string
		description string
		category    string
	}
	items := []galleryItem{
		{"Elegant Wedding Reception", "Beautiful wedding setup with romantic lighting and floral arrangements", "wedding"},
		{"Corporate Gala Event", "Professional corporate event with modern setup", "corporate"},
		{"Birthday Party Celebration", "Colorful and vibrant birthday party setup", "birthday"},
		{"Garden Wedding Ceremony", "Outdoor garden wedding with natural beauty", "wedding"},
		{"Anniversary Dinner Setup", "Intimate anniversary celebration with elegant table settings", "anniversary"},
	}
	for _, item := range items {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO gallery_items (title, description, category) VALUES (?, ?, ?)`,
			item.title, item.description, item.category,
		); err != nil {
			return fmt.Errorf("seed gallery item %q: %w", item.title, err)
		}
	}

	slog.Info("Seeded gallery items", "count", len(items))
	return nil
}
