package store

import (
	"context"
	"fmt"

	"github.com/lushmoments/lush-chat/internal/domain"
)

// Catalog reads. These back the agent's tools and are strictly read-only:
// nothing in this file mutates state.

// ListPackages returns all packages ordered by price ascending.
func (s *SQLiteStore) ListPackages(ctx context.Context) ([]*domain.Package, error) {
	query := `SELECT id, title, description, price, is_popular, display_order FROM packages ORDER BY price`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query packages: %w", err)
	}
	defer closeRows(rows, "packages")

	var pkgs []*domain.Package
	for rows.Next() {
		var pkg domain.Package
		var popular int
		if err := rows.Scan(&pkg.ID, &pkg.Title, &pkg.Description, &pkg.Price, &popular, &pkg.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		pkg.IsPopular = popular != 0
		pkgs = append(pkgs, &pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packages: %w", err)
	}
	return pkgs, nil
}

// FindPackagesByName returns packages whose title matches the fragment
// case-insensitively, with their item lines loaded.
func (s *SQLiteStore) FindPackagesByName(ctx context.Context, name string) ([]*domain.Package, error) {
	query := `
		SELECT id, title, description, price, is_popular, display_order
		FROM packages WHERE title LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY display_order`
	rows, err := s.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("query packages by name: %w", err)
	}
	defer closeRows(rows, "packages by name")

	var pkgs []*domain.Package
	for rows.Next() {
		var pkg domain.Package
		var popular int
		if err := rows.Scan(&pkg.ID, &pkg.Title, &pkg.Description, &pkg.Price, &popular, &pkg.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		pkg.IsPopular = popular != 0
		pkgs = append(pkgs, &pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packages by name: %w", err)
	}

	for _, pkg := range pkgs {
		items, err := s.packageItems(ctx, pkg.ID)
		if err != nil {
			return nil, err
		}
		pkg.Items = items
	}
	return pkgs, nil
}

func (s *SQLiteStore) packageItems(ctx context.Context, packageID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_text FROM package_items WHERE package_id = ? ORDER BY display_order`, packageID)
	if err != nil {
		return nil, fmt.Errorf("query package items: %w", err)
	}
	defer closeRows(rows, "package items")

	var items []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan package item row: %w", err)
		}
		items = append(items, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate package items: %w", err)
	}
	return items, nil
}

// ListThemes returns all decoration themes.
func (s *SQLiteStore) ListThemes(ctx context.Context) ([]*domain.Theme, error) {
	return s.queryThemes(ctx, `SELECT id, name, description FROM themes ORDER BY id`)
}

// FindThemesByName returns themes matching the name fragment.
func (s *SQLiteStore) FindThemesByName(ctx context.Context, name string) ([]*domain.Theme, error) {
	return s.queryThemes(ctx,
		`SELECT id, name, description FROM themes WHERE name LIKE '%' || ? || '%' COLLATE NOCASE ORDER BY id`, name)
}

func (s *SQLiteStore) queryThemes(ctx context.Context, query string, args ...any) ([]*domain.Theme, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query themes: %w", err)
	}
	defer closeRows(rows, "themes")

	var themes []*domain.Theme
	for rows.Next() {
		var theme domain.Theme
		if err := rows.Scan(&theme.ID, &theme.Name, &theme.Description); err != nil {
			return nil, fmt.Errorf("scan theme row: %w", err)
		}
		themes = append(themes, &theme)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate themes: %w", err)
	}
	return themes, nil
}

// ListGalleryItems returns up to limit gallery items.
func (s *SQLiteStore) ListGalleryItems(ctx context.Context, limit int) ([]*domain.GalleryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, category FROM gallery_items ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query gallery items: %w", err)
	}
	defer closeRows(rows, "gallery items")

	var items []*domain.GalleryItem
	for rows.Next() {
		var item domain.GalleryItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Category); err != nil {
			return nil, fmt.Errorf("scan gallery item row: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery items: %w", err)
	}
	return items, nil
}

// ListTestimonials returns up to limit testimonials.
func (s *SQLiteStore) ListTestimonials(ctx context.Context, limit int) ([]*domain.Testimonial, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_name, event_type, message, rating FROM testimonials ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query testimonials: %w", err)
	}
	defer closeRows(rows, "testimonials")

	var testimonials []*domain.Testimonial
	for rows.Next() {
		var t domain.Testimonial
		if err := rows.Scan(&t.ID, &t.ClientName, &t.EventType, &t.Message, &t.Rating); err != nil {
			return nil, fmt.Errorf("scan testimonial row: %w", err)
		}
		testimonials = append(testimonials, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate testimonials: %w", err)
	}
	return testimonials, nil
}

// SearchFAQs matches active FAQs against both questions and answers.
func (s *SQLiteStore) SearchFAQs(ctx context.Context, query string, limit int) ([]*domain.FAQ, error) {
	sqlQuery := `
		SELECT id, question, answer, category, display_order, is_active
		FROM faqs
		WHERE is_active = 1
		  AND (question LIKE '%' || ? || '%' COLLATE NOCASE OR answer LIKE '%' || ? || '%' COLLATE NOCASE)
		ORDER BY display_order
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, sqlQuery, query, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query faqs: %w", err)
	}
	defer closeRows(rows, "faqs")

	var faqs []*domain.FAQ
	for rows.Next() {
		var faq domain.FAQ
		var active int
		if err := rows.Scan(&faq.ID, &faq.Question, &faq.Answer, &faq.Category, &faq.DisplayOrder, &active); err != nil {
			return nil, fmt.Errorf("scan faq row: %w", err)
		}
		faq.IsActive = active != 0
		faqs = append(faqs, &faq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faqs: %w", err)
	}
	return faqs, nil
}

// ListEnhancements returns available enhancements, optionally filtered by
// category.
func (s *SQLiteStore) ListEnhancements(ctx context.Context, category string) ([]*domain.Enhancement, error) {
	query := `
		SELECT id, name, description, starting_price, category, display_order, is_available
		FROM enhancements WHERE is_available = 1`
	args := []any{}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY display_order`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query enhancements: %w", err)
	}
	defer closeRows(rows, "enhancements")

	var enhancements []*domain.Enhancement
	for rows.Next() {
		var e domain.Enhancement
		var available int
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.StartingPrice, &e.Category, &e.DisplayOrder, &available); err != nil {
			return nil, fmt.Errorf("scan enhancement row: %w", err)
		}
		e.IsAvailable = available != 0
		enhancements = append(enhancements, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enhancements: %w", err)
	}
	return enhancements, nil
}
