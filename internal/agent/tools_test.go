package agent

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lushmoments/lush-chat/internal/store"
)

func newSeededRouter(t *testing.T) *ToolRouter {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if err := repo.Seed(context.Background()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	return NewToolRouter(repo)
}

func TestDispatchPackagesInfo(t *testing.T) {
	t.Parallel()
	router := newSeededRouter(t)

	out, err := router.Dispatch(context.Background(), toolPackagesInfo, nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	for _, name := range []string{"Starter", "Classic", "Premium", "Ultimate"} {
		if !strings.Contains(out, name) {
			t.Errorf("Expected output to mention %s package", name)
		}
	}
}

func TestDispatchPackageByName(t *testing.T) {
	t.Parallel()
	router := newSeededRouter(t)

	out, err := router.Dispatch(context.Background(), toolPackageByName, map[string]any{
		"package_name": "ultimate",
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(out, "Ultimate") {
		t.Errorf("Expected Ultimate package details, got %q", out)
	}
	if !strings.Contains(out, "What's Included") {
		t.Errorf("Expected item list for exact match, got %q", out)
	}
}

func TestDispatchPackageByNameNoMatch(t *testing.T) {
	t.Parallel()
	router := newSeededRouter(t)

	out, err := router.Dispatch(context.Background(), toolPackageByName, map[string]any{
		"package_name": "platinum",
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(out, "couldn't find") {
		t.Errorf("Expected graceful no-match text, got %q", out)
	}
}

func TestDispatchPackagesByPriceRecommendsBestValue(t *testing.T) {
	t.Parallel()
	router := newSeededRouter(t)

	out, err := router.Dispatch(context.Background(), toolPackagesByPrice, map[string]any{
		"max_price": float64(1500),
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	// Starter ($500) and Classic ($1200) fit; Classic is the best value.
	if !strings.Contains(out, "Starter") || !strings.Contains(out, "Classic") {
		t.Errorf("Expected both in-budget packages, got %q", out)
	}
	if !strings.Contains(out, "Recommended:") || !strings.Contains(out, "**Classic**") {
		t.Errorf("Expected Classic recommended as best value, got %q", out)
	}
}

func TestDispatchPackagesByPriceBelowCheapest(t *testing.T) {
	t.Parallel()
	router := newSeededRouter(t)

	out, err := router.Dispatch(context.Background(), toolPackagesByPrice, map[string]any{
		"max_price": float64(100),
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(out, "most affordable") {
		t.Errorf("Expected cheapest-option fallback, got %q", out)
	}
}

func TestDispatchSearchFAQ(t *testing.T) {
	t.Parallel()
	router := newSeededRouter(t)

	out, err := router.Dispatch(context.Background(), toolSearchFAQ, map[string]any{
		"query": "deposit",
	})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(out, "Q:") {
		t.Errorf("Expected FAQ entries, got %q", out)
	}
}

func TestDispatchBookingInfoIsStatic(t *testing.T) {
	t.Parallel()
	router := newSeededRouter(t)

	out, err := router.Dispatch(context.Background(), toolBookingInfo, nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(out, "How to Book") {
		t.Errorf("Expected booking guide, got %q", out)
	}
}

func TestDispatchEnhancementsGroupedByCategory(t *testing.T) {
	t.Parallel()
	router := newSeededRouter(t)

	out, err := router.Dispatch(context.Background(), toolPackageEnhancements, nil)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !strings.Contains(out, "Enhance Your Package") {
		t.Errorf("Expected enhancement listing, got %q", out)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	t.Parallel()
	router := newSeededRouter(t)

	_, err := router.Dispatch(context.Background(), "drop_tables", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("Expected ErrUnknownTool, got %v", err)
	}
}

func TestDeclarationsCoverEveryTool(t *testing.T) {
	t.Parallel()
	router := newSeededRouter(t)

	decls := router.Declarations()
	if len(decls) != 10 {
		t.Fatalf("Expected 10 tool declarations, got %d", len(decls))
	}
	seen := map[string]bool{}
	for _, d := range decls {
		seen[d.Name] = true
	}
	for _, name := range []string{
		toolPackagesInfo, toolPackageByName, toolPackagesByPrice,
		toolThemesInfo, toolThemeByName, toolGalleryItems,
		toolTestimonials, toolBookingInfo, toolSearchFAQ, toolPackageEnhancements,
	} {
		if !seen[name] {
			t.Errorf("Missing declaration for %s", name)
		}
	}
}
