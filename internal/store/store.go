// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/lushmoments/lush-chat/internal/domain"
)

// Repository defines the interface for persisting chat sessions, the
// append-only message log, and for reading catalog data consumed by the
// agent's tools.
type Repository interface {
	// GetSession retrieves a session by id. Returns (nil, nil) if absent.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// EnsureSession returns the session for the given id, creating it with
	// handoff defaults if it does not exist. Safe under concurrent connects
	// for the same id.
	EnsureSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// LinkUser binds a session to a user id. The link is write-once: if the
	// session is already linked (to this or any other user) the call is a
	// silent no-op. A missing session is also a no-op.
	LinkUser(ctx context.Context, sessionID, userID string) error

	// TransferToHuman atomically marks a session as transferred: both
	// handoff flags flip in a single statement together with the reason.
	// Calling it on an already-transferred session is a no-op; the original
	// reason is kept.
	TransferToHuman(ctx context.Context, sessionID, reason string) error

	// ListUserSessions returns all sessions linked to a user.
	ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error)

	// AppendMessage appends one immutable entry to a session's message log.
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error

	// ListMessages returns a session's full log in timestamp order.
	ListMessages(ctx context.Context, sessionID string) ([]*domain.ChatMessage, error)

	// RecentMessages returns the last n log entries, oldest first.
	RecentMessages(ctx context.Context, sessionID string, n int) ([]*domain.ChatMessage, error)

	// CountMessages returns the number of log entries for a session.
	CountMessages(ctx context.Context, sessionID string) (int, error)

	// ListPackages returns all packages ordered by price ascending.
	ListPackages(ctx context.Context) ([]*domain.Package, error)

	// FindPackagesByName returns packages whose title matches the given
	// fragment case-insensitively, including their item lines.
	FindPackagesByName(ctx context.Context, name string) ([]*domain.Package, error)

	// ListThemes returns all decoration themes.
	ListThemes(ctx context.Context) ([]*domain.Theme, error)

	// FindThemesByName returns themes matching the given name fragment.
	FindThemesByName(ctx context.Context, name string) ([]*domain.Theme, error)

	// ListGalleryItems returns up to limit gallery items.
	ListGalleryItems(ctx context.Context, limit int) ([]*domain.GalleryItem, error)

	// ListTestimonials returns up to limit testimonials.
	ListTestimonials(ctx context.Context, limit int) ([]*domain.Testimonial, error)

	// SearchFAQs matches active FAQ entries against questions and answers.
	SearchFAQs(ctx context.Context, query string, limit int) ([]*domain.FAQ, error)

	// ListEnhancements returns available enhancements, optionally filtered
	// by category.
	ListEnhancements(ctx context.Context, category string) ([]*domain.Enhancement, error)

	// Seed populates catalog tables with default business data when empty.
	Seed(ctx context.Context) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
