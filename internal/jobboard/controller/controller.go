// Package controller implements the business logic (service layer) of the
// job board: the application lifecycle, the notifications it emits, and the
// profile, offer and job request services around it.
package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/db"
	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
)

// EventDispatcher is woken once notifications have been committed, so that
// they are pushed without waiting for the next outbox poll.
type EventDispatcher interface {
	Wake()
}

// UserStore resolves the authenticated principal to its user record.
type UserStore interface {
	EnsureUser(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Transactor runs fn inside a database transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
}

type nopDispatcher struct{}

func (nopDispatcher) Wake() {}

func utcNow() time.Time { return time.Now().UTC() }

// resolveActor maps the e-mail of the authenticated principal to a user,
// registering it on its first request.
func resolveActor(ctx context.Context, users UserStore, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, e.ErrUnauthorized
	}
	user, err := users.EnsureUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, nil
}

func requireCompany(ctx context.Context, users UserStore, email string) (*models.User, error) {
	user, err := resolveActor(ctx, users, email)
	if err != nil {
		return nil, err
	}
	if !user.IsCompany() {
		return nil, fmt.Errorf("%w: company access only", e.ErrForbidden)
	}
	return user, nil
}

func requireIndividual(ctx context.Context, users UserStore, email string) (*models.User, error) {
	user, err := resolveActor(ctx, users, email)
	if err != nil {
		return nil, err
	}
	if !user.IsIndividual() {
		return nil, fmt.Errorf("%w: individual access only", e.ErrForbidden)
	}
	return user, nil
}

// displayName is the name shown to the other party of an application.
func displayName(u *models.User) string {
	if name := u.CompanyName(); name != "" {
		return name
	}
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Email
}

// normalizeTitles trims titles and drops empty and repeated entries,
// keeping the submitted order.
func normalizeTitles(titles []string) []string {
	seen := make(map[string]struct{}, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
