// Package identity tracks who is signed in on this machine. The signed-in
// user survives restarts through a small JSON state file; the user records
// themselves live in the database.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/alexanderramin/studylog/internal/fileutil"
	"github.com/alexanderramin/studylog/internal/repository"
	"github.com/fsnotify/fsnotify"
)

// StateFile is the name of the signed-in state file inside the state dir.
const StateFile = "identity.json"

// ChangeFunc receives the new identity, or nil after sign-out.
type ChangeFunc func(*domain.Identity)

type state struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	SignedInAt time.Time `json:"signed_in_at"`
}

// Provider signs users in and out and tells listeners about it.
type Provider struct {
	users repository.UserRepo
	path  string

	mu        sync.Mutex
	listeners map[uint64]ChangeFunc
	next      uint64

	// deliverMu is held across every state file change and its
	// notification, so listeners see changes in order and Refresh never
	// repeats one. It also guards lastID and delivered.
	deliverMu sync.Mutex
	lastID    string
	delivered bool
}

// NewProvider creates a Provider whose state lives in stateDir.
func NewProvider(users repository.UserRepo, stateDir string) *Provider {
	return &Provider{
		users:     users,
		path:      filepath.Join(stateDir, StateFile),
		listeners: make(map[uint64]ChangeFunc),
	}
}

// SignIn registers email on first use and makes it the current identity.
// On failure the previous identity stays current.
func (p *Provider) SignIn(ctx context.Context, email string) (*domain.Identity, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	id, err := p.users.GetOrCreateByEmail(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuth, err)
	}

	data, err := json.MarshalIndent(state{UserID: id.ID, Email: id.Email, SignedInAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encoding state: %w", domain.ErrAuth, err)
	}

	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()
	if err := fileutil.WriteFileAtomic(p.path, data); err != nil {
		return nil, fmt.Errorf("%w: saving state: %w", domain.ErrAuth, err)
	}
	p.deliverLocked(id)
	return id, nil
}

// SignOut clears the current identity.
func (p *Provider) SignOut(ctx context.Context) error {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	cur, err := p.Current(ctx)
	if err != nil {
		return err
	}
	if cur == nil {
		return fmt.Errorf("%w: not signed in", domain.ErrAuth)
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: clearing state: %w", domain.ErrAuth, err)
	}
	p.deliverLocked(nil)
	return nil
}

// Current returns the signed-in identity, or nil when signed out. A state
// file naming a user that no longer exists counts as signed out.
func (p *Provider) Current(ctx context.Context) (*domain.Identity, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading state: %w", domain.ErrAuth, err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: parsing state %s: %w", domain.ErrAuth, p.path, err)
	}
	if st.UserID == "" {
		return nil, nil
	}

	id, err := p.users.GetByID(ctx, st.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrAuth, err)
	}
	return id, nil
}

// OnIdentityChange calls fn with the current identity right away and again
// after every sign-in or sign-out made through this Provider, or picked up by
// Watch. The returned func detaches fn and may be called more than once.
// fn must not sign in or out itself.
func (p *Provider) OnIdentityChange(ctx context.Context, fn ChangeFunc) (detach func(), err error) {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	cur, err := p.Current(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	key := p.next
	p.next++
	p.listeners[key] = fn
	p.mu.Unlock()

	p.lastID, p.delivered = idOf(cur), true
	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, key)
			p.mu.Unlock()
		})
	}, nil
}

// Refresh re-reads the state file and notifies listeners when the identity
// differs from the one they last received.
func (p *Provider) Refresh(ctx context.Context) error {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	cur, err := p.Current(ctx)
	if err != nil {
		return err
	}
	if p.delivered && idOf(cur) == p.lastID {
		return nil
	}
	p.deliverLocked(cur)
	return nil
}

// Watch follows sign-ins and sign-outs made by other processes sharing the
// state dir, calling Refresh once writes settle. It blocks until ctx is
// cancelled.
func (p *Provider) Watch(ctx context.Context, debounce time.Duration) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: sign-in replaces the file by rename.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	// Catch changes made before the watch was in place.
	if err := p.Refresh(ctx); err != nil {
		return fmt.Errorf("refreshing identity: %w", err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != StateFile {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}

		case <-timer.C:
			if err := p.Refresh(ctx); err != nil {
				return fmt.Errorf("refreshing identity: %w", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching identity: %w", err)
		}
	}
}

func (p *Provider) deliverLocked(id *domain.Identity) {
	p.lastID, p.delivered = idOf(id), true

	p.mu.Lock()
	fns := make([]ChangeFunc, 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

func idOf(id *domain.Identity) string {
	if id == nil {
		return ""
	}
	return id.ID
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrAuth)
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed || addr.Name != "" {
		return "", fmt.Errorf("%w: invalid email address %q", domain.ErrAuth, trimmed)
	}
	return strings.ToLower(addr.Address), nil
}
