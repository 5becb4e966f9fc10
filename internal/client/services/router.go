package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/bakerykit/internal/client/models"
	"github.com/dmitrijs2005/bakerykit/internal/logging"
)

// RoleRouter decides which navigation surface is mounted. The role is
// re-read from the store on every mount, focus and session transition,
// since it can change server-side between sessions.
type RoleRouter struct {
	session *SessionService
	log     logging.Logger

	mu        sync.Mutex
	current   models.Surface
	listeners []func(models.Surface)

	unsubscribe func()
}

func NewRoleRouter(session *SessionService, log logging.Logger) *RoleRouter {
	if log == nil {
		log = logging.Nop()
	}
	r := &RoleRouter{session: session, log: log.With("component", "router")}
	r.unsubscribe = session.Subscribe(func(models.StateChange) {
		r.resolve(context.Background())
	})
	return r
}

// Close stops following session transitions.
func (r *RoleRouter) Close() {
	r.unsubscribe()
}

// Mount resolves the surface for a navigation-surface mount.
func (r *RoleRouter) Mount(ctx context.Context) models.Surface {
	return r.resolve(ctx)
}

// Focus resolves the surface again on return to foreground.
func (r *RoleRouter) Focus(ctx context.Context) models.Surface {
	return r.resolve(ctx)
}

// Current returns the last resolved surface without reading the store.
func (r *RoleRouter) Current() models.Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnChange registers fn to run whenever the resolved surface changes.
func (r *RoleRouter) OnChange(fn func(models.Surface)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *RoleRouter) resolve(ctx context.Context) models.Surface {
	rec, err := r.session.Current(ctx)
	if err != nil {
		r.log.Warn(ctx, "failed to read credentials", "error", err)
		rec = models.Credentials{}
	}
	next := surfaceFor(rec)

	r.mu.Lock()
	changed := next != r.current
	r.current = next
	fns := append([]func(models.Surface){}, r.listeners...)
	r.mu.Unlock()

	if changed {
		r.log.Debug(ctx, "surface changed", "surface", next.String())
		for _, fn := range fns {
			fn(next)
		}
	}
	return next
}

// surfaceFor mounts nothing without a session, the admin surface for
// admins and the user surface for any other role, absent included.
func surfaceFor(rec models.Credentials) models.Surface {
	switch {
	case !rec.Authenticated():
		return models.SurfaceNone
	case rec.Role == models.RoleAdmin:
		return models.SurfaceAdmin
	default:
		return models.SurfaceUser
	}
}
