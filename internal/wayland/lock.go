package wayland

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/rajveermalviya/go-wayland/wayland/client"
	ext_session_lock "github.com/rajveermalviya/go-wayland/wayland/staging/ext-session-lock-v1"

	"github.com/bnema/wayloop/backend"
	"github.com/bnema/wayloop/dpi"
	"github.com/bnema/wayloop/window"
)

// session is an ext_session_lock with one lock surface per output.
type session struct {
	lock     *ext_session_lock.ExtSessionLock
	surfaces map[uint32]*lockSurface
}

type lockSurface struct {
	id      window.ID
	output  window.OutputID
	surface *client.Surface
	role    *ext_session_lock.ExtSessionLockSurface
}

// Lock implements backend.Locker. The compositor answers with Locked, or
// with Unlocked when it refuses the lock.
func (b *Backend) Lock() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lockManager == nil {
		return fmt.Errorf("%w: ext_session_lock_manager_v1", backend.ErrUnsupported)
	}
	if b.session != nil {
		return errors.New("wayland: session already locked")
	}

	lock, err := b.lockManager.Lock()
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}
	s := &session{lock: lock, surfaces: make(map[uint32]*lockSurface)}
	lock.SetLockedHandler(func(ext_session_lock.ExtSessionLockLockedEvent) {
		b.log.Debug("session locked")
		b.emit(backend.Locked{})
	})
	lock.SetFinishedHandler(func(ext_session_lock.ExtSessionLockFinishedEvent) {
		b.mu.Lock()
		if b.session == s {
			if err := s.destroy(false); err != nil {
				b.log.Warn("failed to destroy finished lock", "err", err)
			}
			b.session = nil
		}
		b.mu.Unlock()
		b.log.Debug("session lock finished by the compositor")
		b.emit(backend.Unlocked{})
	})

	for _, id := range slices.Sorted(maps.Keys(b.outputs)) {
		if err := b.newLockSurface(s, id); err != nil {
			s.destroy(true)
			return err
		}
	}
	b.session = s
	return nil
}

// newLockSurface covers output id. Caller holds mu.
func (b *Backend) newLockSurface(s *session, id uint32) error {
	surface, err := b.compositor.CreateSurface()
	if err != nil {
		return fmt.Errorf("create lock surface: %w", err)
	}
	role, err := s.lock.GetLockSurface(surface, b.outputs[id].proxy)
	if err != nil {
		surface.Destroy()
		return fmt.Errorf("get lock surface: %w", err)
	}

	l := &lockSurface{id: b.nextID(surface), output: window.OutputID(id), surface: surface, role: role}
	role.SetConfigureHandler(func(e ext_session_lock.ExtSessionLockSurfaceConfigureEvent) {
		b.mu.Lock()
		err := role.AckConfigure(e.Serial)
		b.mu.Unlock()
		if err != nil {
			b.log.Warn("failed to ack lock configure", "surface", l.id, "err", err)
			return
		}
		b.emit(backend.LockSurfaceConfigure{Surface: l.id, Output: l.output, Size: dpi.Size(e.Width, e.Height)})
	})
	s.surfaces[surface.ID()] = l
	return nil
}

// Unlock implements backend.Locker.
func (b *Backend) Unlock() error {
	b.mu.Lock()
	s := b.session
	if s == nil {
		b.mu.Unlock()
		return errors.New("wayland: session not locked")
	}
	b.session = nil
	err := s.destroy(true)
	b.mu.Unlock()

	// Unlock runs on the goroutine draining the events channel.
	go b.emit(backend.Unlocked{})
	return err
}

// destroy releases the lock surfaces, then the lock itself. unlock asks the
// compositor to unlock; a finished lock is only destroyed. Caller holds mu.
func (s *session) destroy(unlock bool) error {
	var errs []error
	for key, l := range s.surfaces {
		errs = append(errs, l.role.Destroy(), l.surface.Destroy())
		delete(s.surfaces, key)
	}
	if unlock {
		errs = append(errs, s.lock.UnlockAndDestroy())
	} else {
		errs = append(errs, s.lock.Destroy())
	}
	return errors.Join(errs...)
}

// surfaceOf returns the protocol surface of a window or lock surface.
// Caller holds mu.
func (b *Backend) surfaceOf(id window.ID) (*client.Surface, bool) {
	if t, ok := b.windows[id.Object()]; ok && t.id == id {
		return t.surface, true
	}
	if b.session != nil {
		if l, ok := b.session.surfaces[id.Object()]; ok && l.id == id {
			return l.surface, true
		}
	}
	return nil, false
}

var _ backend.Locker = (*Backend)(nil)
