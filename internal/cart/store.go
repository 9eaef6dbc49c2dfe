package cart

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/almahra/storefront/pkg/cartapi"
	pkgerrors "github.com/almahra/storefront/pkg/errors"
	"github.com/almahra/storefront/pkg/logger"
)

// Mode says which code path owns the cart.
type Mode string

const (
	ModeGuest         Mode = "guest"
	ModeAuthenticated Mode = "authenticated"
)

const (
	opAdd     = "add_item"
	opRemove  = "remove_item"
	opUpdate  = "update_quantity"
	opClear   = "clear"
	opToggle  = "toggle_open"
	opLogin   = "login"
	opLogout  = "logout"
	opRefresh = "refresh"
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeNoop     = "noop"
)

// Remote is the server cart consumed in authenticated mode.
type Remote interface {
	GetCart(ctx context.Context) (*cartapi.Cart, error)
	AddItem(ctx context.Context, req cartapi.AddItemRequest) error
	UpdateItem(ctx context.Context, itemID string, req cartapi.UpdateItemRequest) error
	RemoveItem(ctx context.Context, itemID string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Persistence stores the guest snapshot.
type Persistence interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state State) error
}

// AuthStatus reports whether the shopper currently holds a backend session.
type AuthStatus interface {
	Authenticated() bool
}

// Recorder receives mutation metrics.
type Recorder interface {
	ObserveMutation(op, mode, outcome string, elapsed time.Duration)
	SetItemCount(mode string, count int)
}

// Params bundles the store's collaborators.
type Params struct {
	Remote      Remote
	Orders      OrderPlacer
	Persistence Persistence
	Auth        AuthStatus
	Notifier    Notifier
	Metrics     Recorder
	Logger      *logger.Logger
}

// Store owns the cart state. All writes go through Reduce under mu; remote calls
// are made without holding it.
type Store struct {
	mu    sync.RWMutex
	state State
	mode  Mode
	epoch uint64

	saveMu  sync.Mutex
	loading atomic.Int32

	remote      Remote
	orders      OrderPlacer
	persistence Persistence
	auth        AuthStatus
	notifier    Notifier
	metrics     Recorder
	logg        *logger.Logger
}

// NewStore builds a guest-mode store hydrated from the persisted snapshot.
// Call SyncAuth afterwards to move into authenticated mode when a session exists.
func NewStore(ctx context.Context, p Params) (*Store, error) {
	if p.Remote == nil {
		return nil, fmt.Errorf("remote cart client required")
	}
	if p.Persistence == nil {
		return nil, fmt.Errorf("cart persistence required")
	}
	if p.Auth == nil {
		return nil, fmt.Errorf("auth status reader required")
	}

	s := &Store{
		state:       derive(nil, false),
		mode:        ModeGuest,
		remote:      p.Remote,
		orders:      p.Orders,
		persistence: p.Persistence,
		auth:        p.Auth,
		notifier:    p.Notifier,
		metrics:     p.Metrics,
		logg:        p.Logger,
	}
	if s.notifier == nil {
		s.notifier = discardNotifier{}
	}
	if s.metrics == nil {
		s.metrics = noopRecorder{}
	}
	if s.logg == nil {
		s.logg = logger.New(logger.Options{ServiceName: "cart", Output: io.Discard})
	}

	ctx = s.logg.WithCartMode(ctx, string(ModeGuest))
	snapshot, err := s.persistence.Load(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.snapshot.load_failed")
	}
	if snapshot != nil {
		s.state = Reduce(s.state, LoadCommand{Items: snapshot.Items})
		s.logg.Info(s.logg.WithField(ctx, "item_count", s.state.ItemCount), "cart.snapshot.restored")
	}
	s.metrics.SetItemCount(string(ModeGuest), s.state.ItemCount)

	return s, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Loading reports whether any remote call is in flight.
func (s *Store) Loading() bool {
	return s.loading.Load() > 0
}

// AddItem adds quantity of (product, variant). A zero quantity means one.
func (s *Store) AddItem(ctx context.Context, product Product, variant *Variant, quantity int) error {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if strings.TrimSpace(product.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	lineID := LineID(product.ID, variant)
	ctx = s.logg.WithLineID(ctx, lineID)
	start := time.Now()

	handled, rejected, epoch := s.runGuest(ctx, func(state State) guestStep {
		existing := 0
		if line, ok := state.Find(lineID); ok {
			existing = line.Quantity
		}
		if limit, tracked := StockLimit(product, variant); tracked && existing+quantity > limit {
			return guestStep{notice: &Notification{Type: NotificationWarning, Message: guestStockMessage(limit), LineID: lineID}}
		}
		return guestStep{next: Reduce(state, AddCommand{Product: product, Variant: variant, Quantity: quantity}), apply: true}
	})
	if handled {
		s.observe(opAdd, ModeGuest, guestOutcome(rejected), start)
		return nil
	}

	err := s.addRemote(ctx, epoch, lineID, product, variant, quantity)
	s.observe(opAdd, ModeAuthenticated, outcomeOf(err), start)
	return err
}

// RemoveItem deletes a line. Unknown lines, and authenticated lines never synced
// with the server, are ignored.
func (s *Store) RemoveItem(ctx context.Context, lineID string) error {
	ctx = s.logg.WithLineID(ctx, lineID)
	start := time.Now()

	handled, _, epoch := s.runGuest(ctx, func(state State) guestStep {
		if _, ok := state.Find(lineID); !ok {
			return guestStep{}
		}
		return guestStep{next: Reduce(state, RemoveCommand{LineID: lineID}), apply: true}
	})
	if handled {
		s.observe(opRemove, ModeGuest, outcomeOK, start)
		return nil
	}

	line, ok := s.syncedLine(lineID)
	if !ok {
		s.logg.Debug(ctx, "cart.remove_item.skipped")
		s.observe(opRemove, ModeAuthenticated, outcomeNoop, start)
		return nil
	}

	err := s.removeRemote(ctx, epoch, line)
	s.observe(opRemove, ModeAuthenticated, outcomeOf(err), start)
	return err
}

// UpdateQuantity sets a line's quantity; zero or less removes it.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, lineID)
	}

	ctx = s.logg.WithLineID(ctx, lineID)
	start := time.Now()

	handled, rejected, epoch := s.runGuest(ctx, func(state State) guestStep {
		line, ok := state.Find(lineID)
		if !ok {
			return guestStep{}
		}
		if limit, tracked := StockLimit(line.Product, line.Variant); tracked && quantity > limit {
			return guestStep{notice: &Notification{Type: NotificationWarning, Message: guestStockMessage(limit), LineID: lineID}}
		}
		return guestStep{next: Reduce(state, UpdateQuantityCommand{LineID: lineID, Quantity: quantity}), apply: true}
	})
	if handled {
		s.observe(opUpdate, ModeGuest, guestOutcome(rejected), start)
		return nil
	}

	line, ok := s.syncedLine(lineID)
	if !ok {
		s.logg.Debug(ctx, "cart.update_quantity.skipped")
		s.observe(opUpdate, ModeAuthenticated, outcomeNoop, start)
		return nil
	}

	err := s.updateRemote(ctx, epoch, line, quantity)
	s.observe(opUpdate, ModeAuthenticated, outcomeOf(err), start)
	return err
}

// ClearCart empties the cart locally first. The remote clear is best effort and
// its failure is only logged.
func (s *Store) ClearCart(ctx context.Context) error {
	start := time.Now()

	s.mu.Lock()
	mode := s.mode
	s.state = Reduce(s.state, ClearCommand{})
	s.mu.Unlock()
	s.metrics.SetItemCount(string(mode), 0)

	ctx = s.logg.WithCartMode(ctx, string(mode))
	if mode == ModeGuest {
		s.persist(ctx)
		s.observe(opClear, mode, outcomeOK, start)
		return nil
	}

	done := s.beginRemote()
	err := s.remote.Clear(ctx)
	done()
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.clear.remote_failed")
	}
	s.observe(opClear, mode, outcomeOf(err), start)
	return nil
}

// ToggleOpen flips the visibility flag and returns the new value.
func (s *Store) ToggleOpen(ctx context.Context) bool {
	start := time.Now()

	s.mu.Lock()
	s.state = Reduce(s.state, ToggleOpenCommand{})
	isOpen := s.state.IsOpen
	mode := s.mode
	s.mu.Unlock()

	if mode == ModeGuest {
		s.persist(s.logg.WithCartMode(ctx, string(mode)))
	}
	s.observe(opToggle, mode, outcomeOK, start)
	return isOpen
}

// Login switches to authenticated mode. Guest lines are dropped, the guest
// snapshot is emptied, and the server cart replaces local state.
func (s *Store) Login(ctx context.Context) error {
	start := time.Now()

	s.mu.Lock()
	dropped := s.state.ItemCount
	s.mode = ModeAuthenticated
	s.epoch++
	epoch := s.epoch
	s.state = Reduce(s.state, LoadCommand{})
	s.mu.Unlock()

	ctx = s.logg.WithCartMode(ctx, string(ModeAuthenticated))
	if dropped > 0 {
		s.logg.Info(s.logg.WithField(ctx, "dropped_items", dropped), "cart.login.guest_items_dropped")
	}
	s.save(ctx, derive(nil, false))

	done := s.beginRemote()
	err := s.reload(ctx, epoch)
	done()
	s.observe(opLogin, ModeAuthenticated, outcomeOf(err), start)
	return err
}

// Logout returns to guest mode with an empty cart.
func (s *Store) Logout(ctx context.Context) {
	start := time.Now()

	s.mu.Lock()
	s.mode = ModeGuest
	s.epoch++
	s.state = Reduce(s.state, ClearCommand{})
	s.mu.Unlock()

	ctx = s.logg.WithCartMode(ctx, string(ModeGuest))
	s.persist(ctx)
	s.metrics.SetItemCount(string(ModeGuest), 0)
	s.logg.Info(ctx, "cart.logout.cleared")
	s.observe(opLogout, ModeGuest, outcomeOK, start)
}

// SyncAuth reconciles the store mode with the auth status reader.
func (s *Store) SyncAuth(ctx context.Context) error {
	authenticated := s.auth.Authenticated()
	switch mode := s.Mode(); {
	case authenticated && mode == ModeGuest:
		return s.Login(ctx)
	case !authenticated && mode == ModeAuthenticated:
		s.Logout(ctx)
	}
	return nil
}

// Refresh re-reads the server cart in authenticated mode.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	mode, epoch := s.mode, s.epoch
	s.mu.RUnlock()
	if mode != ModeAuthenticated {
		return nil
	}

	start := time.Now()
	done := s.beginRemote()
	err := s.reload(s.logg.WithCartMode(ctx, string(mode)), epoch)
	done()
	s.observe(opRefresh, mode, outcomeOf(err), start)
	return err
}

// Count returns the badge count. Signed-in shoppers get the server's line
// count; guests get the local item count.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	mode, count := s.mode, s.state.ItemCount
	s.mu.RUnlock()
	if mode != ModeAuthenticated {
		return count, nil
	}

	done := s.beginRemote()
	defer done()
	ctx = s.logg.WithCartMode(ctx, string(mode))
	n, err := s.remote.Count(ctx)
	if err != nil {
		s.logg.Error(ctx, "cart.count.failed", err)
		return 0, err
	}
	return n, nil
}

type guestStep struct {
	next   State
	apply  bool
	notice *Notification
}

// runGuest applies step under the write lock when in guest mode. When the store
// is authenticated it returns handled=false with the current epoch.
func (s *Store) runGuest(ctx context.Context, step func(State) guestStep) (handled, rejected bool, epoch uint64) {
	s.mu.Lock()
	if s.mode != ModeGuest {
		epoch = s.epoch
		s.mu.Unlock()
		return false, false, epoch
	}
	result := step(s.state)
	if result.apply {
		s.state = result.next
	}
	count := s.state.ItemCount
	s.mu.Unlock()

	ctx = s.logg.WithCartMode(ctx, string(ModeGuest))
	if result.notice != nil {
		s.notifier.Notify(ctx, *result.notice)
		s.logg.Info(s.logg.WithField(ctx, "reason", result.notice.Message), "cart.guest.rejected")
		return true, true, 0
	}
	if result.apply {
		s.metrics.SetItemCount(string(ModeGuest), count)
		s.persist(ctx)
	}
	return true, false, 0
}

func (s *Store) addRemote(ctx context.Context, epoch uint64, lineID string, product Product, variant *Variant, quantity int) error {
	ctx = s.logg.WithCartMode(ctx, string(ModeAuthenticated))
	done := s.beginRemote()
	defer done()

	if err := s.remote.AddItem(ctx, addRequest(product, variant, quantity)); err != nil {
		message, kind := addFailureMessage(err)
		s.notifier.Notify(ctx, Notification{Type: kind, Message: message, LineID: lineID})
		s.logg.Error(ctx, "cart.add_item.failed", err)
		return stockConflict(err, message)
	}
	return s.reload(ctx, epoch)
}

func (s *Store) removeRemote(ctx context.Context, epoch uint64, line LineItem) error {
	ctx = s.logg.WithCartMode(ctx, string(ModeAuthenticated))
	done := s.beginRemote()
	defer done()

	if err := s.remote.RemoveItem(ctx, line.RemoteID); err != nil {
		s.notifier.Notify(ctx, Notification{Type: NotificationError, Message: msgRemoveFailed, LineID: line.ID})
		s.logg.Error(ctx, "cart.remove_item.failed", err)
		return err
	}
	return s.reload(ctx, epoch)
}

func (s *Store) updateRemote(ctx context.Context, epoch uint64, line LineItem, quantity int) error {
	ctx = s.logg.WithCartMode(ctx, string(ModeAuthenticated))
	done := s.beginRemote()
	defer done()

	if err := s.remote.UpdateItem(ctx, line.RemoteID, cartapi.UpdateItemRequest{Quantity: quantity}); err != nil {
		message, kind := updateFailureMessage(err)
		s.notifier.Notify(ctx, Notification{Type: kind, Message: message, LineID: line.ID})
		s.logg.Error(ctx, "cart.update_quantity.failed", err)
		return stockConflict(err, message)
	}
	return s.reload(ctx, epoch)
}

// reload replaces state with the server cart unless a mode transition happened
// since epoch was read.
func (s *Store) reload(ctx context.Context, epoch uint64) error {
	remote, err := s.remote.GetCart(ctx)
	if err != nil {
		s.notifier.Notify(ctx, Notification{Type: NotificationError, Message: msgSyncFailed})
		s.logg.Error(ctx, "cart.reload.failed", err)
		return err
	}
	items := mapRemoteCart(remote)

	s.mu.Lock()
	if s.mode != ModeAuthenticated || s.epoch != epoch {
		s.mu.Unlock()
		s.logg.Info(ctx, "cart.reload.discarded")
		return nil
	}
	s.state = Reduce(s.state, LoadCommand{Items: items})
	count := s.state.ItemCount
	s.mu.Unlock()

	s.metrics.SetItemCount(string(ModeAuthenticated), count)
	return nil
}

// syncedLine returns the line only when it carries a server id.
func (s *Store) syncedLine(lineID string) (LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	line, ok := s.state.Find(lineID)
	if !ok || line.RemoteID == "" {
		return LineItem{}, false
	}
	return line.clone(), true
}

// persist saves the current state while in guest mode. saveMu orders writes so
// the last save always carries the newest state.
func (s *Store) persist(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	if s.mode != ModeGuest {
		s.mu.RUnlock()
		return
	}
	state := s.state.Clone()
	s.mu.RUnlock()

	s.saveLocked(ctx, state)
}

func (s *Store) save(ctx context.Context, state State) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.saveLocked(ctx, state)
}

func (s *Store) saveLocked(ctx context.Context, state State) {
	if err := s.persistence.Save(ctx, state); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.snapshot.save_failed")
	}
}

func (s *Store) beginRemote() func() {
	s.loading.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { s.loading.Add(-1) })
	}
}

func (s *Store) observe(op string, mode Mode, outcome string, start time.Time) {
	s.metrics.ObserveMutation(op, string(mode), outcome, time.Since(start))
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	if typed := pkgerrors.As(err); typed != nil {
		return strings.ToLower(string(typed.Code()))
	}
	return strings.ToLower(string(pkgerrors.CodeInternal))
}

func guestOutcome(rejected bool) string {
	if rejected {
		return outcomeRejected
	}
	return outcomeOK
}

type noopRecorder struct{}

func (noopRecorder) ObserveMutation(string, string, string, time.Duration) {}
func (noopRecorder) SetItemCount(string, int)                              {}
