package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/consentvault/internal/common"
	"github.com/dmitrijs2005/consentvault/internal/consent"
	"github.com/dmitrijs2005/consentvault/internal/logging"
	"github.com/dmitrijs2005/consentvault/internal/securestore"
	"github.com/dmitrijs2005/consentvault/internal/wallet"
	"github.com/google/uuid"
)

// DefaultAppName prefixes the storage keys when Options.AppName is empty.
const DefaultAppName = "pharma_blockchain"

// KeyProvider creates keypairs. *wallet.Provider satisfies it.
type KeyProvider interface {
	Generate() (*wallet.Keypair, error)
	FromSecret(secret string) (*wallet.Keypair, error)
}

// Options tune a Store. The zero value is usable.
type Options struct {
	AppName     string
	Logger      logging.Logger
	Notifier    Notifier
	Now         func() time.Time
	NewID       func() string
	SweepOnLoad bool
}

// State is a read-only snapshot of the public store fields.
type State struct {
	IsAuthenticated bool
	Address         string
	Consents        []consent.Record
	IsLoading       bool
	Error           string
}

// Store holds at most one identity and its consent ledger.
type Store struct {
	storage     securestore.Storage
	keys        KeyProvider
	log         logging.Logger
	notifier    Notifier
	now         func() time.Time
	newID       func() string
	sweepOnLoad bool

	secretKey  string
	ledgerKey  string
	corruptKey string

	// corrupt holds a ledger snapshot that failed to parse on load until it
	// has been copied to corruptKey. Guarded by opMu.
	corrupt []byte

	// opMu serialises operations across storage I/O; mu guards the fields
	// below for readers.
	opMu     sync.Mutex
	mu       sync.RWMutex
	identity *wallet.Keypair
	ledger   []consent.Record
	// unread is set while an identity is active but its persisted ledger
	// could not be read; mutations are refused until a reload succeeds.
	unread   bool
	lastErr  string

	loading atomic.Bool
}

// New builds a Store over storage. Call Init before use.
func New(storage securestore.Storage, keys KeyProvider, opts Options) *Store {
	app := opts.AppName
	if app == "" {
		app = DefaultAppName
	}
	s := &Store{
		storage:     storage,
		keys:        keys,
		log:         opts.Logger,
		notifier:    opts.Notifier,
		now:         opts.Now,
		newID:       opts.NewID,
		sweepOnLoad: opts.SweepOnLoad,
		secretKey:   app + "_private_key",
		ledgerKey:   app + "_consents",
		corruptKey:  app + "_consents.corrupt",
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier(s.log)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// StorageKeys returns the keys the identity secret and the ledger live under.
func (s *Store) StorageKeys() (secret, ledger string) {
	return s.secretKey, s.ledgerKey
}

// Init loads the persisted identity and ledger. Problems with the persisted
// data are not fatal: the store ends up in the best state it can reach and
// Init returns the error for the caller to display.
//
//   - no secret: unauthenticated, empty ledger;
//   - unparsable secret: common.ErrInvalidSecret, unauthenticated;
//   - corrupt ledger: common.ErrParse, identity active, empty ledger; the
//     unparsable snapshot is copied to <app>_consents.corrupt by the next
//     write that replaces it;
//   - identity read failure: common.ErrStorage, unauthenticated;
//   - ledger read failure: common.ErrStorage, identity active, and every
//     consent mutation fails with common.ErrStorage until Init succeeds.
//
// Init may be called again to reload.
func (s *Store) Init(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.loading.Store(true)
	defer s.loading.Store(false)
	s.clearError()

	err := s.load(ctx)
	if err == nil && s.sweepOnLoad && s.IsAuthenticated() {
		_, err = s.expireOverdue(ctx, s.now())
	}
	return s.finish(ctx, "init", err)
}

func (s *Store) load(ctx context.Context) error {
	s.corrupt = nil

	raw, err := s.storage.Get(ctx, s.secretKey)
	if err != nil {
		s.commit(nil, nil)
		return fmt.Errorf("%w: read identity: %w", common.ErrStorage, err)
	}
	if raw == nil {
		s.commit(nil, nil)
		return nil
	}

	kp, err := s.keys.FromSecret(string(raw))
	common.WipeByteArray(raw)
	if err != nil {
		s.commit(nil, nil)
		return invalidSecret("stored identity", err)
	}

	b, err := s.storage.Get(ctx, s.ledgerKey)
	if err != nil {
		s.mu.Lock()
		s.identity, s.ledger, s.unread = kp, nil, true
		s.mu.Unlock()
		return fmt.Errorf("%w: read ledger: %w", common.ErrStorage, err)
	}
	if b == nil {
		s.commit(kp, nil)
		return nil
	}

	records, err := consent.UnmarshalLedger(b)
	if err != nil {
		s.corrupt = b
		s.commit(kp, nil)
		return err
	}
	s.commit(kp, records)
	return nil
}

// Dispose drops the in-memory state and closes the storage when it can be
// closed. The store must not be used afterwards.
func (s *Store) Dispose(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.commit(nil, nil)

	if c, ok := s.storage.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("%w: close storage: %w", common.ErrStorage, err)
		}
	}
	return nil
}

// CreateIdentity generates a new keypair and makes it the active identity
// with an empty ledger. Any existing identity is overwritten.
func (s *Store) CreateIdentity(ctx context.Context) (string, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.clearError()

	kp, err := s.keys.Generate()
	if err != nil {
		return "", s.finish(ctx, "create_identity", err)
	}
	if err := s.adopt(ctx, kp); err != nil {
		return "", s.finish(ctx, "create_identity", err)
	}

	s.log.Info(ctx, "identity created", "address", kp.Address())
	return kp.Address(), s.finish(ctx, "create_identity", nil)
}

// ImportIdentity restores an identity from a secret in raw or 0x-prefixed
// hex. The ledger is reset to empty. A malformed secret fails with
// common.ErrInvalidSecret and leaves everything untouched.
func (s *Store) ImportIdentity(ctx context.Context, secret string) (string, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.clearError()

	kp, err := s.keys.FromSecret(wallet.NormalizeSecret(secret))
	if err != nil {
		return "", s.finish(ctx, "import_identity", invalidSecret("import", err))
	}
	if err := s.adopt(ctx, kp); err != nil {
		return "", s.finish(ctx, "import_identity", err)
	}

	s.log.Info(ctx, "identity imported", "address", kp.Address())
	return kp.Address(), s.finish(ctx, "import_identity", nil)
}

// adopt persists kp together with an empty ledger in one write, then
// commits both.
func (s *Store) adopt(ctx context.Context, kp *wallet.Keypair) error {
	empty, err := consent.MarshalLedger(nil)
	if err != nil {
		return err
	}

	secret := []byte(kp.Secret())
	defer common.WipeByteArray(secret)

	ops := append([]securestore.Op{securestore.Put(s.secretKey, secret)}, s.ledgerOps(empty)...)
	if err := s.storage.Apply(ctx, ops...); err != nil {
		return fmt.Errorf("%w: save identity: %w", common.ErrStorage, err)
	}

	s.corrupt = nil
	s.commit(kp, nil)
	return nil
}

// ClearIdentity logs out: the secret and the ledger are deleted from storage
// first, and memory is reset only when that succeeds. Clearing an absent
// identity succeeds.
func (s *Store) ClearIdentity(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.clearError()

	err := s.storage.Apply(ctx,
		securestore.Remove(s.secretKey),
		securestore.Remove(s.ledgerKey),
		securestore.Remove(s.corruptKey),
	)
	if err != nil {
		return s.finish(ctx, "clear_identity", fmt.Errorf("%w: delete identity: %w", common.ErrStorage, err))
	}

	s.corrupt = nil
	s.commit(nil, nil)
	s.log.Info(ctx, "identity cleared")
	return s.finish(ctx, "clear_identity", nil)
}

// GrantConsent appends a new granted record to the ledger.
func (s *Store) GrantConsent(ctx context.Context, req consent.Request) (consent.Record, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.clearError()

	added, err := s.grant(ctx, []consent.Request{req})
	if err != nil {
		return consent.Record{}, s.finish(ctx, "grant_consent", err)
	}
	return added[0], s.finish(ctx, "grant_consent", nil)
}

// GrantConsents grants every request in one ledger write. Either all of them
// are recorded or none is.
func (s *Store) GrantConsents(ctx context.Context, reqs []consent.Request) ([]consent.Record, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.clearError()

	if len(reqs) == 0 {
		return nil, s.finish(ctx, "grant_consents", fmt.Errorf("%w: nothing to grant", common.ErrInvalidConsent))
	}
	added, err := s.grant(ctx, reqs)
	if err != nil {
		return nil, s.finish(ctx, "grant_consents", err)
	}
	return added, s.finish(ctx, "grant_consents", nil)
}

func (s *Store) grant(ctx context.Context, reqs []consent.Request) ([]consent.Record, error) {
	kp, ledger, err := s.editable()
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, req := range reqs {
		if err := req.Validate(now); err != nil {
			return nil, err
		}
	}

	ids := make(map[string]struct{}, len(ledger)+len(reqs))
	for _, r := range ledger {
		ids[r.ID] = struct{}{}
	}

	added := make([]consent.Record, 0, len(reqs))
	for _, req := range reqs {
		id := s.newID()
		if _, dup := ids[id]; dup || id == "" {
			return nil, fmt.Errorf("%w: id %q is not unique", common.ErrInvalidConsent, id)
		}
		ids[id] = struct{}{}
		added = append(added, consent.NewRecord(id, req, now))
	}

	staged := append(ledger, consent.CloneAll(added)...)
	if err := s.persist(ctx, staged); err != nil {
		return nil, err
	}
	s.commit(kp, staged)

	for _, r := range added {
		s.log.Info(ctx, "consent granted", "consent_id", r.ID, "data_type", r.DataType, "organization", r.Organization)
		s.emit(ctx, kp, ActionGrant, r)
	}
	return added, nil
}

// RevokeConsent marks the record with id as revoked. Revoking an already
// revoked record succeeds without writing anything.
func (s *Store) RevokeConsent(ctx context.Context, id string) (consent.Record, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.clearError()

	r, err := s.revoke(ctx, id)
	return r, s.finish(ctx, "revoke_consent", err)
}

func (s *Store) revoke(ctx context.Context, id string) (consent.Record, error) {
	kp, staged, err := s.editable()
	if err != nil {
		return consent.Record{}, err
	}

	idx := indexOf(staged, id)
	if idx < 0 {
		return consent.Record{}, fmt.Errorf("%w: %s", common.ErrNotFound, id)
	}
	if staged[idx].Status == consent.StatusRevoked {
		return staged[idx], nil
	}

	staged[idx].Status = consent.StatusRevoked
	if err := s.persist(ctx, staged); err != nil {
		return consent.Record{}, err
	}
	s.commit(kp, staged)

	r := staged[idx].Clone()
	s.log.Info(ctx, "consent revoked", "consent_id", r.ID, "data_type", r.DataType)
	s.emit(ctx, kp, ActionRevoke, r)
	return r, nil
}

// ExpireOverdue marks every granted record whose expiration date is not
// after now as expired and returns how many changed. Nothing is written when
// no record is overdue.
func (s *Store) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.clearError()

	n, err := s.expireOverdue(ctx, now)
	return n, s.finish(ctx, "expire_overdue", err)
}

func (s *Store) expireOverdue(ctx context.Context, now time.Time) (int, error) {
	kp, staged, err := s.editable()
	if err != nil {
		return 0, err
	}

	var changed []int
	for i := range staged {
		if staged[i].Overdue(now) {
			staged[i].Status = consent.StatusExpired
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}

	if err := s.persist(ctx, staged); err != nil {
		return 0, err
	}
	s.commit(kp, staged)

	for _, i := range changed {
		s.log.Info(ctx, "consent expired", "consent_id", staged[i].ID, "data_type", staged[i].DataType)
		s.emit(ctx, kp, ActionExpire, staged[i].Clone())
	}
	return len(changed), nil
}

func (s *Store) persist(ctx context.Context, records []consent.Record) error {
	b, err := consent.MarshalLedger(records)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}
	if err := s.storage.Apply(ctx, s.ledgerOps(b)...); err != nil {
		return fmt.Errorf("%w: save ledger: %w", common.ErrPersistence, err)
	}
	s.corrupt = nil
	return nil
}

// ledgerOps returns the writes replacing the persisted ledger with b. A
// snapshot that failed to parse on load is copied aside in the same write.
func (s *Store) ledgerOps(b []byte) []securestore.Op {
	ops := []securestore.Op{securestore.Put(s.ledgerKey, b)}
	if s.corrupt != nil {
		ops = append(ops, securestore.Put(s.corruptKey, s.corrupt))
	}
	return ops
}

// IsAuthenticated reports whether an identity is active.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Address returns the active identity's address, or "" when there is none.
func (s *Store) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.Address()
}

// Consents returns a copy of the ledger in insertion order.
func (s *Store) Consents() []consent.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return consent.CloneAll(s.ledger)
}

// ActiveConsents returns the granted records in ledger order.
func (s *Store) ActiveConsents() []consent.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return consent.Active(s.ledger)
}

// ConsentByID looks a record up; unknown ids give common.ErrNotFound.
func (s *Store) ConsentByID(id string) (consent.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.ledger, id); i >= 0 {
		return s.ledger[i].Clone(), nil
	}
	return consent.Record{}, fmt.Errorf("%w: %s", common.ErrNotFound, id)
}

// IsLoading is true while Init runs.
func (s *Store) IsLoading() bool {
	return s.loading.Load()
}

// Error returns the message of the last failed operation, or "" when the
// last operation succeeded.
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// State returns a consistent snapshot of the read-only fields.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		IsAuthenticated: s.identity != nil,
		Consents:        consent.CloneAll(s.ledger),
		IsLoading:       s.loading.Load(),
		Error:           s.lastErr,
	}
	if s.identity != nil {
		st.Address = s.identity.Address()
	}
	return st
}

// editable returns the identity and a private copy of the ledger for a
// mutation to stage its change on.
func (s *Store) editable() (*wallet.Keypair, []consent.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.identity == nil {
		return nil, nil, common.ErrUnauthenticated
	}
	if s.unread {
		return nil, nil, fmt.Errorf("%w: ledger not loaded, reload before changing consents", common.ErrStorage)
	}
	return s.identity, consent.CloneAll(s.ledger), nil
}

func (s *Store) commit(kp *wallet.Keypair, ledger []consent.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = kp
	s.ledger = ledger
	s.unread = false
}

func (s *Store) clearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// finish records the outcome of op and hands err back.
func (s *Store) finish(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}

	s.mu.Lock()
	s.lastErr = err.Error()
	s.mu.Unlock()

	s.log.Warn(ctx, "operation failed", "op", op, "error", err)
	return err
}

func indexOf(records []consent.Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func invalidSecret(what string, err error) error {
	if errors.Is(err, common.ErrInvalidSecret) {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrInvalidSecret, what, err)
}
