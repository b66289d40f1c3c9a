package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/consentvault/internal/consent"
	"github.com/dmitrijs2005/consentvault/internal/logging"
	"github.com/dmitrijs2005/consentvault/internal/wallet"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Action names a ledger event.
type Action string

const (
	ActionGrant  Action = "grant"
	ActionRevoke Action = "revoke"
	ActionExpire Action = "expire"
)

// Event is a consent change signed by the identity that made it. It stands
// in for the transaction a consent registry contract would receive.
type Event struct {
	Action       Action     `json:"action"`
	ConsentID    string     `json:"consentId"`
	DataType     string     `json:"dataType"`
	Purpose      string     `json:"purpose"`
	Organization string     `json:"organization"`
	Expiration   *time.Time `json:"expirationDate,omitempty"`
	Address      string     `json:"address"`
	At           time.Time  `json:"at"`
	Signature    string     `json:"signature,omitempty"`
}

// Payload is the byte string the signature covers: the event encoded as
// JSON without its signature.
func (e Event) Payload() ([]byte, error) {
	e.Signature = ""
	return json.Marshal(e)
}

// Signer recovers the address that signed e.
func (e Event) Signer() (string, error) {
	sig, err := hexutil.Decode(e.Signature)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	msg, err := e.Payload()
	if err != nil {
		return "", err
	}
	return wallet.RecoverAddress(msg, sig)
}

// Notifier receives signed ledger events after they are committed. A failing
// notifier never undoes the change.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// LogNotifier writes events to a logger as an audit trail.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{log: l.With("component", "ledger")}
}

func (n *LogNotifier) Notify(ctx context.Context, ev Event) error {
	n.log.Info(ctx, "ledger event",
		"action", string(ev.Action),
		"consent_id", ev.ConsentID,
		"data_type", ev.DataType,
		"organization", ev.Organization,
		"address", ev.Address,
		"at", ev.At.Format(time.RFC3339Nano),
		"signature", ev.Signature,
	)
	return nil
}

func newEvent(action Action, kp *wallet.Keypair, r consent.Record, at time.Time) (Event, error) {
	ev := Event{
		Action:       action,
		ConsentID:    r.ID,
		DataType:     r.DataType,
		Purpose:      r.Purpose,
		Organization: r.Organization,
		Expiration:   r.ExpirationDate,
		Address:      kp.Address(),
		At:           at.UTC().Round(0),
	}

	msg, err := ev.Payload()
	if err != nil {
		return Event{}, fmt.Errorf("encode event: %w", err)
	}
	sig, err := kp.SignMessage(msg)
	if err != nil {
		return Event{}, fmt.Errorf("sign event: %w", err)
	}
	ev.Signature = hexutil.Encode(sig)
	return ev, nil
}

func (s *Store) emit(ctx context.Context, kp *wallet.Keypair, action Action, r consent.Record) {
	ev, err := newEvent(action, kp, r, s.now())
	if err == nil {
		err = s.notifier.Notify(ctx, ev)
	}
	if err != nil {
		s.log.Warn(ctx, "ledger notification failed", "action", string(action), "consent_id", r.ID, "error", err)
	}
}
