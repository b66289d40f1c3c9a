package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/consentvault/internal/client/config"
	"github.com/dmitrijs2005/consentvault/internal/common"
	"github.com/dmitrijs2005/consentvault/internal/logging"
	"github.com/dmitrijs2005/consentvault/internal/securestore"
	"github.com/dmitrijs2005/consentvault/internal/store"
	"github.com/dmitrijs2005/consentvault/internal/wallet"
)

// getSimpleText, getTextWithDefault, getConfirmation and getPassword are
// indirections used to facilitate testing.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getConfirmation    = GetConfirmation
	getPassword        = GetPassword
)

const memoryDSN = ":memory:"

type App struct {
	config *config.Config
	store  *store.Store
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

// NewApp opens the vault described by c, asking for its passphrase, and
// loads the identity store. A vault at ":memory:" needs no passphrase and
// keeps nothing once the process exits.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stderr, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	reader := bufio.NewReader(os.Stdin)

	storage, err := openStorage(ctx, c.DBPath, os.Stdout)
	if err != nil {
		logger.Error(ctx, "error opening vault", "path", c.DBPath, "error", err)
		return nil, err
	}

	st := store.New(storage, wallet.NewProvider(), store.Options{
		AppName:     c.AppName,
		Logger:      logger,
		SweepOnLoad: c.SweepOnLoad,
	})

	a := newApp(c, st, logger, reader, os.Stdout)
	if err := st.Init(ctx); err != nil {
		// not fatal: the store is usable, the user should know what was lost
		a.report(err)
	}
	return a, nil
}

func newApp(c *config.Config, st *store.Store, logger logging.Logger, reader *bufio.Reader, out io.Writer) *App {
	return &App{config: c, store: st, log: logger, reader: reader, out: out, now: time.Now}
}

func openStorage(ctx context.Context, dsn string, w io.Writer) (securestore.Storage, error) {
	if dsn == memoryDSN {
		return securestore.NewMemory(), nil
	}

	_, statErr := os.Stat(dsn)
	fresh := errors.Is(statErr, os.ErrNotExist)

	pass, err := getPassword(w, "Vault passphrase: ")
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pass)

	if len(pass) == 0 {
		return nil, errors.New("passphrase must not be empty")
	}

	if fresh {
		again, err := getPassword(w, "Repeat passphrase: ")
		if err != nil {
			return nil, err
		}
		defer common.WipeByteArray(again)
		if !bytes.Equal(pass, again) {
			return nil, errors.New("passphrases do not match")
		}
	}

	vault, err := securestore.Open(ctx, dsn, pass)
	if err != nil {
		return nil, err
	}
	return vault, nil
}

// Run starts the REPL and releases the vault when it ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.store.Dispose(ctx); err != nil {
			a.log.Error(ctx, "error closing vault", "error", err)
		}
	}()

	fmt.Fprintln(a.out, "Consent vault CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return "no identity"
	}
	return shortAddress(a.store.Address())
}

// shortAddress renders 0x1234...abcd.
func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// report tells the user what went wrong and hands err back.
func (a *App) report(err error) error {
	switch {
	case err == nil:
	case errors.Is(err, common.ErrUnauthenticated):
		fmt.Fprintln(a.out, "No identity yet. Use 'create' or 'import' first.")
	case errors.Is(err, common.ErrInvalidSecret):
		fmt.Fprintln(a.out, "That is not a valid private key.")
	case errors.Is(err, common.ErrNotFound):
		fmt.Fprintln(a.out, "No consent with that id.")
	case errors.Is(err, common.ErrInvalidConsent):
		fmt.Fprintf(a.out, "Invalid consent: %v\n", err)
	case errors.Is(err, common.ErrParse):
		fmt.Fprintln(a.out, "Warning: the stored consent ledger could not be read and was ignored.")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return err
}
