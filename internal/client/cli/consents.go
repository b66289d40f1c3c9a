package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/consentvault/internal/common"
	"github.com/dmitrijs2005/consentvault/internal/consent"
)

const dateLayout = "2006-01-02"

// Grant asks for the details of one consent and records it.
func (a *App) Grant(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(common.ErrUnauthenticated)
	}

	cats := consent.Categories()
	for i, c := range cats {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, c.Title)
	}
	choice, err := getSimpleText(a.reader, "Data type (number or name)", a.out)
	if err != nil {
		return err
	}
	dataType := choice
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(cats) {
		dataType = cats[n-1].ID
	}

	purpose, err := getTextWithDefault(a.reader, "Purpose", a.config.DefaultPurpose, a.out)
	if err != nil {
		return err
	}
	org, err := getTextWithDefault(a.reader, "Organization", a.config.DefaultOrganization, a.out)
	if err != nil {
		return err
	}

	days, err := getTextWithDefault(a.reader, "Valid for how many days (0 = no expiration)", strconv.Itoa(validityDays(a.config.ConsentValidity)), a.out)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(days)
	if err != nil || n < 0 {
		fmt.Fprintln(a.out, "Please enter a whole number of days.")
		return fmt.Errorf("%w: bad validity %q", common.ErrInvalidConsent, days)
	}

	r, err := a.store.GrantConsent(ctx, consent.Request{
		DataType:       dataType,
		Purpose:        purpose,
		Organization:   org,
		ExpirationDate: a.expiry(time.Duration(n) * 24 * time.Hour),
	})
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Consent granted: %s\n", r.ID)
	return nil
}

// Enroll walks the catalogue: required categories are always included,
// optional ones are offered one by one, and nothing is recorded until the
// terms are accepted. All selected consents are granted together.
func (a *App) Enroll(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(common.ErrUnauthenticated)
	}

	org, purpose := a.config.DefaultOrganization, a.config.DefaultPurpose
	fmt.Fprintf(a.out, "%s requests access to your data for %s.\n", org, purpose)

	var selected []consent.Category
	for _, c := range consent.Categories() {
		if c.Required {
			fmt.Fprintf(a.out, "  [required] %s: %s\n", c.Title, c.Description)
			selected = append(selected, c)
			continue
		}
		ok, err := getConfirmation(a.reader, fmt.Sprintf("  %s: %s\n  Share?", c.Title, c.Description), a.out)
		if err != nil {
			return err
		}
		if ok {
			selected = append(selected, c)
		}
	}

	agreed, err := getConfirmation(a.reader, "I agree to the terms and conditions and the privacy policy", a.out)
	if err != nil {
		return err
	}
	if !agreed {
		fmt.Fprintln(a.out, "Enrollment cancelled. You need to accept the terms to continue.")
		return nil
	}

	exp := a.expiry(a.config.ConsentValidity)
	reqs := make([]consent.Request, 0, len(selected))
	for _, c := range selected {
		reqs = append(reqs, consent.Request{
			DataType:       c.ID,
			Purpose:        purpose,
			Organization:   org,
			ExpirationDate: exp,
		})
	}

	added, err := a.store.GrantConsents(ctx, reqs)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Enrolled: %d consents granted.\n", len(added))
	return nil
}

// List prints the whole ledger.
func (a *App) List(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(common.ErrUnauthenticated)
	}
	records := a.store.Consents()
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No consents yet.")
		return nil
	}
	return a.printTable(records)
}

// Active prints the granted consents.
func (a *App) Active(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(common.ErrUnauthenticated)
	}
	records := a.store.ActiveConsents()
	fmt.Fprintf(a.out, "Active consents: %d\n", len(records))
	if len(records) == 0 {
		return nil
	}
	return a.printTable(records)
}

// Show prints one consent; the id is asked for when not given.
func (a *App) Show(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		return a.report(common.ErrUnauthenticated)
	}
	id, err := a.consentID(id, "Enter consent id to show")
	if err != nil {
		return err
	}

	r, err := a.store.ConsentByID(id)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "ID:           %s\n", r.ID)
	fmt.Fprintf(a.out, "Data:         %s (%s)\n", consent.DisplayName(r.DataType), r.DataType)
	if c, ok := consent.LookupCategory(r.DataType); ok {
		fmt.Fprintf(a.out, "              %s\n", c.Description)
	}
	fmt.Fprintf(a.out, "Purpose:      %s\n", r.Purpose)
	fmt.Fprintf(a.out, "Organization: %s\n", r.Organization)
	fmt.Fprintf(a.out, "Granted:      %s\n", r.DateGranted.Local().Format(dateLayout))
	fmt.Fprintf(a.out, "Expires:      %s\n", formatExpiry(r.ExpirationDate))
	fmt.Fprintf(a.out, "Status:       %s\n", r.Status)
	return nil
}

// Revoke revokes one consent after confirmation.
func (a *App) Revoke(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		return a.report(common.ErrUnauthenticated)
	}
	id, err := a.consentID(id, "Enter consent id to revoke")
	if err != nil {
		return err
	}

	r, err := a.store.ConsentByID(id)
	if err != nil {
		return a.report(err)
	}
	if r.Status == consent.StatusRevoked {
		fmt.Fprintln(a.out, "Consent is already revoked.")
		return nil
	}

	prompt := fmt.Sprintf("Revoke consent to share %s with %s?", consent.DisplayName(r.DataType), r.Organization)
	ok, err := getConfirmation(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if _, err := a.store.RevokeConsent(ctx, id); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Consent revoked.")
	return nil
}

// Sweep expires every consent whose expiration date has passed.
func (a *App) Sweep(ctx context.Context) error {
	n, err := a.store.ExpireOverdue(ctx, a.now())
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "Expired consents: %d\n", n)
	return nil
}

func (a *App) consentID(id, prompt string) (string, error) {
	if id != "" {
		return id, nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) expiry(validity time.Duration) *time.Time {
	if validity <= 0 {
		return nil
	}
	t := a.now().Add(validity)
	return &t
}

func (a *App) printTable(records []consent.Record) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATA\tORGANIZATION\tSTATUS\tGRANTED\tEXPIRES")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			consent.DisplayName(r.DataType),
			r.Organization,
			strings.ToUpper(string(r.Status)),
			r.DateGranted.Local().Format(dateLayout),
			formatExpiry(r.ExpirationDate),
		)
	}
	return tw.Flush()
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format(dateLayout)
}

func validityDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}
