package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/contact-sync/internal/intercom"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property-based checks over the upsert policy invariants.

func TestUpsertPolicyProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	emailGen := gen.RegexMatch(`[a-z0-9+._-]{1,12}@[a-z0-9-]{1,8}\.[a-z]{2,4}`)

	// Property: plus-addressed emails are never written, regardless of
	// the rest of the record.
	properties.Property("plus addresses are always skipped", prop.ForAll(
		func(email, name string) bool {
			if !strings.Contains(email, "+") {
				email = "tagged+" + email
			}
			store := newFakeContactStore()
			policy := NewUpsertPolicy(store)

			outcome, err := policy.Apply(context.Background(), intercom.Contact{
				ID:    "x",
				Email: email,
				Name:  name,
			}, time.Now().UTC())

			return err == nil && outcome == OutcomeSkipped && len(store.byEmail) == 0
		},
		emailGen,
		gen.AlphaString(),
	))

	// Property: applying the same record any number of times leaves
	// exactly one row, and a pre-existing unsubscribe flag survives.
	properties.Property("re-import never resets unsubscribe status", prop.ForAll(
		func(email string, repeats uint8, unsubscribed bool) bool {
			if strings.Contains(email, "+") {
				return true // excluded by the plus rule, covered above
			}
			store := newFakeContactStore()
			policy := NewUpsertPolicy(store)

			at := time.Now().UTC()
			record := intercom.Contact{ID: "x", Email: email}

			if _, err := policy.Apply(context.Background(), record, at); err != nil {
				return false
			}
			if unsubscribed {
				c := store.byEmail[email]
				c.IsUnsubscribed = true
				now := time.Now().UTC()
				c.UnsubscribedAt = &now
			}

			for i := 0; i < int(repeats%5)+1; i++ {
				if _, err := policy.Apply(context.Background(), record, at); err != nil {
					return false
				}
			}

			c := store.byEmail[email]
			return len(store.byEmail) == 1 && c.IsUnsubscribed == unsubscribed
		},
		emailGen,
		gen.UInt8(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
