package importer

import (
	"context"
	"testing"
	"time"

	"github.com/contact-sync/internal/intercom"
	"github.com/contact-sync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_SkipsRecordsWithoutEmail(t *testing.T) {
	store := newFakeContactStore()
	policy := NewUpsertPolicy(store)

	outcome, err := policy.Apply(context.Background(), intercom.Contact{ID: "x1"}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Empty(t, store.byEmail)
}

func TestApply_SkipsPlusAddresses(t *testing.T) {
	store := newFakeContactStore()
	policy := NewUpsertPolicy(store)

	for _, email := range []string{"a+tag@x.com", "+lead@x.com", "a@x+y.com"} {
		outcome, err := policy.Apply(context.Background(), intercom.Contact{ID: "x1", Email: email}, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, outcome, "email %q should be skipped", email)
	}
	assert.Empty(t, store.byEmail)
}

func TestApply_InsertsNewContact(t *testing.T) {
	store := newFakeContactStore()
	policy := NewUpsertPolicy(store)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	outcome, err := policy.Apply(context.Background(), intercom.Contact{
		ID:    "ext-1",
		Email: "ada@x.com",
		Name:  "Ada Lovelace King",
	}, at)
	require.NoError(t, err)
	assert.Equal(t, OutcomeImported, outcome)

	stored := store.byEmail["ada@x.com"]
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.IsUnsubscribed)
	assert.Nil(t, stored.UnsubscribedAt)
	require.NotNil(t, stored.ExternalID)
	assert.Equal(t, "ext-1", *stored.ExternalID)
	require.NotNil(t, stored.FirstName)
	assert.Equal(t, "Ada", *stored.FirstName)
	require.NotNil(t, stored.LastName)
	assert.Equal(t, "Lovelace King", *stored.LastName)
	require.NotNil(t, stored.LastImportedAt)
	assert.Equal(t, at, *stored.LastImportedAt)
}

func TestApply_UpdatePreservesUnsubscribe(t *testing.T) {
	store := newFakeContactStore()
	unsubAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	store.byEmail["ada@x.com"] = &models.Contact{
		ID:             "existing-id",
		Email:          "ada@x.com",
		IsUnsubscribed: true,
		UnsubscribedAt: &unsubAt,
	}
	policy := NewUpsertPolicy(store)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	outcome, err := policy.Apply(context.Background(), intercom.Contact{
		ID:    "ext-9",
		Email: "ada@x.com",
		Name:  "Ada",
	}, at)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	stored := store.byEmail["ada@x.com"]
	assert.Equal(t, "existing-id", stored.ID, "id is immutable")
	assert.True(t, stored.IsUnsubscribed, "import must not reset unsubscribe status")
	require.NotNil(t, stored.UnsubscribedAt)
	assert.Equal(t, unsubAt, *stored.UnsubscribedAt)
	require.NotNil(t, stored.ExternalID)
	assert.Equal(t, "ext-9", *stored.ExternalID)
	assert.Equal(t, at, *stored.LastImportedAt)
}

func TestApply_Idempotent(t *testing.T) {
	store := newFakeContactStore()
	policy := NewUpsertPolicy(store)

	record := intercom.Contact{ID: "x1", Email: "ada@x.com", Name: "Ada"}
	at := time.Now().UTC()

	first, err := policy.Apply(context.Background(), record, at)
	require.NoError(t, err)
	assert.Equal(t, OutcomeImported, first)

	second, err := policy.Apply(context.Background(), record, at)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, second)

	assert.Len(t, store.byEmail, 1)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantLast  string
	}{
		{name: "empty", input: "", wantFirst: "", wantLast: ""},
		{name: "single word", input: "Ada", wantFirst: "Ada", wantLast: ""},
		{name: "two words", input: "Ada Lovelace", wantFirst: "Ada", wantLast: "Lovelace"},
		{name: "three words", input: "Ada Lovelace King", wantFirst: "Ada", wantLast: "Lovelace King"},
		{name: "whitespace only", input: "   ", wantFirst: "", wantLast: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := splitName(tt.input)
			if tt.wantFirst == "" {
				assert.Nil(t, first)
			} else {
				require.NotNil(t, first)
				assert.Equal(t, tt.wantFirst, *first)
			}
			if tt.wantLast == "" {
				assert.Nil(t, last)
			} else {
				require.NotNil(t, last)
				assert.Equal(t, tt.wantLast, *last)
			}
		})
	}
}
