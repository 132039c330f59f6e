package fill

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/applyfill/internal/dom/htmldoc"
	"github.com/spigell/applyfill/internal/fields"
)

func TestFillThenUndoRestoresOriginal(t *testing.T) {
	t.Parallel()
	_, byID := setup(t)
	ctx := context.Background()
	w := NewWriter(nil)
	l := NewLedger(w, 0, nil)

	for _, tc := range []struct {
		id    string
		value string
	}{
		{"email", "john@example.com"},
		{"country", "Germany"},
		{"terms", "true"},
		{"cover", "Dear team"},
	} {
		f := byID[tc.id]
		original := Current(f)

		l.Record(f, original, tc.value)
		require.NoError(t, w.Fill(ctx, f, tc.value))
		require.True(t, l.Has(f.Element))

		ok, err := l.Undo(ctx, f.Element)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, original, Current(f), tc.id)
		assert.False(t, l.Has(f.Element))
	}
	assert.Equal(t, 0, l.Len())
}

func TestUndoWithoutEntry(t *testing.T) {
	t.Parallel()
	_, byID := setup(t)
	l := NewLedger(nil, 0, nil)

	ok, err := l.Undo(context.Background(), byID["email"].Element)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Undo(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUndoFailureKeepsEntry(t *testing.T) {
	t.Parallel()
	doc, byID := setup(t)
	l := NewLedger(nil, 0, nil)

	email := byID["email"]
	l.Record(email, "old@example.com", "john@example.com")
	doc.Remove(email.Element)

	ok, err := l.Undo(context.Background(), email.Element)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrDetached)
	assert.True(t, l.Has(email.Element))
}

func TestUndoRevalidatesOriginal(t *testing.T) {
	t.Parallel()
	doc, byID := setup(t)
	ctx := context.Background()
	w := NewWriter(nil)
	l := NewLedger(w, 0, nil)

	email := byID["email"]
	require.NoError(t, email.Element.SetNativeValue("not-an-email"))
	original := Current(email)

	l.Record(email, original, "john@example.com")
	require.NoError(t, w.Fill(ctx, email, "john@example.com"))
	doc.ResetEvents()

	ok, err := l.Undo(ctx, email.Element)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrValidation)
	assert.True(t, l.Has(email.Element))
	assert.Equal(t, "john@example.com", email.Element.Value())
	assert.Empty(t, doc.EventsFor(email.Element))

	restored, err := l.UndoAll(ctx)
	assert.Equal(t, 0, restored)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, l.Len())
}

func TestRecordReplacesEntry(t *testing.T) {
	t.Parallel()
	_, byID := setup(t)
	l := NewLedger(nil, 0, nil)

	email, phone := byID["email"], byID["phone"]
	l.Record(email, "a", "b")
	l.Record(phone, "", "4155550100")
	l.Record(email, "b", "c")

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, phone.Handle(), entries[0].Element.Handle())
	assert.Equal(t, "b", entries[1].Original)
	assert.Equal(t, "c", entries[1].New)
}

func TestLedgerEvictsOldest(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("<form>")
	for i := 0; i < 101; i++ {
		fmt.Fprintf(&b, `<input id="f%d" name="f%d">`, i, i)
	}
	b.WriteString("</form>")
	doc, err := htmldoc.ParseString(b.String(), "")
	require.NoError(t, err)

	found := fields.Discover(doc.Find("form"), fields.Options{})
	require.Len(t, found, 101)

	l := NewLedger(nil, DefaultUndoCap, nil)
	for _, f := range found {
		l.Record(f, "", "x")
	}

	assert.Equal(t, DefaultUndoCap, l.Len())
	assert.False(t, l.Has(found[0].Element))
	assert.True(t, l.Has(found[1].Element))
	assert.True(t, l.Has(found[100].Element))
}

func TestUndoAllIsBestEffort(t *testing.T) {
	t.Parallel()
	doc, byID := setup(t)
	ctx := context.Background()
	w := NewWriter(nil)
	l := NewLedger(w, 0, nil)

	for _, id := range []string{"email", "phone", "cover"} {
		f := byID[id]
		l.Record(f, Current(f), "filled")
		require.NoError(t, f.Element.SetNativeValue("filled"))
	}
	doc.Remove(byID["phone"].Element)

	restored, err := l.UndoAll(ctx)
	assert.Equal(t, 2, restored)
	assert.ErrorIs(t, err, ErrDetached)
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, "old@example.com", byID["email"].Element.Value())
	assert.Equal(t, "", byID["cover"].Element.Value())
}
