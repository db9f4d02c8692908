package address

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type memStore struct {
	mu    sync.Mutex
	rows  []Address
	clock time.Time
}

func (s *memStore) List(ctx context.Context, userID string) ([]Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Address{}
	for _, a := range s.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) Get(ctx context.Context, userID, id string) (Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.rows {
		if a.ID == id && a.UserID == userID {
			return a, nil
		}
	}
	return Address{}, apperr.NotFound("address", id)
}

func (s *memStore) Count(ctx context.Context, userID string) (int, error) {
	all, _ := s.List(ctx, userID)
	return len(all), nil
}

func (s *memStore) Create(ctx context.Context, a Address) (Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.IsDefault {
		s.clearDefault(a.UserID, "")
	}
	s.clock = s.clock.Add(time.Minute)
	a.CreatedAt, a.UpdatedAt = s.clock, s.clock
	s.rows = append(s.rows, a)
	return a, nil
}

func (s *memStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.rows {
		if a.ID == id && a.UserID == userID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("address", id)
}

func (s *memStore) SetDefault(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, a := range s.rows {
		if a.ID == id && a.UserID == userID {
			idx = i
		}
	}
	if idx < 0 {
		return apperr.NotFound("address", id)
	}
	s.clearDefault(userID, id)
	s.rows[idx].IsDefault = true
	return nil
}

func (s *memStore) clearDefault(userID, except string) {
	for i := range s.rows {
		if s.rows[i].UserID == userID && s.rows[i].ID != except {
			s.rows[i].IsDefault = false
		}
	}
}

func validInput() Input {
	return Input{
		FullName:   "Asha Rao",
		Phone:      "9876543210",
		Street:     "12 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
	}
}

func defaults(t *testing.T, b *Book, userID string) []string {
	t.Helper()
	all, err := b.List(context.Background(), userID)
	require.NoError(t, err)
	var ids []string
	for _, a := range all {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestAddFirstAddressBecomesDefault(t *testing.T) {
	b := NewBook(&memStore{}, discard)
	a, err := b.Add(context.Background(), "u1", validInput())
	require.NoError(t, err)

	assert.True(t, a.IsDefault)
	assert.Equal(t, "Home", a.Label)
	assert.Equal(t, "India", a.Country)
	assert.NotEmpty(t, a.ID)
}

func TestAddValidates(t *testing.T) {
	b := NewBook(&memStore{}, discard)
	in := validInput()
	in.Phone = "not a phone"
	in.City = "   "

	_, err := b.Add(context.Background(), "u1", in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "city is required")
}

func TestAddDefaultReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	b := NewBook(&memStore{}, discard)
	first, err := b.Add(ctx, "u1", validInput())
	require.NoError(t, err)

	in := validInput()
	in.IsDefault = true
	second, err := b.Add(ctx, "u1", in)
	require.NoError(t, err)

	assert.Equal(t, []string{second.ID}, defaults(t, b, "u1"))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSetDefaultKeepsExactlyOne(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	b := NewBook(store, discard)
	a, err := b.Add(ctx, "u1", validInput())
	require.NoError(t, err)
	bAddr, err := b.Add(ctx, "u1", validInput())
	require.NoError(t, err)
	other, err := b.Add(ctx, "u2", validInput())
	require.NoError(t, err)

	require.Equal(t, []string{a.ID}, defaults(t, b, "u1"))

	require.NoError(t, b.SetDefault(ctx, "u1", bAddr.ID))
	assert.Equal(t, []string{bAddr.ID}, defaults(t, b, "u1"))
	assert.Equal(t, []string{other.ID}, defaults(t, b, "u2"), "other users are untouched")

	list, err := b.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, bAddr.ID, list[0].ID, "default is listed first")
}

func TestSetDefaultUnknownOrForeignAddress(t *testing.T) {
	ctx := context.Background()
	b := NewBook(&memStore{}, discard)
	a, err := b.Add(ctx, "u1", validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, b.SetDefault(ctx, "u1", "missing"), apperr.ErrNotFound)
	assert.ErrorIs(t, b.SetDefault(ctx, "u2", a.ID), apperr.ErrNotFound)
	assert.Equal(t, []string{a.ID}, defaults(t, b, "u1"))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	b := NewBook(&memStore{}, discard)
	a, err := b.Add(ctx, "u1", validInput())
	require.NoError(t, err)

	assert.ErrorIs(t, b.Delete(ctx, "u2", a.ID), apperr.ErrNotFound)
	require.NoError(t, b.Delete(ctx, "u1", a.ID))
	_, err = b.Get(ctx, "u1", a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOneLine(t *testing.T) {
	a := Address{Street: "12 MG Road", City: "Bengaluru", State: "Karnataka", PostalCode: "560001"}
	assert.Equal(t, "12 MG Road, Bengaluru, Karnataka - 560001", a.OneLine())
}
