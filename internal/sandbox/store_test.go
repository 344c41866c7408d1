package sandbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewStore(time.Hour)
	s.now = func() time.Time { return now }
	Seed(s)
	return s, &now
}

func TestStore_AccessTokens(t *testing.T) {
	s, now := newSeededStore(t)

	token := s.IssueAccessToken(time.Minute)
	assert.Len(t, token, 32)
	assert.True(t, s.ValidAccessToken(token))
	assert.False(t, s.ValidAccessToken("unknown"))

	*now = now.Add(time.Minute)
	assert.False(t, s.ValidAccessToken(token))
}

func TestStore_Search(t *testing.T) {
	s, _ := newSeededStore(t)

	t.Run("duns is US only unless international", func(t *testing.T) {
		assert.Len(t, s.SearchByDUNS("007280554", false), 1)
		assert.Empty(t, s.SearchByDUNS("216551042", false))
		assert.Len(t, s.SearchByDUNS("216551042", true), 1)
	})

	t.Run("name and state", func(t *testing.T) {
		found := s.SearchByNameAddress("acme", "ca", AddressFilter{})
		require.Len(t, found, 2)
		assert.Equal(t, "Acme Widgets", found[0].Name)

		found = s.SearchByNameAddress("acme", "CA", AddressFilter{City: "san diego"})
		require.Len(t, found, 1)
		assert.Equal(t, "060704780", found[0].DUNS)

		assert.Empty(t, s.SearchByNameAddress("acme", "TX", AddressFilter{}))
		assert.Empty(t, s.SearchByNameAddress("acme", "CA", AddressFilter{Zip: "00000"}))
	})

	t.Run("phone ignores punctuation", func(t *testing.T) {
		found := s.SearchByPhone("310-555-0100")
		require.Len(t, found, 1)
		assert.Equal(t, "1001", found[0].BusinessID)
		assert.Len(t, s.SearchByPhone("5125550199"), 1)
		assert.Empty(t, s.SearchByPhone("---"))
	})

	t.Run("name and country", func(t *testing.T) {
		found := s.SearchByNameCountry("widgets", "de")
		require.Len(t, found, 1)
		assert.Equal(t, "315369934", found[0].DUNS)
	})
}

func TestStore_VerifiedBusiness(t *testing.T) {
	s, _ := newSeededStore(t)

	b, err := s.VerifiedBusiness("1001", false)
	require.NoError(t, err)
	assert.Equal(t, "Acme Widgets", b.Name)

	b, err = s.VerifiedBusiness("804735132", true)
	require.NoError(t, err)
	assert.Equal(t, "1003", b.BusinessID)

	_, err = s.VerifiedBusiness("1002", false)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.VerifiedBusiness("1001", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RecommendationsAndPages(t *testing.T) {
	s, _ := newSeededStore(t)

	products, err := s.Recommendations("007280554")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = s.Recommendations("315369934")
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = s.Recommendations("999999999")
	assert.ErrorIs(t, err, ErrNotFound)

	p, ok := s.Product("7")
	require.True(t, ok)
	assert.False(t, p.Free)

	page, err := s.Page("terms", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Conditions d'utilisation", page.Title)

	_, err = s.Page("terms", "de")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Sessions(t *testing.T) {
	s, now := newSeededStore(t)

	_, err := s.Login(DemoEmail, "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	sess, err := s.Login("  DEMO@example.com ", DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, DemoEmail, sess.Email)
	assert.Equal(t, now.Add(time.Hour), sess.ExpiresAt)

	got, err := s.Session(sess.UserToken)
	require.NoError(t, err)
	assert.Equal(t, sess.RefreshToken, got.RefreshToken)

	_, err = s.Session(ExpiredUserToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
	_, err = s.Session("unknown")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	refreshed, err := s.Refresh(DemoEmail, sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.UserToken, refreshed.UserToken)

	_, err = s.Session(sess.UserToken)
	assert.ErrorIs(t, err, ErrTokenInvalid, "refresh revokes the old token")
	_, err = s.Refresh(DemoEmail, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	require.NoError(t, s.Logout(refreshed.UserToken))
	assert.ErrorIs(t, s.Logout(refreshed.UserToken), ErrTokenInvalid)

	*now = now.Add(2 * time.Hour)
	again, err := s.Login(DemoEmail, DemoPassword)
	require.NoError(t, err)
	_, err = s.Session(again.UserToken)
	assert.NoError(t, err)
}

func TestStore_Accounts(t *testing.T) {
	s, _ := newSeededStore(t)

	_, err := s.Register(User{Email: DemoEmail}, "x")
	assert.ErrorIs(t, err, ErrEmailTaken)

	u, err := s.Register(User{Email: "New@Example.com", FirstName: "New"}, "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.False(t, u.AcceptedTOS)

	assert.NoError(t, s.ResetPassword("new@example.com"))
	assert.ErrorIs(t, s.ResetPassword("nobody@example.com"), ErrNotFound)

	assert.ErrorIs(t, s.ChangePassword("new@example.com", "nope", "other-pass"), ErrWrongPassword)
	require.NoError(t, s.ChangePassword("new@example.com", "secret-pass", "other-pass"))
	_, err = s.Login("new@example.com", "other-pass")
	assert.NoError(t, err)

	u, err = s.AcceptTOS("new@example.com")
	require.NoError(t, err)
	assert.True(t, u.AcceptedTOS)

	_, err = s.AcceptTOS("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Entitle(t *testing.T) {
	s, now := newSeededStore(t)

	granted, err := s.Entitle(DemoEmail, []Entitlement{{ProductID: "1", Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, granted, 1)
	assert.Equal(t, *now, granted[0].GrantedAt)
	assert.Len(t, s.Entitlements(DemoEmail), 1)

	_, err = s.Entitle(DemoEmail, []Entitlement{{ProductID: "1"}})
	assert.ErrorIs(t, err, ErrAlreadyEntitled)

	_, err = s.Entitle(DemoEmail, []Entitlement{{ProductID: "7"}, {ProductID: "7"}})
	assert.ErrorIs(t, err, ErrDuplicateProduct)

	_, err = s.Entitle("nobody@example.com", []Entitlement{{ProductID: "7"}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Register(User{Email: "no-tos@example.com"}, "secret-pass")
	require.NoError(t, err)
	_, err = s.Entitle("no-tos@example.com", []Entitlement{{ProductID: "7"}})
	assert.ErrorIs(t, err, ErrTOSNotAccepted)

	assert.Len(t, s.Entitlements(DemoEmail), 1, "rejected orders grant nothing")
}

func TestStore_AuthCodes(t *testing.T) {
	s, _ := newSeededStore(t)

	code := s.IssueAuthCode(DemoEmail, "client", "https://example.com/cb")
	sess, err := s.ExchangeAuthCode(code)
	require.NoError(t, err)
	assert.Equal(t, DemoEmail, sess.Email)

	_, err = s.ExchangeAuthCode(code)
	assert.ErrorIs(t, err, ErrAuthCodeInvalid)
}

func TestStore_EmailsOrdered(t *testing.T) {
	s, now := newSeededStore(t)

	for _, id := range []string{"m-3", "m-1", "m-2"} {
		e := s.RecordEmail(Email{MessageID: id})
		assert.Equal(t, *now, e.QueuedAt)
	}

	emails := s.Emails()
	require.Len(t, emails, 3)
	assert.Equal(t, []string{"m-1", "m-2", "m-3"}, []string{emails[0].MessageID, emails[1].MessageID, emails[2].MessageID})
}

func TestStore_ConcurrentLogins(t *testing.T) {
	s, _ := newSeededStore(t)

	var wg sync.WaitGroup
	tokens := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := s.Login(DemoEmail, DemoPassword)
			if assert.NoError(t, err) {
				tokens <- sess.UserToken
			}
		}()
	}
	wg.Wait()
	close(tokens)

	seen := make(map[string]bool)
	for token := range tokens {
		assert.False(t, seen[token])
		seen[token] = true
	}
	assert.Len(t, seen, 20)
}

func TestStore_PurgeExpired(t *testing.T) {
	s, now := newSeededStore(t)
	ctx := context.Background()

	access := s.IssueAccessToken(time.Minute)
	sess, err := s.Login(DemoEmail, DemoPassword)
	require.NoError(t, err)

	*now = now.Add(2 * time.Minute)
	purged, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.False(t, s.ValidAccessToken(access))

	_, err = s.Session(ExpiredUserToken)
	assert.ErrorIs(t, err, ErrTokenExpired, "the seeded expired session is kept")
	_, err = s.Session(sess.UserToken)
	assert.NoError(t, err)

	*now = now.Add(2 * time.Hour)
	purged, err = s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	_, err = s.Session(sess.UserToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.PurgeExpired(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}
