package sandbox

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store errors, mapped to DandB error codes by the handlers
var (
	ErrNotFound         = errors.New("not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrBadCredentials   = errors.New("incorrect credentials")
	ErrTokenInvalid     = errors.New("user token is invalid")
	ErrTokenExpired     = errors.New("user token has expired")
	ErrWrongPassword    = errors.New("old password does not match")
	ErrDuplicateProduct = errors.New("duplicate products in order")
	ErrAlreadyEntitled  = errors.New("product already purchased")
	ErrTOSNotAccepted   = errors.New("terms of service not accepted")
	ErrAuthCodeInvalid  = errors.New("authorization code is invalid")
)

// Business is a searchable company record
type Business struct {
	BusinessID string `json:"business_id"`
	DUNS       string `json:"duns"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Zip        string `json:"zip,omitempty"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
	Verified   bool   `json:"verified"`
}

// Product is a purchasable DandB product
type Product struct {
	ProductID string `json:"product_id"`
	PriceID   string `json:"price_id"`
	Name      string `json:"name"`
	Free      bool   `json:"free"`
}

// Page is a CMS page in one language
type Page struct {
	Page     string `json:"page"`
	Language string `json:"language"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// User is a registered account
type User struct {
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	AddressLine1 string    `json:"address_line_1,omitempty"`
	AddressLine2 string    `json:"address_line_2,omitempty"`
	AddressLine3 string    `json:"address_line_3,omitempty"`
	City         string    `json:"city,omitempty"`
	StateCode    string    `json:"state_code,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	Source       string    `json:"source,omitempty"`
	AcceptedTOS  bool      `json:"accepted_tos"`
	CreatedAt    time.Time `json:"created_at"`

	password string
}

// Entitlement is a product granted to a user
type Entitlement struct {
	ProductID   string    `json:"product_id"`
	PriceID     string    `json:"price_id,omitempty"`
	Quantity    int       `json:"quantity"`
	DUNS        string    `json:"duns,omitempty"`
	PaymentType string    `json:"payment_type,omitempty"`
	Agent       string    `json:"agent_identifier,omitempty"`
	GrantedAt   time.Time `json:"granted_at"`
}

// Session is an issued user token
type Session struct {
	Email        string    `json:"email"`
	UserToken    string    `json:"user_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`

	// pinned sessions survive PurgeExpired
	pinned bool
}

// Email is a recorded message send
type Email struct {
	MessageID    string                 `json:"message_id"`
	UserEmail    string                 `json:"user_email"`
	DisplayName  string                 `json:"display_name"`
	FolderName   string                 `json:"folder_name"`
	CampaignName string                 `json:"campaign_name"`
	Options      map[string]interface{} `json:"options"`
	QueuedAt     time.Time              `json:"queued_at"`
}

type authCode struct {
	email       string
	clientID    string
	redirectURI string
}

// Store keeps all sandbox state in memory. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	accessTokens map[string]time.Time
	businesses   []*Business
	catalog      map[string]Product
	products     map[string][]Product
	pages        map[string]*Page
	users        map[string]*User
	sessions     map[string]*Session
	entitlements map[string][]Entitlement
	authCodes    map[string]authCode
	emails       []Email

	userTokenTTL time.Duration
	now          func() time.Time
}

// NewStore creates an empty store
func NewStore(userTokenTTL time.Duration) *Store {
	return &Store{
		accessTokens: make(map[string]time.Time),
		catalog:      make(map[string]Product),
		products:     make(map[string][]Product),
		pages:        make(map[string]*Page),
		users:        make(map[string]*User),
		sessions:     make(map[string]*Session),
		entitlements: make(map[string][]Entitlement),
		authCodes:    make(map[string]authCode),
		userTokenTTL: userTokenTTL,
		now:          time.Now,
	}
}

func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IssueAccessToken creates an API access token valid for ttl
func (s *Store) IssueAccessToken(ttl time.Duration) string {
	token := newToken()
	s.mu.Lock()
	s.accessTokens[token] = s.now().Add(ttl)
	s.mu.Unlock()
	return token
}

// ValidAccessToken reports whether token was issued and has not expired
func (s *Store) ValidAccessToken(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expires, ok := s.accessTokens[token]
	return ok && s.now().Before(expires)
}

// AddBusiness adds a business record
func (s *Store) AddBusiness(b Business) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.businesses = append(s.businesses, &b)
}

// AddRecommendations adds recommended products for a DUNS and lists them
// in the catalog
func (s *Store) AddRecommendations(duns string, products ...Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		s.catalog[p.ProductID] = p
	}
	s.products[duns] = append(s.products[duns], products...)
}

// Product looks up a catalog product
func (s *Store) Product(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.catalog[id]
	return p, ok
}

// AddPage adds a CMS page
func (s *Store) AddPage(p Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[p.Page+"/"+p.Language] = &p
}

func (s *Store) filterBusinesses(match func(*Business) bool) []Business {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Business, 0)
	for _, b := range s.businesses {
		if match(b) {
			out = append(out, *b)
		}
	}
	return out
}

// SearchByDUNS returns the businesses with the DUNS number
func (s *Store) SearchByDUNS(duns string, international bool) []Business {
	return s.filterBusinesses(func(b *Business) bool {
		return b.DUNS == duns && (international || b.Country == "US")
	})
}

// AddressFilter narrows a name search
type AddressFilter struct {
	Address string
	City    string
	Zip     string
}

// SearchByNameAddress returns US businesses whose name contains name
func (s *Store) SearchByNameAddress(name, state string, f AddressFilter) []Business {
	name = strings.ToLower(name)
	return s.filterBusinesses(func(b *Business) bool {
		switch {
		case b.Country != "US":
			return false
		case !strings.Contains(strings.ToLower(b.Name), name):
			return false
		case !strings.EqualFold(b.State, state):
			return false
		case f.Address != "" && !strings.EqualFold(b.Address, f.Address):
			return false
		case f.City != "" && !strings.EqualFold(b.City, f.City):
			return false
		case f.Zip != "" && b.Zip != f.Zip:
			return false
		}
		return true
	})
}

// SearchByPhone returns the businesses with the phone number, ignoring
// punctuation.
func (s *Store) SearchByPhone(phone string) []Business {
	phone = digits(phone)
	return s.filterBusinesses(func(b *Business) bool {
		return phone != "" && digits(b.Phone) == phone
	})
}

// SearchByNameCountry returns businesses in country whose name contains name
func (s *Store) SearchByNameCountry(name, country string) []Business {
	name = strings.ToLower(name)
	return s.filterBusinesses(func(b *Business) bool {
		return strings.EqualFold(b.Country, country) && strings.Contains(strings.ToLower(b.Name), name)
	})
}

func digits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// VerifiedBusiness looks up a verified business by business id, or by
// DUNS when byDUNS is set.
func (s *Store) VerifiedBusiness(id string, byDUNS bool) (*Business, error) {
	found := s.filterBusinesses(func(b *Business) bool {
		if !b.Verified {
			return false
		}
		if byDUNS {
			return b.DUNS == id
		}
		return b.BusinessID == id
	})
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

// Recommendations returns the recommended products for a DUNS
func (s *Store) Recommendations(duns string) ([]Product, error) {
	if len(s.SearchByDUNS(duns, true)) == 0 {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Product{}, s.products[duns]...), nil
}

// Page returns a CMS page
func (s *Store) Page(page, language string) (*Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[page+"/"+language]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

// Register creates a user account with password
func (s *Store) Register(u User, password string) (*User, error) {
	u.Email = normalizeEmail(u.Email)
	u.password = password
	u.CreatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return nil, ErrEmailTaken
	}
	s.users[u.Email] = &u
	copied := u
	return &copied, nil
}

// User returns the account registered with email
func (s *Store) User(email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *Store) newSessionLocked(email string) *Session {
	sess := &Session{
		Email:        email,
		UserToken:    newToken(),
		RefreshToken: newToken(),
		ExpiresAt:    s.now().Add(s.userTokenTTL),
	}
	s.sessions[sess.UserToken] = sess
	copied := *sess
	return &copied
}

// PutSession stores a session as is. Used for fixtures.
func (s *Store) PutSession(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserToken] = &sess
}

// Login issues a user token for valid credentials
func (s *Store) Login(email, password string) (*Session, error) {
	email = normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok || password == "" || u.password != password {
		return nil, ErrBadCredentials
	}
	return s.newSessionLocked(email), nil
}

// Refresh replaces the session owning refreshToken with a new one
func (s *Store) Refresh(email, refreshToken string) (*Session, error) {
	email = normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if sess.Email == email && sess.RefreshToken == refreshToken && refreshToken != "" {
			delete(s.sessions, token)
			return s.newSessionLocked(email), nil
		}
	}
	return nil, ErrTokenInvalid
}

// Session resolves a user token
func (s *Store) Session(userToken string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userToken]
	if !ok {
		return nil, ErrTokenInvalid
	}
	if !s.now().Before(sess.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	copied := *sess
	return &copied, nil
}

// Logout revokes a user token
func (s *Store) Logout(userToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userToken]; !ok {
		return ErrTokenInvalid
	}
	delete(s.sessions, userToken)
	return nil
}

// ResetPassword checks that email is registered. The sandbox sends nothing.
func (s *Store) ResetPassword(email string) error {
	_, err := s.User(email)
	return err
}

// ChangePassword replaces the password of the account
func (s *Store) ChangePassword(email, oldPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[normalizeEmail(email)]
	if !ok {
		return ErrNotFound
	}
	if u.password != oldPassword {
		return ErrWrongPassword
	}
	u.password = newPassword
	return nil
}

// AcceptTOS marks the terms of service accepted
func (s *Store) AcceptTOS(email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u.AcceptedTOS = true
	copied := *u
	return &copied, nil
}

// Entitlements lists the products granted to a user
func (s *Store) Entitlements(email string) []Entitlement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entitlement{}, s.entitlements[normalizeEmail(email)]...)
}

// Entitle grants products to a user. The order is rejected as a whole if
// it repeats a product or the user already owns one.
func (s *Store) Entitle(email string, grants []Entitlement) ([]Entitlement, error) {
	email = normalizeEmail(email)

	seen := make(map[string]bool, len(grants))
	for _, g := range grants {
		if seen[g.ProductID] {
			return nil, ErrDuplicateProduct
		}
		seen[g.ProductID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	if !u.AcceptedTOS {
		return nil, ErrTOSNotAccepted
	}
	for _, owned := range s.entitlements[email] {
		if seen[owned.ProductID] {
			return nil, ErrAlreadyEntitled
		}
	}

	now := s.now()
	for i := range grants {
		grants[i].GrantedAt = now
	}
	s.entitlements[email] = append(s.entitlements[email], grants...)
	return grants, nil
}

// RecordEmail queues an email and returns it with its timestamp
func (s *Store) RecordEmail(e Email) Email {
	e.QueuedAt = s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = append(s.emails, e)
	return e
}

// Emails returns the recorded emails ordered by message id
func (s *Store) Emails() []Email {
	s.mu.RLock()
	out := append([]Email{}, s.emails...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].MessageID < out[j].MessageID })
	return out
}

// IssueAuthCode creates a single use authorization code for the session owner
func (s *Store) IssueAuthCode(email, clientID, redirectURI string) string {
	code := newToken()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authCodes[code] = authCode{email: email, clientID: clientID, redirectURI: redirectURI}
	return code
}

// ExchangeAuthCode consumes an authorization code and issues a user token
func (s *Store) ExchangeAuthCode(code string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ac, ok := s.authCodes[code]
	if !ok {
		return nil, ErrAuthCodeInvalid
	}
	delete(s.authCodes, code)
	return s.newSessionLocked(ac.email), nil
}

// PurgeExpired drops expired access tokens and user sessions. Seeded
// fixture sessions are kept.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var purged int64
	for token, expires := range s.accessTokens {
		if !now.Before(expires) {
			delete(s.accessTokens, token)
			purged++
		}
	}
	for token, sess := range s.sessions {
		if !sess.pinned && !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged, nil
}
