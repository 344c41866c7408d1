package sandbox

import "time"

// Fixture credentials for the seeded demo account
const (
	DemoEmail        = "demo@example.com"
	DemoPassword     = "password123"
	ExpiredUserToken = "expired-token"
)

// Seed loads the demo data set
func Seed(s *Store) {
	businesses := []Business{
		{BusinessID: "1001", DUNS: "007280554", Name: "Acme Widgets", Address: "100 Ocean Ave", City: "Malibu", State: "CA", Zip: "90265", Country: "US", Phone: "(310) 555-0100", Verified: true},
		{BusinessID: "1002", DUNS: "060704780", Name: "Acme Widgets Supply", Address: "9 Harbor Rd", City: "San Diego", State: "CA", Zip: "92101", Country: "US", Phone: "619-555-0142"},
		{BusinessID: "1003", DUNS: "804735132", Name: "Birch & Sons Hardware", Address: "42 Main St", City: "Austin", State: "TX", Zip: "73301", Country: "US", Phone: "512.555.0199", Verified: true},
		{BusinessID: "2001", DUNS: "216551042", Name: "Maple Leaf Trading", City: "Toronto", Country: "CA", Verified: true},
		{BusinessID: "2002", DUNS: "315369934", Name: "Acme Widgets GmbH", City: "Berlin", Country: "DE"},
	}
	for _, b := range businesses {
		s.AddBusiness(b)
	}

	s.AddRecommendations("007280554",
		Product{ProductID: "1", PriceID: "11", Name: "CreditSignal", Free: true},
		Product{ProductID: "7", PriceID: "71", Name: "CreditBuilder Plus"},
	)
	s.AddRecommendations("804735132",
		Product{ProductID: "1", PriceID: "11", Name: "CreditSignal", Free: true},
	)

	s.AddPage(Page{Page: "terms", Language: "en", Title: "Terms of Use", Body: "Sandbox terms of use."})
	s.AddPage(Page{Page: "terms", Language: "fr", Title: "Conditions d'utilisation", Body: "Conditions du bac à sable."})
	s.AddPage(Page{Page: "privacy", Language: "en", Title: "Privacy Policy", Body: "Sandbox privacy policy."})

	_, _ = s.Register(User{
		Email:       DemoEmail,
		FirstName:   "Demo",
		LastName:    "User",
		AcceptedTOS: true,
	}, DemoPassword)

	s.PutSession(Session{
		Email:        DemoEmail,
		UserToken:    ExpiredUserToken,
		RefreshToken: "expired-refresh-token",
		ExpiresAt:    time.Unix(0, 0),
		pinned:       true,
	})
}
