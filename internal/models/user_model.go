package models

import "time"

// AdminClaim is the custom claim key that carries the admin flag.
const AdminClaim = "admin"

// UserRecord is the application's view of an identity held by the identity provider.
type UserRecord struct {
	UID          string     `json:"uid"`
	Email        string     `json:"email,omitempty"`
	DisplayName  string     `json:"displayName,omitempty"`
	Disabled     bool       `json:"disabled"`
	Admin        bool       `json:"admin"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	LastSignInAt *time.Time `json:"lastSignIn,omitempty"`
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users         []*UserRecord `json:"users"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

// NewUser holds the fields used to create an identity.
type NewUser struct {
	Email       string
	Password    string
	DisplayName string
}

// Caller is the verified identity assertion attached to a request.
// A nil *Caller means the request carried no assertion.
type Caller struct {
	UID   string
	Email string
	// Claims are the claims embedded in the assertion. They may be stale and are
	// never used for authorization decisions.
	Claims map[string]interface{}
}

// EnsureAdminResult reports the admin state after self-promotion.
type EnsureAdminResult struct {
	Updated bool `json:"updated"`
	Admin   bool `json:"admin"`
}
