package listing

import "github.com/barkshad/Real-estate/internal/models"

// Scope selects which part of the listing collection a feed delivers
type Scope struct {
	OwnerID string `json:"owner_id,omitempty"`
}

// AllListings is the public listings scope
func AllListings() Scope {
	return Scope{}
}

// OwnedBy scopes a feed to one owner's listings
func OwnedBy(ownerID string) Scope {
	return Scope{OwnerID: ownerID}
}

// IsAll reports whether the scope is unrestricted
func (s Scope) IsAll() bool {
	return s.OwnerID == ""
}

// Includes reports whether p belongs to the scope
func (s Scope) Includes(p *models.Property) bool {
	return s.IsAll() || p.OwnerID == s.OwnerID
}

func (s Scope) String() string {
	if s.IsAll() {
		return "all"
	}
	return "owner:" + s.OwnerID
}
