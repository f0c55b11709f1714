package entity

// ProviderIdentity is what an OAuth exchange yields. It is passed by value and never mutated.
type ProviderIdentity struct {
	OpenID   string
	UnionID  string // empty when the provider did not return one
	Nickname string
	Avatar   string
}
