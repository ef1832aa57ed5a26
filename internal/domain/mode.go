package domain

// Mode identifies who a session acts for. It is resolved once when the
// session is bootstrapped: either an Owner editing their own itinerary or a
// Viewer reading a share snapshot.
type Mode interface {
	isMode()
}

// Owner is the mode of an authenticated device editing its itinerary.
// Key is the opaque per-device owner key from the identity provider.
type Owner struct {
	Key string
}

// Viewer is the mode of an anonymous reader of a share snapshot.
type Viewer struct {
	Token string
}

func (Owner) isMode()  {}
func (Viewer) isMode() {}
