package backend

// Identity is the signed-in principal reported by the session monitor.
// A nil *Identity means nobody is signed in.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Equal treats two absent identities as equal.
func (i *Identity) Equal(o *Identity) bool {
	if i == nil || o == nil {
		return i == nil && o == nil
	}
	return i.ID == o.ID
}
