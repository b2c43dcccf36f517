package models

// Session identifies the caller of a request. It is built per request and
// passed explicitly; an anonymous session has an empty UserID.
type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Token  string `json:"-"`
}

func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// CanView reports whether the session may open the form for answering.
func (s Session) CanView(form *Form) bool {
	if form == nil {
		return false
	}
	if form.Access != FormAccessPrivate && form.Access != "" {
		return true
	}
	return s.Authenticated() && s.UserID == form.OwnerID
}

func (s Session) Owns(form *Form) bool {
	return form != nil && s.Authenticated() && s.UserID == form.OwnerID
}
