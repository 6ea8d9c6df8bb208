package order

// StatusChangeRequest is the admin payload for moving an order along its lifecycle.
type StatusChangeRequest struct {
	Status string `json:"status" example:"processing"`
	Note   string `json:"note"   example:"picked at Leeds depot"`
}

// Confirmation is everything the order confirmation page shows.
type Confirmation struct {
	Order    *Order          `json:"order"`
	Timeline []TimelineEntry `json:"timeline"`
}

// Public is the confirmation as shown to someone holding only the order
// number: no contact details, address, notes or timeline notes.
func (c Confirmation) Public() *Confirmation {
	o := *c.Order
	o.UserID, o.CartID, o.Email = "", nil, ""
	o.ShippingAddressID, o.Notes = nil, ""
	tl := make([]TimelineEntry, len(c.Timeline))
	for i, e := range c.Timeline {
		e.Note = ""
		tl[i] = e
	}
	return &Confirmation{Order: &o, Timeline: tl}
}
