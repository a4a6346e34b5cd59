package offer

import (
	"time"

	"cine-pos/internal/model"
)

// Active returns the offers for productID that are valid at now.
// An empty result is valid; callers re-evaluate on every use since
// validity depends on the time.
func Active(offers []model.Offer, productID int64, now time.Time) []model.Offer {
	var active []model.Offer
	for _, o := range offers {
		if o.ProductID == productID && o.IsActive(now) {
			active = append(active, o)
		}
	}
	return active
}

// FindActive returns the offer with the given id if it applies to
// productID at now.
func FindActive(offers []model.Offer, offerID, productID int64, now time.Time) (model.Offer, bool) {
	for _, o := range Active(offers, productID, now) {
		if o.ID == offerID {
			return o, true
		}
	}
	return model.Offer{}, false
}
