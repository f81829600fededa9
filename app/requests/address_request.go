package requests

import "github.com/address-cache/app/models"

// ResolveAddressRequest request to resolve one raw provider payload
type ResolveAddressRequest struct {
	Payload models.RawAddressPayload `json:"payload" binding:"required"` // Nominatim-style reverse-geocoding response
}
