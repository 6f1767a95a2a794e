package models

import "strings"

// NotificationFilters limits which saved sessions produce a Telegram
// notification, keyed off the subject property. A nil bound or empty
// list leaves that check disabled.
type NotificationFilters struct {
	MinPrice       *int64         `json:"min_price"`
	MaxPrice       *int64         `json:"max_price"`
	MinSquareFeet  *int           `json:"min_square_feet"`
	MaxSquareFeet  *int           `json:"max_square_feet"`
	PostalPrefixes []string       `json:"postal_prefixes"`
	PropertyTypes  []PropertyType `json:"property_types"`
}

// Allows checks whether a property passes the filter settings
func (f *NotificationFilters) Allows(property PropertyRecord) bool {
	if f == nil {
		return true // No filters means allow all
	}

	// Check price range
	if f.MinPrice != nil && property.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && property.Price > *f.MaxPrice {
		return false
	}

	// Check living area range
	if f.MinSquareFeet != nil && property.SquareFeet < *f.MinSquareFeet {
		return false
	}
	if f.MaxSquareFeet != nil && property.SquareFeet > *f.MaxSquareFeet {
		return false
	}

	// Check postal area
	if len(f.PostalPrefixes) > 0 {
		allowed := false
		for _, prefix := range f.PostalPrefixes {
			if strings.HasPrefix(property.PostalCode, prefix) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	// Check property type
	if len(f.PropertyTypes) > 0 {
		allowed := false
		for _, propertyType := range f.PropertyTypes {
			if propertyType == property.PropertyType {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	return true
}
