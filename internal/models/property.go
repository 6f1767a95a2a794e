package models

import "time"

type PropertyID int64

type PropertyType string

const (
	TypeSingleFamily PropertyType = "single_family"
	TypeCondo        PropertyType = "condo"
	TypeTownhouse    PropertyType = "townhouse"
	TypeMultiFamily  PropertyType = "multi_family"
	TypeLand         PropertyType = "land"
	TypeCommercial   PropertyType = "commercial"
)

func PropertyTypes() []PropertyType {
	return []PropertyType{
		TypeSingleFamily,
		TypeCondo,
		TypeTownhouse,
		TypeMultiFamily,
		TypeLand,
		TypeCommercial,
	}
}

func (t PropertyType) Valid() bool {
	switch t {
	case TypeSingleFamily, TypeCondo, TypeTownhouse, TypeMultiFamily, TypeLand, TypeCommercial:
		return true
	}
	return false
}

type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusPending ListingStatus = "pending"
	StatusSold    ListingStatus = "sold"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSold:
		return true
	}
	return false
}

type PropertyRecord struct {
	ID           PropertyID    `json:"id"`
	Street       string        `json:"street"`
	City         string        `json:"city"`
	State        string        `json:"state"`
	PostalCode   string        `json:"postal_code"`
	PropertyType PropertyType  `json:"property_type"`
	Status       ListingStatus `json:"status"`
	Price        int64         `json:"price"`
	Bedrooms     int           `json:"bedrooms"`
	Bathrooms    float64       `json:"bathrooms"`
	SquareFeet   int           `json:"square_feet"`
	LotSizeSqFt  *int          `json:"lot_size_sqft" gorm:"column:lot_size_sqft"`
	YearBuilt    *int          `json:"year_built"`
	GarageSpaces *int          `json:"garage_spaces"`
	HasBasement  *bool         `json:"has_basement"`
	DaysOnMarket *int          `json:"days_on_market"`
	ListedDate   *time.Time    `json:"listed_date"`
	SoldDate     *time.Time    `json:"sold_date"`
	Latitude     *float64      `json:"latitude"`
	Longitude    *float64      `json:"longitude"`
	Geohash      string        `json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (PropertyRecord) TableName() string { return "properties" }

// HasCoordinates reports whether the record carries a usable lat/lng pair.
func (p PropertyRecord) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

type MarketStats struct {
	TotalProperties int     `json:"total_properties"`
	TotalActive     int     `json:"total_active"`
	TotalPending    int     `json:"total_pending"`
	TotalSold       int     `json:"total_sold"`
	AveragePrice    float64 `json:"average_price"`
	MedianPrice     float64 `json:"median_price"`
	AvgPricePerSqFt float64 `json:"avg_price_per_sqft"`
	AvgDaysOnMarket float64 `json:"avg_days_on_market"`
}

type AreaStats struct {
	PostalPrefix    string  `json:"postal_prefix"`
	PropertyCount   int     `json:"property_count"`
	AveragePrice    float64 `json:"average_price"`
	MedianPrice     float64 `json:"median_price"`
	AvgPricePerSqFt float64 `json:"avg_price_per_sqft"`
}

type PropertyFilter struct {
	City         string
	PostalPrefix string
	Status       ListingStatus
	PropertyType PropertyType
	MinPrice     int64
	MaxPrice     int64
	Limit        int
}
