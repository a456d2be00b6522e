package models

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates" binding:"len=2"` // [longitude, latitude]
}

// NewGeoPoint builds a Point from longitude and latitude.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Vendor is a service provider that owns at most one Schedule.
type Vendor struct {
	ID           string   `bson:"id" json:"id"`
	Name         string   `bson:"name" json:"name" binding:"required"`
	Location     GeoPoint `bson:"location" json:"location"`
	Availability bool     `bson:"availability" json:"availability"`
	Rating       float64  `bson:"rating" json:"rating"`
	TotalReviews int      `bson:"totalReviews" json:"totalReviews"`
	Services     []string `bson:"services" json:"services"`
	Distance     float64  `bson:"distance,omitempty" json:"distance,omitempty"` // metres, set by nearby search
}

// Customer holds a cached list of the customer's active bookings.
type Customer struct {
	ID             string   `bson:"id" json:"id"`
	Name           string   `bson:"name" json:"name" binding:"required"`
	Phone          string   `bson:"phone" json:"phone"`
	BookingHistory []string `bson:"booking_history" json:"booking_history"`
}

// Service is a catalog entry of a vendor.
type Service struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name" binding:"required"`
	Description string  `bson:"description" json:"description"`
	Category    string  `bson:"category" json:"category"`
	Price       float64 `bson:"price" json:"price" binding:"gte=0"`
	Duration    int     `bson:"duration" json:"duration" binding:"required,gt=0"` // minutes
	Vendor      string  `bson:"vendor" json:"vendor" binding:"required,entityid"`
}
