// Package delivery models delivery points and the ordered routes built over them.
package delivery

import (
	"errors"
	"time"
)

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
	ErrAddressRequired  = errors.New("delivery point address is required")
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks coordinate bounds.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return ErrInvalidLatitude
	}
	if c.Lng < -180 || c.Lng > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

// Point is one stop on a delivery run.
type Point struct {
	Address      string  `json:"address"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	OrderID      int     `json:"order_id"`
	CustomerName string  `json:"customer_name"`
}

// Validate checks the point's address and position.
func (p Point) Validate() error {
	if p.Address == "" {
		return ErrAddressRequired
	}
	return Coordinates{Lat: p.Lat, Lng: p.Lng}.Validate()
}

// Stop is a Point placed on a route with its timing.
type Stop struct {
	Point
	EstimatedArrival  string     `json:"estimated_arrival"`
	TravelTimeMinutes int        `json:"travel_time_minutes"`
	ArrivesAt         *time.Time `json:"arrives_at,omitempty"`
}

// Route is the response of a route ordering request.
type Route struct {
	StartingPoint  Coordinates `json:"starting_point"`
	OptimizedRoute []Stop      `json:"optimized_route"`
}

// ClockFormat is the wall-clock layout used for EstimatedArrival.
const ClockFormat = "15:04"
