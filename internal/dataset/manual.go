package dataset

import (
	"math"
	"strconv"
)

// PointInput is one manually entered location.
type PointInput struct {
	Longitude        float64 `json:"longitude" yaml:"longitude"`
	Latitude         float64 `json:"latitude" yaml:"latitude"`
	HousingMedianAge float64 `json:"housing_median_age" yaml:"housing_median_age"`
	TotalRooms       float64 `json:"total_rooms" yaml:"total_rooms"`
	TotalBedrooms    float64 `json:"total_bedrooms" yaml:"total_bedrooms"`
	Population       float64 `json:"population" yaml:"population"`
	Households       float64 `json:"households" yaml:"households"`
	MedianIncome     float64 `json:"median_income" yaml:"median_income"`
}

// DefaultPoint returns the values a new entry form starts with.
func DefaultPoint() PointInput {
	return PointInput{
		Longitude:        -120,
		Latitude:         35,
		HousingMedianAge: 20,
		TotalRooms:       1000,
		TotalBedrooms:    200,
		Population:       500,
		Households:       150,
		MedianIncome:     3.0,
	}
}

// ManualColumns is the column order of a manual entry dataset.
var ManualColumns = []string{
	ColLongitude, ColLatitude, ColHousingMedianAge, ColTotalRooms, ColTotalBedrooms,
	ColPopulation, ColHouseholds, ColMedianIncome, ColPredictedPrice,
}

const (
	DefaultMaxPoints        = 20
	DefaultPlaceholderPrice = 200000.0
)

// EntryBuilder accumulates manual points and turns them into a Dataset with one
// row per point and a constant predicted price.
type EntryBuilder struct {
	max         int
	placeholder float64
	points      []PointInput
}

// NewEntryBuilder returns a builder accepting up to max points. Non-positive
// values fall back to the defaults.
func NewEntryBuilder(max int, placeholder float64) *EntryBuilder {
	if max <= 0 {
		max = DefaultMaxPoints
	}
	if placeholder <= 0 || math.IsNaN(placeholder) || math.IsInf(placeholder, 0) {
		placeholder = DefaultPlaceholderPrice
	}
	return &EntryBuilder{max: max, placeholder: placeholder}
}

// Placeholder returns the predicted price assigned to every point.
func (b *EntryBuilder) Placeholder() float64 { return b.placeholder }

// Len returns the number of points added so far.
func (b *EntryBuilder) Len() int { return len(b.points) }

// Add validates p and appends it.
func (b *EntryBuilder) Add(p PointInput) error {
	n := len(b.points) + 1
	if n > b.max {
		return &EntryError{Reason: "at most " + strconv.Itoa(b.max) + " points allowed"}
	}
	if err := validatePoint(n, p); err != nil {
		return err
	}
	b.points = append(b.points, p)
	return nil
}

// AddDefaults appends n default points.
func (b *EntryBuilder) AddDefaults(n int) error {
	for i := 0; i < n; i++ {
		if err := b.Add(DefaultPoint()); err != nil {
			return err
		}
	}
	return nil
}

// Build returns the dataset of all points added so far.
func (b *EntryBuilder) Build() (*Dataset, error) {
	if len(b.points) == 0 {
		return nil, &EntryError{Reason: "at least one point is required"}
	}
	rows := make([][]Value, len(b.points))
	for i, p := range b.points {
		rows[i] = []Value{
			Num(p.Longitude), Num(p.Latitude), Num(p.HousingMedianAge), Num(p.TotalRooms),
			Num(p.TotalBedrooms), Num(p.Population), Num(p.Households), Num(p.MedianIncome),
			Num(b.placeholder),
		}
	}
	return New("manual entry", ManualColumns, rows)
}

func validatePoint(n int, p PointInput) error {
	fields := []struct {
		name string
		v    float64
	}{
		{ColLongitude, p.Longitude},
		{ColLatitude, p.Latitude},
		{ColHousingMedianAge, p.HousingMedianAge},
		{ColTotalRooms, p.TotalRooms},
		{ColTotalBedrooms, p.TotalBedrooms},
		{ColPopulation, p.Population},
		{ColHouseholds, p.Households},
		{ColMedianIncome, p.MedianIncome},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &EntryError{Point: n, Field: f.name, Reason: "must be a finite number"}
		}
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return &EntryError{Point: n, Field: ColLongitude, Reason: "must be within [-180, 180]"}
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return &EntryError{Point: n, Field: ColLatitude, Reason: "must be within [-90, 90]"}
	}
	return nil
}
