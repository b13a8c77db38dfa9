package models

import (
	"fmt"
	"strings"
)

// Metric names a value column. Every series, joined column and matrix axis
// is one of the metrics below; arbitrary strings are rejected at config time.
type Metric string

const (
	TotalVehicleSales  Metric = "total_vehicle_sales"
	RetailEmployees    Metric = "retail_employees"
	CrudeOil           Metric = "crude_oil"
	NaturalGas         Metric = "natural_gas"
	CovidCases         Metric = "covid_cases"
	ConsumerConfidence Metric = "consumer_confidence"
	BusinessConfidence Metric = "business_confidence"
)

// AllMetrics lists the known metrics in declaration order.
func AllMetrics() []Metric {
	return []Metric{
		TotalVehicleSales,
		RetailEmployees,
		CrudeOil,
		NaturalGas,
		CovidCases,
		ConsumerConfidence,
		BusinessConfidence,
	}
}

// IsValid returns true if m is a known metric.
func (m Metric) IsValid() bool {
	for _, k := range AllMetrics() {
		if m == k {
			return true
		}
	}
	return false
}

func (m Metric) String() string { return string(m) }

// ParseMetric converts a raw name into a known metric.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.TrimSpace(strings.ToLower(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return m, nil
}
