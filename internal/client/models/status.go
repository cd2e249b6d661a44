package models

import (
	"fmt"
	"strings"
)

// ProductionStatus is the shop-floor stage of an order.
type ProductionStatus string

const (
	StatusQueued       ProductionStatus = "QUEUED"
	StatusInProduction ProductionStatus = "IN_PRODUCTION"
	StatusReady        ProductionStatus = "READY"
)

var ProductionStatuses = []ProductionStatus{StatusQueued, StatusInProduction, StatusReady}

func (s ProductionStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusInProduction, StatusReady:
		return true
	}
	return false
}

// ParseProductionStatus accepts the internal names and the backend's names
// (FILA, PRODUCAO, PRONTO), case-insensitively.
func ParseProductionStatus(s string) (ProductionStatus, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if st, ok := statusFromWire[v]; ok {
		return st, nil
	}
	if st := ProductionStatus(v); st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("unknown production status %q", s)
}

var statusToWire = map[ProductionStatus]string{
	StatusQueued:       "FILA",
	StatusInProduction: "PRODUCAO",
	StatusReady:        "PRONTO",
}

var statusFromWire = map[string]ProductionStatus{
	"FILA":     StatusQueued,
	"PRODUCAO": StatusInProduction,
	"PRONTO":   StatusReady,
}

// WireStatus returns the backend name for s, or "" when s is not valid.
func WireStatus(s ProductionStatus) string {
	return statusToWire[s]
}
