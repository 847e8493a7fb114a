package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Operation is the kind of committed decision.
type Operation string

const (
	OperationIn     Operation = "IN"
	OperationOut    Operation = "OUT"
	OperationCreate Operation = "CREATE"
)

// ParseOperation accepts the operation name in any case.
func ParseOperation(s string) (Operation, error) {
	switch Operation(strings.ToUpper(strings.TrimSpace(s))) {
	case OperationIn:
		return OperationIn, nil
	case OperationOut:
		return OperationOut, nil
	case OperationCreate:
		return OperationCreate, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// IsMovement reports whether op changes the in/out accumulators.
func (op Operation) IsMovement() bool {
	return op == OperationIn || op == OperationOut
}

// Column headers of the log sheet.
const (
	ColLogTimestamp   = "timestamp"
	ColLogBarcode     = "code num"
	ColLogDescription = "Description"
	ColLogOperation   = "operation"
	ColLogQuantity    = "quantity"
)

var LogColumns = []string{
	ColLogTimestamp,
	ColLogBarcode,
	ColLogDescription,
	ColLogOperation,
	ColLogQuantity,
}

// LogTimeLayout is how timestamps are written to the log sheet.
const LogTimeLayout = "2006-01-02 15:04:05"

// LogEntry is one committed movement or creation.
// Description is a snapshot taken at commit time.
type LogEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	Barcode     string          `json:"barcode"`
	Description string          `json:"description"`
	Operation   Operation       `json:"operation"`
	Quantity    decimal.Decimal `json:"quantity"`
}
