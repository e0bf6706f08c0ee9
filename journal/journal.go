// Package journal persists pricing runs so past valuations can be listed and replayed.
package journal

import (
	"context"
	cryptoRand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/meenmo/credlib/cds"
	"github.com/meenmo/credlib/report"
)

// ErrNotFound is returned by GetRun for an unknown id.
var ErrNotFound = errors.New("journal: run not found")

// Run is one priced contract.
type Run struct {
	ID            string
	Name          string
	Issuer        string
	ValuationDate time.Time
	PricedAt      time.Time

	// Specification is the msgpack-encoded report.SpecificationMap of the contract.
	Specification []byte

	PVProtectionLeg float64
	PVPremiumLeg    float64
	Price           float64
}

// Journal stores runs.
type Journal interface {
	RecordRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns the newest runs first. An empty issuer matches every run; limit <= 0
	// means no limit.
	ListRuns(ctx context.Context, issuer string, limit int) ([]Run, error)
	Close() error
}

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// newID returns a ULID stamped with at. IDs from the same millisecond stay increasing.
func newID(at time.Time) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(at.UTC()), mono)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewRun captures a priced contract with a fresh id.
func NewRun(name string, data cds.PricingData, result cds.PricingResult, at time.Time) (Run, error) {
	if data.Spec == nil {
		return Run{}, errors.New("NewRun: nil specification")
	}
	spec, err := report.EncodeMsgpack(report.SpecificationMap(data.Spec))
	if err != nil {
		return Run{}, fmt.Errorf("NewRun: %w", err)
	}
	id, err := newID(at)
	if err != nil {
		return Run{}, fmt.Errorf("NewRun: %w", err)
	}
	return Run{
		ID:              id,
		Name:            name,
		Issuer:          data.Spec.Issuer(),
		ValuationDate:   data.ValDate,
		PricedAt:        at.UTC(),
		Specification:   spec,
		PVProtectionLeg: result.PVProtectionLeg,
		PVPremiumLeg:    result.PVPremiumLeg,
		Price:           result.Price,
	}, nil
}

// Spec decodes the stored contract.
func (r Run) Spec() (*cds.Specification, error) {
	m, err := report.DecodeMsgpack(r.Specification)
	if err != nil {
		return nil, err
	}
	return report.SpecificationFromMap(m)
}

// Result returns the stored leg values.
func (r Run) Result() cds.PricingResult {
	return cds.PricingResult{
		PVProtectionLeg: r.PVProtectionLeg,
		PVPremiumLeg:    r.PVPremiumLeg,
		Price:           r.Price,
	}
}
