package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"stockscan/internal/domain/model"
	repo "stockscan/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidOperation = errors.New("operation must be IN or OUT")
)

// Outcome is the result of one engine call. Only committed changes anything.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeConflict  Outcome = "conflict"
	OutcomeBusy      Outcome = "busy"
	OutcomeFound     Outcome = "found"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDebounced Outcome = "debounced"
)

type Result struct {
	Outcome Outcome             `json:"outcome"`
	Code    string              `json:"code,omitempty"`
	Record  *model.StockRecord  `json:"record,omitempty"`
	Matches []model.StockRecord `json:"matches,omitempty"`
	Entry   *model.LogEntry     `json:"entry,omitempty"`

	// barcode holding the guard when Outcome is busy
	HeldBy string `json:"held_by,omitempty"`
}

type Clock interface {
	Now() time.Time
}

type MovementInput struct {
	Code      string
	Operation model.Operation
	Quantity  decimal.Decimal
	Confirmed bool
}

type CreateInput struct {
	Code        string
	StockCode   string
	Description string
	Unit        string
	Quantity    decimal.Decimal
	Location    string
	Confirmed   bool
}

// InventoryUsecase runs scan decisions against the current source:
// guard -> lookup -> confirm -> mutate + log in one commit -> release.
type InventoryUsecase struct {
	mu     sync.RWMutex
	source repo.Source

	guard  *TxGuard
	mirror repo.AuditMirror
	clock  Clock
	logger *zap.Logger
}

// DI; mirror may be nil
func NewInventoryUsecase(
	source repo.Source,
	guard *TxGuard,
	mirror repo.AuditMirror,
	clock Clock,
	logger *zap.Logger,
) *InventoryUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryUsecase{
		source: source,
		guard:  guard,
		mirror: mirror,
		clock:  clock,
		logger: logger,
	}
}

func normalizeCode(code string) string {
	return strings.TrimSpace(code)
}

func (u *InventoryUsecase) Source() repo.Source {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.source
}

// UseSource switches between the canonical workbook and an uploaded snapshot.
// A pending decision belongs to the old table, so the guard is reset.
func (u *InventoryUsecase) UseSource(src repo.Source) {
	u.mu.Lock()
	u.source = src
	u.mu.Unlock()

	u.guard.Release()
	u.logger.Info("source switched",
		zap.String("source", src.Name()),
		zap.Bool("read_only", src.ReadOnly()))
}

// Pending returns the barcode whose decision is awaiting confirmation.
func (u *InventoryUsecase) Pending() (string, bool) {
	return u.guard.Holder()
}

// Cancel abandons the pending decision, whatever it is.
func (u *InventoryUsecase) Cancel(ctx context.Context) {
	if code, held := u.guard.Holder(); held {
		u.logger.Info("pending decision cancelled", zap.String("code", code))
	}
	u.guard.Release()
}

func (u *InventoryUsecase) busy(code string) Result {
	holder, _ := u.guard.Holder()
	u.logger.Debug("guard busy", zap.String("code", code), zap.String("held_by", holder))
	return Result{Outcome: OutcomeBusy, Code: code, HeldBy: holder}
}

// Lookup reads matching rows without touching the guard.
func (u *InventoryUsecase) Lookup(ctx context.Context, code string) ([]model.StockRecord, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, nil
	}
	return u.Source().Stocks().FindByBarcode(ctx, code)
}

// Log returns every committed entry in commit order.
func (u *InventoryUsecase) Log(ctx context.Context) ([]model.LogEntry, error) {
	return u.Source().Logs().List(ctx)
}

// Scan starts a decision for code. On found and not_found the guard stays
// held until the decision is confirmed or cancelled.
func (u *InventoryUsecase) Scan(ctx context.Context, code string) (Result, error) {
	code = normalizeCode(code)
	if code == "" {
		return Result{Outcome: OutcomeIgnored}, nil
	}
	if err := u.guard.Acquire(code); err != nil {
		return u.busy(code), nil
	}

	matches, err := u.Source().Stocks().FindByBarcode(ctx, code)
	if err != nil {
		u.guard.Release()
		return Result{}, err
	}
	if len(matches) == 0 {
		return Result{Outcome: OutcomeNotFound, Code: code}, nil
	}

	rec := matches[0]
	return Result{Outcome: OutcomeFound, Code: code, Record: &rec, Matches: matches}, nil
}

// ProcessMovement adds quantity to the in or out accumulator of the first
// row with this barcode. Balances may go negative.
func (u *InventoryUsecase) ProcessMovement(ctx context.Context, in MovementInput) (Result, error) {
	code := normalizeCode(in.Code)
	if code == "" {
		return Result{Outcome: OutcomeIgnored}, nil
	}
	if err := u.guard.Acquire(code); err != nil {
		return u.busy(code), nil
	}
	defer u.guard.Release()

	if !in.Operation.IsMovement() {
		return Result{}, ErrInvalidOperation
	}
	if !in.Quantity.IsPositive() {
		return Result{}, fmt.Errorf("%w: movement quantity must be > 0", ErrInvalidQuantity)
	}

	src := u.Source()
	matches, err := src.Stocks().FindByBarcode(ctx, code)
	if err != nil {
		return Result{}, err
	}
	if len(matches) == 0 {
		return Result{Outcome: OutcomeNotFound, Code: code}, nil
	}
	if !in.Confirmed {
		rec := matches[0]
		return Result{Outcome: OutcomeCancelled, Code: code, Record: &rec}, nil
	}

	var updated model.StockRecord
	var entry model.LogEntry
	err = src.WithinTx(ctx, func(r repo.TxRepos) error {
		found, err := r.Stocks().FindByBarcode(ctx, code)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return repo.ErrNotFound
		}

		updated, err = r.Stocks().Upsert(ctx, found[0].AddMovement(in.Operation, in.Quantity))
		if err != nil {
			return err
		}

		entry = model.LogEntry{
			Timestamp:   u.clock.Now().Truncate(time.Second),
			Barcode:     code,
			Description: updated.Description,
			Operation:   in.Operation,
			Quantity:    in.Quantity,
		}
		return r.Logs().Append(ctx, entry)
	})
	if errors.Is(err, repo.ErrNotFound) {
		return Result{Outcome: OutcomeNotFound, Code: code}, nil
	}
	if err != nil {
		u.logger.Error("movement not saved",
			zap.String("code", code),
			zap.String("operation", string(in.Operation)),
			zap.Error(err))
		return Result{}, fmt.Errorf("movement %s %s: %w", in.Operation, code, err)
	}

	u.committed(ctx, src, entry)
	return Result{Outcome: OutcomeCommitted, Code: code, Record: &updated, Entry: &entry}, nil
}

// CreateRecord appends a new row for an unknown barcode. The supplied
// quantity is stored as Qty; the in/out accumulators start at zero.
func (u *InventoryUsecase) CreateRecord(ctx context.Context, in CreateInput) (Result, error) {
	code := normalizeCode(in.Code)
	if code == "" {
		return Result{Outcome: OutcomeIgnored}, nil
	}
	if err := u.guard.Acquire(code); err != nil {
		return u.busy(code), nil
	}
	defer u.guard.Release()

	if in.Quantity.IsNegative() {
		return Result{}, fmt.Errorf("%w: initial quantity must be >= 0", ErrInvalidQuantity)
	}

	src := u.Source()
	matches, err := src.Stocks().FindByBarcode(ctx, code)
	if err != nil {
		return Result{}, err
	}
	if len(matches) > 0 {
		rec := matches[0]
		return Result{Outcome: OutcomeConflict, Code: code, Record: &rec}, nil
	}
	if !in.Confirmed {
		return Result{Outcome: OutcomeCancelled, Code: code}, nil
	}

	var created model.StockRecord
	var entry model.LogEntry
	var conflict *model.StockRecord
	err = src.WithinTx(ctx, func(r repo.TxRepos) error {
		found, err := r.Stocks().FindByBarcode(ctx, code)
		if err != nil {
			return err
		}
		if len(found) > 0 {
			conflict = &found[0]
			return repo.ErrConflict
		}

		created, err = r.Stocks().Upsert(ctx, model.StockRecord{
			StockCode:   strings.TrimSpace(in.StockCode),
			Description: strings.TrimSpace(in.Description),
			Barcode:     code,
			QuantityIn:  decimal.NewNullDecimal(decimal.Zero),
			QuantityOut: decimal.NewNullDecimal(decimal.Zero),
			Unit:        strings.TrimSpace(in.Unit),
			Qty:         decimal.NewNullDecimal(in.Quantity),
			Location:    strings.TrimSpace(in.Location),
		})
		if err != nil {
			return err
		}

		entry = model.LogEntry{
			Timestamp:   u.clock.Now().Truncate(time.Second),
			Barcode:     code,
			Description: created.Description,
			Operation:   model.OperationCreate,
			Quantity:    in.Quantity,
		}
		return r.Logs().Append(ctx, entry)
	})
	if errors.Is(err, repo.ErrConflict) {
		return Result{Outcome: OutcomeConflict, Code: code, Record: conflict}, nil
	}
	if err != nil {
		u.logger.Error("new record not saved", zap.String("code", code), zap.Error(err))
		return Result{}, fmt.Errorf("create %s: %w", code, err)
	}

	u.committed(ctx, src, entry)
	return Result{Outcome: OutcomeCommitted, Code: code, Record: &created, Entry: &entry}, nil
}

func (u *InventoryUsecase) committed(ctx context.Context, src repo.Source, entry model.LogEntry) {
	u.logger.Info("decision committed",
		zap.String("code", entry.Barcode),
		zap.String("operation", string(entry.Operation)),
		zap.String("quantity", entry.Quantity.String()),
		zap.String("source", src.Name()),
		zap.Bool("read_only", src.ReadOnly()))

	if u.mirror == nil || src.ReadOnly() {
		return
	}
	if err := u.mirror.Record(ctx, entry, src.Name()); err != nil {
		u.logger.Warn("audit mirror failed", zap.String("code", entry.Barcode), zap.Error(err))
	}
}
