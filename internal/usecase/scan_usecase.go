package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrInvalidFrame = errors.New("frame could not be decoded")

// FrameDecoder turns a captured frame into zero or more barcode strings.
type FrameDecoder interface {
	Decode(ctx context.Context, frame []byte) ([]string, error)
}

type ScanDebouncer interface {
	Allow(ctx context.Context, code string) (bool, error)
}

// ScanUsecase feeds decoded frames into the engine exactly like typed codes,
// after dropping repeats inside the debounce window.
type ScanUsecase struct {
	decoder   FrameDecoder
	debouncer ScanDebouncer
	inventory *InventoryUsecase
	logger    *zap.Logger
}

func NewScanUsecase(decoder FrameDecoder, debouncer ScanDebouncer, inventory *InventoryUsecase, logger *zap.Logger) *ScanUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanUsecase{
		decoder:   decoder,
		debouncer: debouncer,
		inventory: inventory,
		logger:    logger,
	}
}

func (u *ScanUsecase) ScanFrame(ctx context.Context, frame []byte) ([]Result, error) {
	codes, err := u.decoder.Decode(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	results := make([]Result, 0, len(codes))
	for _, raw := range codes {
		code := normalizeCode(raw)
		if code == "" {
			continue
		}

		ok, err := u.debouncer.Allow(ctx, code)
		if err != nil {
			return nil, err
		}
		if !ok {
			u.logger.Debug("scan debounced", zap.String("code", code))
			results = append(results, Result{Outcome: OutcomeDebounced, Code: code})
			continue
		}

		res, err := u.inventory.Scan(ctx, code)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
