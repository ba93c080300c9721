package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrStatusFetchFailed matches every *StatusFetchError via errors.Is
	ErrStatusFetchFailed = errors.New("status fetch failed")
	// ErrMissingDepositAddress is returned when no deposit address is given
	ErrMissingDepositAddress = errors.New("deposit address is required")
)

// StatusFetchError reports a transport or decoding failure while retrieving
// the raw payload. It is transient and safe to retry.
type StatusFetchError struct {
	DepositAddress string
	StatusCode     int
	Err            error
}

func (e *StatusFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch status for %s (upstream status %d): %v", e.DepositAddress, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to fetch status for %s: %v", e.DepositAddress, e.Err)
}

func (e *StatusFetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStatusFetchFailed) hold for any fetch error
func (e *StatusFetchError) Is(target error) bool { return target == ErrStatusFetchFailed }

// Fetcher retrieves the raw execution status payload for a deposit address
type Fetcher interface {
	FetchStatus(ctx context.Context, depositAddress string) (Payload, error)
}

// SnapshotRecorder persists normalized statuses
type SnapshotRecorder interface {
	Record(ctx context.Context, depositAddress string, st *NormalizedExecutionStatus) error
}

// Service fetches and normalizes execution statuses
type Service struct {
	fetcher    Fetcher
	normalizer *Normalizer
	recorder   SnapshotRecorder
	log        *slog.Logger
}

// NewService creates a status service. recorder may be nil.
func NewService(fetcher Fetcher, recorder SnapshotRecorder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		fetcher:    fetcher,
		normalizer: NewNormalizer(),
		recorder:   recorder,
		log:        log,
	}
}

// WithNormalizer replaces the normalizer, mainly to pin the clock in tests
func (s *Service) WithNormalizer(n *Normalizer) *Service {
	s.normalizer = n
	return s
}

// Get fetches the payload for depositAddress and returns its normalized form.
// Fetch failures are returned as *StatusFetchError.
func (s *Service) Get(ctx context.Context, depositAddress string) (*NormalizedExecutionStatus, error) {
	depositAddress = strings.TrimSpace(depositAddress)
	if depositAddress == "" {
		return nil, ErrMissingDepositAddress
	}

	payload, err := s.fetcher.FetchStatus(ctx, depositAddress)
	if err != nil {
		var fetchErr *StatusFetchError
		if !errors.As(err, &fetchErr) {
			err = &StatusFetchError{DepositAddress: depositAddress, Err: err}
		}
		return nil, err
	}

	st := s.normalizer.Normalize(payload)
	s.log.Debug("normalized execution status",
		slog.String("deposit_address", depositAddress),
		slog.String("status", st.Status),
		slog.String("updated_at", st.UpdatedAt),
	)

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, depositAddress, st); err != nil {
			s.log.Warn("failed to record status snapshot",
				slog.String("deposit_address", depositAddress),
				slog.Any("error", err),
			)
		}
	}

	return st, nil
}
