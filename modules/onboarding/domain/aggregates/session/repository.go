package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("upload session not found")
	ErrExpired          = errors.New("upload session expired")
	ErrAlreadyConfirmed = errors.New("upload session already confirmed")
	ErrFixNotFound      = errors.New("fix id not found in session")
)

type Repository interface {
	Create(ctx context.Context, s UploadSession) error
	GetByID(ctx context.Context, id uuid.UUID) (UploadSession, error)
	// MarkProcessing flips PREVIEW to PROCESSING atomically. Exactly one
	// caller per session ever succeeds; everyone else gets
	// ErrAlreadyConfirmed.
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	// Finalize writes the terminal status and the confirm result.
	Finalize(ctx context.Context, id uuid.UUID, result ConfirmResult) error
	// DeleteExpired purges unconfirmed sessions past their expiry.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
