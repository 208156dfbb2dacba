package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"fintrack/internal/apperr"
	"fintrack/internal/storage"
)

// MaxReceiptSize caps uploads at 5 MiB.
const MaxReceiptSize = 5 << 20

// allowedReceiptTypes maps accepted content types to their canonical
// extension.
var allowedReceiptTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ObjectStore is the object storage surface for receipt files.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ReceiptStore is the storage surface the receipt service needs.
type ReceiptStore interface {
	GetTransaction(ctx context.Context, id, userID string) (storage.TransactionWithCategory, error)
	SetTransactionReceipt(ctx context.Context, id, userID, objectKey, fileName string) error
}

// ReceiptService attaches receipt files in object storage to transactions.
type ReceiptService struct {
	store         ReceiptStore
	objects       ObjectStore
	events        Events
	presignExpiry time.Duration
}

func NewReceiptService(store ReceiptStore, objects ObjectStore, events Events, presignExpiry time.Duration) *ReceiptService {
	return &ReceiptService{
		store:         store,
		objects:       objects,
		events:        events,
		presignExpiry: presignExpiry,
	}
}

// Upload validates and stores a receipt for the transaction, replacing any
// previous one. The object key embeds owner and transaction so keys never
// collide across users.
func (s *ReceiptService) Upload(ctx context.Context, transactionID, userID, fileName, contentType string, body io.Reader, size int64) (string, error) {
	if _, ok := allowedReceiptTypes[contentType]; !ok {
		return "", apperr.Validation(fmt.Sprintf("unsupported receipt type %q (jpeg, png, webp or pdf)", contentType))
	}
	if size <= 0 {
		return "", apperr.Validation("empty receipt file")
	}
	if size > MaxReceiptSize {
		return "", apperr.Validation("receipt file too large (max 5 MiB)")
	}

	t, err := s.lookup(ctx, transactionID, userID)
	if err != nil {
		return "", err
	}

	fileName = sanitizeFileName(fileName, contentType)
	key := receiptKey(userID, transactionID, fileName)

	if err := s.objects.Upload(ctx, key, contentType, body, size); err != nil {
		return "", fmt.Errorf("upload receipt: %w", err)
	}

	if err := s.store.SetTransactionReceipt(ctx, transactionID, userID, key, fileName); err != nil {
		// The orphaned object is cleaned up asynchronously.
		s.scheduleCleanup(ctx, key)
		return "", fmt.Errorf("attach receipt: %w", err)
	}

	// Replaced receipts keep their object around until the worker gets to it.
	if t.ReceiptFile != "" && t.ReceiptFile != key {
		s.scheduleCleanup(ctx, t.ReceiptFile)
	}

	slog.InfoContext(ctx, "Receipt uploaded",
		"transaction_id", transactionID,
		"object_key", key,
		"size", size)

	return key, nil
}

// Delete detaches and schedules removal of the transaction's receipt.
func (s *ReceiptService) Delete(ctx context.Context, transactionID, userID string) error {
	t, err := s.lookup(ctx, transactionID, userID)
	if err != nil {
		return err
	}
	if t.ReceiptFile == "" {
		return apperr.NotFound("transaction has no receipt")
	}

	if err := s.store.SetTransactionReceipt(ctx, transactionID, userID, "", ""); err != nil {
		return fmt.Errorf("detach receipt: %w", err)
	}
	s.scheduleCleanup(ctx, t.ReceiptFile)

	slog.InfoContext(ctx, "Receipt deleted",
		"transaction_id", transactionID,
		"object_key", t.ReceiptFile)

	return nil
}

// PresignedURL returns a temporary download URL for the receipt.
func (s *ReceiptService) PresignedURL(ctx context.Context, transactionID, userID string) (string, error) {
	t, err := s.lookup(ctx, transactionID, userID)
	if err != nil {
		return "", err
	}
	if t.ReceiptFile == "" {
		return "", apperr.NotFound("transaction has no receipt")
	}

	url, err := s.objects.PresignedGetURL(ctx, t.ReceiptFile, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign receipt: %w", err)
	}
	return url, nil
}

func (s *ReceiptService) lookup(ctx context.Context, transactionID, userID string) (storage.TransactionWithCategory, error) {
	t, err := s.store.GetTransaction(ctx, transactionID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.TransactionWithCategory{}, apperr.NotFound("transaction not found")
	}
	return t, err
}

func (s *ReceiptService) scheduleCleanup(ctx context.Context, key string) {
	if s.events == nil {
		return
	}
	if err := s.events.ReceiptRemoved(ctx, key); err != nil {
		slog.ErrorContext(ctx, "Failed to publish receipt cleanup message",
			"object_key", key, "error", err)
	}
}

func receiptKey(userID, transactionID, fileName string) string {
	return fmt.Sprintf("receipts/%s/%s/%s", userID, transactionID, fileName)
}

// sanitizeFileName strips any path components from the client-supplied name
// and falls back to a canonical name when nothing usable is left.
func sanitizeFileName(name, contentType string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == ".." || strings.Trim(name, "._") == "" {
		return "receipt" + allowedReceiptTypes[contentType]
	}
	return name
}
