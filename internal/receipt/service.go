package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/zombor/balance-siaga/internal/ledger"
	"github.com/zombor/balance-siaga/internal/scanning"
)

// IDGenerator generates unique IDs for stored receipt files
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// Ledger is the part of the transaction ledger receipts are recorded in
type Ledger interface {
	Add(userID string, in ledger.NewTransaction) (*ledger.Transaction, error)
	Get(userID, id string) (*ledger.Transaction, error)
	All(userID string) ([]*ledger.Transaction, error)
}

// Service handles receipt operations
type Service struct {
	scanner     scanning.Scanner
	storage     Storage
	ledger      Ledger
	idGenerator IDGenerator
}

// NewService creates a new Service with the default ID generator
func NewService(scanner scanning.Scanner, storage Storage, l Ledger) *Service {
	return NewServiceWithDeps(scanner, storage, l, &uuidGenerator{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(scanner scanning.Scanner, storage Storage, l Ledger, idGen IDGenerator) *Service {
	return &Service{
		scanner:     scanner,
		storage:     storage,
		ledger:      l,
		idGenerator: idGen,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
	storedNamePattern   = regexp.MustCompile(`^[a-zA-Z0-9-]+_[a-zA-Z0-9\s\-_]+(\.[a-zA-Z0-9\s\-_]+)?$`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := unsafeFilenameChars.ReplaceAllString(filepath.Ext(filename), "")
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(repeatedSpaces.ReplaceAllString(base, " "))

	// phone cameras produce very long names
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" || base == "." {
		base = "receipt"
	}
	if ext != "" {
		ext = "." + ext
	}
	return base + ext
}

// ScanReceipt stores an uploaded receipt and reads a draft expense from it.
// The stored file is removed again when the receipt cannot be read.
func (s *Service) ScanReceipt(ctx context.Context, userID, filename string, data []byte, contentType string) (*Draft, error) {
	id := s.idGenerator.Generate()
	stored := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	if err := s.storage.Save(userID, stored, data); err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	receiptData, err := s.scanner.ScanReceipt(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		if delErr := s.storage.Delete(userID, stored); delErr != nil {
			slog.Warn("Failed to delete file", "filename", stored, "error", delErr)
		}
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	draft := &Draft{
		ID:             id,
		Text:           receiptData.Text,
		Amount:         receiptData.Amount,
		AmountDetected: receiptData.Amount.IsPositive(),
		Description:    receiptData.Description,
		Date:           receiptData.Date,
		Filename:       stored,
		ContentType:    contentType,
	}
	if draft.AmountDetected {
		draft.Message = "Jumlah terdeteksi: " + ledger.FormatIDR(draft.Amount)
	} else {
		draft.Message = "Jumlah tidak terdeteksi, silakan input manual"
	}
	return draft, nil
}

// SaveReceipt records a reviewed draft as an expense linked to its file
func (s *Service) SaveReceipt(userID string, req SaveRequest) (*ledger.Transaction, error) {
	description := strings.TrimSpace(req.Description)
	if !req.Amount.IsPositive() || description == "" {
		return nil, ErrMissingFields
	}
	if req.Filename != "" {
		if err := s.checkUnclaimedFile(userID, req.Filename); err != nil {
			return nil, err
		}
	}

	t, err := s.ledger.Add(userID, ledger.NewTransaction{
		Type:        ledger.Expense,
		Amount:      req.Amount,
		Category:    Category,
		Description: description,
		Date:        req.Date,
		ReceiptFile: req.Filename,
	})
	if err != nil {
		return nil, fmt.Errorf("recording expense: %w", err)
	}
	return t, nil
}

// checkUnclaimedFile makes sure name is a file ScanReceipt stored for the
// user and that no transaction links it yet.
func (s *Service) checkUnclaimedFile(userID, name string) error {
	if !storedNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrUnknownFile, name)
	}
	if _, err := s.storage.Get(userID, name); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnknownFile, name, err)
	}

	transactions, err := s.ledger.All(userID)
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}
	for _, t := range transactions {
		if t.ReceiptFile == name {
			return fmt.Errorf("%w: %q is linked to transaction %s", ErrUnknownFile, name, t.ID)
		}
	}
	return nil
}

// GetReceiptFile returns the receipt stored with a transaction and its content type
func (s *Service) GetReceiptFile(userID, transactionID string) ([]byte, string, error) {
	t, err := s.ledger.Get(userID, transactionID)
	if err != nil {
		return nil, "", err
	}
	if t.ReceiptFile == "" {
		return nil, "", ErrNoReceipt
	}

	data, err := s.storage.Get(userID, t.ReceiptFile)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(t.ReceiptFile)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// DeleteFile removes a stored receipt. An empty name is a no-op.
func (s *Service) DeleteFile(userID, name string) error {
	if name == "" {
		return nil
	}
	if err := s.storage.Delete(userID, name); err != nil {
		return fmt.Errorf("deleting receipt file: %w", err)
	}
	return nil
}
