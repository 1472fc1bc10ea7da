package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/zombor/balance-siaga/internal/account"
	"github.com/zombor/balance-siaga/internal/insights"
	"github.com/zombor/balance-siaga/internal/ledger"
	"github.com/zombor/balance-siaga/internal/receipt"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadSize = int64(50 << 20) // high-resolution phone photos
)

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a {"error": message} response
func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// decodeBody reads a JSON request body into v
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

type sessionResponse struct {
	User      *account.User `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleRegister creates an account and logs it in
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, session, err := s.accounts.Register(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		writeError(w, "Email sudah terdaftar", http.StatusConflict)
		return
	case errors.Is(err, account.ErrInvalidInput):
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		slog.Error("Error registering user", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{User: user, Token: session.Token, ExpiresAt: session.ExpiresAt})
}

// handleLogin issues a session for valid credentials
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, session, err := s.accounts.Login(req.Email, req.Password)
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		writeError(w, "Email atau password salah", http.StatusUnauthorized)
		return
	case err != nil:
		slog.Error("Error logging in", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: user, Token: session.Token, ExpiresAt: session.ExpiresAt})
}

// handleLogout ends the current session
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Logout(bearerToken(r)); err != nil {
		slog.Error("Error logging out", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the user's profile with transaction statistics
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	counts, err := s.ledger.Counts(user.ID)
	if err != nil {
		slog.Error("Error counting transactions", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, account.Profile{
		User:             *user,
		TransactionCount: counts.Total,
		IncomeCount:      counts.Income,
		ExpenseCount:     counts.Expense,
		TransferCount:    counts.Transfer,
	})
}

// handleListTransactions returns the user's transactions, newest first
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := ledger.Filter{
		Type:     ledger.Type(r.URL.Query().Get("type")),
		Category: r.URL.Query().Get("category"),
	}
	transactions, err := s.ledger.List(currentUser(r).ID, filter)
	if err != nil {
		slog.Error("Error listing transactions", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Ensure we always return an array, not nil
	if transactions == nil {
		transactions = []*ledger.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

// handleCreateTransaction records a transaction
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req ledger.NewTransaction
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := s.ledger.Add(currentUser(r).ID, req)
	switch {
	case errors.Is(err, ledger.ErrInvalidTransaction):
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		slog.Error("Error creating transaction", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

// handleGetTransaction returns a single transaction
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.Get(currentUser(r).ID, r.PathValue("id"))
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, "Transaction not found", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Error getting transaction", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// handleDeleteTransaction deletes a transaction and its receipt file
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	t, err := s.ledger.Delete(user.ID, r.PathValue("id"))
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, "Transaction not found", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Error deleting transaction", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := s.receipts.DeleteFile(user.ID, t.ReceiptFile); err != nil {
		slog.Warn("Failed to delete file", "filename", t.ReceiptFile, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetReceiptFile returns the receipt stored with a transaction
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.receipts.GetReceiptFile(currentUser(r).ID, r.PathValue("id"))
	if err != nil {
		if !errors.Is(err, ledger.ErrNotFound) && !errors.Is(err, receipt.ErrNoReceipt) {
			slog.Error("Error getting receipt file", "error", err)
		}
		writeError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleCategories returns the user's distinct categories
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.Categories(currentUser(r).ID)
	if err != nil {
		slog.Error("Error listing categories", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// handleStats returns the dashboard totals
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.Summary(currentUser(r).ID)
	if err != nil {
		slog.Error("Error computing summary", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleExpenseBreakdown returns the expense chart data
func (s *Server) handleExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.ledger.ExpenseBreakdown(currentUser(r).ID)
	if err != nil {
		slog.Error("Error computing expense breakdown", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if breakdown == nil {
		breakdown = []ledger.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// handleExport downloads all of the user's transactions as CSV or JSON
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeError(w, "format must be csv or json", http.StatusBadRequest)
		return
	}

	transactions, err := s.ledger.All(currentUser(r).ID)
	if err != nil {
		slog.Error("Error exporting transactions", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+ledger.JSONFilename+`"`)
		err = ledger.WriteJSON(w, transactions)
	} else {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+ledger.CSVFilename+`"`)
		err = ledger.WriteCSV(w, transactions)
	}
	if err != nil {
		slog.Error("Error writing export", "format", format, "error", err)
	}
}

// handleScanReceipt reads a draft expense from an uploaded receipt
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		writeError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		writeError(w, "File is too large. Maximum size is 50MB. Please compress or resize your image.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	draft, err := s.receipts.ScanReceipt(r.Context(), currentUser(r).ID, header.Filename, data, uploadContentType(header.Header.Get("Content-Type"), header.Filename))
	if err != nil {
		slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		writeError(w, "Gagal memproses gambar", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}

// uploadContentType falls back to the file extension when the part has no type
func uploadContentType(contentType, filename string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// handleSaveReceipt records a reviewed draft as an expense
func (s *Server) handleSaveReceipt(w http.ResponseWriter, r *http.Request) {
	var req receipt.SaveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := s.receipts.SaveReceipt(currentUser(r).ID, req)
	switch {
	case errors.Is(err, receipt.ErrMissingFields):
		writeError(w, "Mohon isi jumlah dan deskripsi", http.StatusBadRequest)
		return
	case errors.Is(err, receipt.ErrUnknownFile):
		writeError(w, "File struk tidak ditemukan, silakan unggah ulang", http.StatusBadRequest)
		return
	case errors.Is(err, ledger.ErrInvalidTransaction):
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		slog.Error("Error saving receipt", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

// handleInsights asks the AI for an analysis of the user's transactions
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if s.insights == nil {
		writeError(w, "AI insights are not configured", http.StatusServiceUnavailable)
		return
	}

	user := currentUser(r)
	transactions, err := s.ledger.All(user.ID)
	if err != nil {
		slog.Error("Error listing transactions", "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	result, err := s.insights.Generate(r.Context(), user.ID, transactions)
	switch {
	case errors.Is(err, insights.ErrNoTransactions):
		writeError(w, "Tambahkan transaksi terlebih dahulu untuk mendapatkan insights AI.", http.StatusBadRequest)
		return
	case errors.Is(err, insights.ErrRateLimited):
		writeError(w, "Rate limits exceeded, please try again later.", http.StatusTooManyRequests)
		return
	case errors.Is(err, insights.ErrPaymentRequired):
		writeError(w, "Payment required, please add funds to your AI workspace.", http.StatusPaymentRequired)
		return
	case errors.Is(err, insights.ErrUnparseable):
		writeError(w, "Failed to parse AI insights", http.StatusInternalServerError)
		return
	case err != nil:
		writeError(w, "AI gateway error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
