package ledger

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/zombor/balance-siaga/internal/database"
)

const transactionsBucket = "transactions"

// Buckets lists the top-level buckets the ledger store uses
var Buckets = []string{transactionsBucket}

// DB defines the interface for transaction persistence. Every call is scoped
// to a single user.
type DB interface {
	// SaveTransaction saves a transaction under its user
	SaveTransaction(t *Transaction) error

	// GetTransaction retrieves one of the user's transactions
	GetTransaction(userID, id string) (*Transaction, error)

	// ListTransactions returns all of the user's transactions
	ListTransactions(userID string) ([]*Transaction, error)

	// DeleteTransaction removes one of the user's transactions
	DeleteTransaction(userID, id string) error
}

// BoltDB implements the DB interface using BoltDB, with one nested bucket per user
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB wraps an open bbolt handle, creating the ledger bucket if needed
func NewBoltDB(db *bbolt.DB) (*BoltDB, error) {
	if err := database.EnsureBuckets(db, Buckets...); err != nil {
		return nil, err
	}
	return &BoltDB{db: db}, nil
}

// SaveTransaction saves a transaction under its user
func (b *BoltDB) SaveTransaction(t *Transaction) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket([]byte(transactionsBucket)).CreateBucketIfNotExists([]byte(t.UserID))
		if err != nil {
			return fmt.Errorf("creating user bucket: %w", err)
		}
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshaling transaction: %w", err)
		}
		return bucket.Put([]byte(t.ID), data)
	})
}

// GetTransaction retrieves one of the user's transactions
func (b *BoltDB) GetTransaction(userID, id string) (*Transaction, error) {
	var t *Transaction
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(transactionsBucket)).Bucket([]byte(userID))
		if bucket == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTransactions returns all of the user's transactions in key order
func (b *BoltDB) ListTransactions(userID string) ([]*Transaction, error) {
	transactions := make([]*Transaction, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(transactionsBucket)).Bucket([]byte(userID))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var t Transaction
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("unmarshaling transaction: %w", err)
			}
			transactions = append(transactions, &t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

// DeleteTransaction removes one of the user's transactions
func (b *BoltDB) DeleteTransaction(userID, id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(transactionsBucket)).Bucket([]byte(userID))
		if bucket == nil || bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}
