package account

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/zombor/balance-siaga/internal/database"
)

const (
	usersBucket    = "users"
	emailsBucket   = "user_emails"
	sessionsBucket = "sessions"
)

// Buckets lists the top-level buckets the account store uses
var Buckets = []string{usersBucket, emailsBucket, sessionsBucket}

// DB defines the interface for account persistence
type DB interface {
	// CreateUser saves a new user, failing with ErrEmailTaken when the email is in use
	CreateUser(user *StoredUser) error

	// GetUser retrieves a user by ID
	GetUser(id string) (*StoredUser, error)

	// GetUserByEmail retrieves a user by normalized email
	GetUserByEmail(email string) (*StoredUser, error)

	// SaveSession saves a session
	SaveSession(session *Session) error

	// GetSession retrieves a session by token
	GetSession(token string) (*Session, error)

	// DeleteSession removes a session
	DeleteSession(token string) error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB wraps an open bbolt handle, creating the account buckets if needed
func NewBoltDB(db *bbolt.DB) (*BoltDB, error) {
	if err := database.EnsureBuckets(db, Buckets...); err != nil {
		return nil, err
	}
	return &BoltDB{db: db}, nil
}

// CreateUser saves a user and its email index entry in one transaction
func (b *BoltDB) CreateUser(user *StoredUser) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket([]byte(emailsBucket))
		if emails.Get([]byte(user.Email)) != nil {
			return ErrEmailTaken
		}

		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshaling user: %w", err)
		}
		if err := tx.Bucket([]byte(usersBucket)).Put([]byte(user.ID), data); err != nil {
			return err
		}
		return emails.Put([]byte(user.Email), []byte(user.ID))
	})
}

// GetUser retrieves a user by ID
func (b *BoltDB) GetUser(id string) (*StoredUser, error) {
	var user *StoredUser
	err := b.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = getUser(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user through the email index
func (b *BoltDB) GetUserByEmail(email string) (*StoredUser, error) {
	var user *StoredUser
	err := b.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket([]byte(emailsBucket)).Get([]byte(email))
		if id == nil {
			return fmt.Errorf("user %w: %s", ErrNotFound, email)
		}
		var err error
		user, err = getUser(tx, string(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func getUser(tx *bbolt.Tx, id string) (*StoredUser, error) {
	data := tx.Bucket([]byte(usersBucket)).Get([]byte(id))
	if data == nil {
		return nil, fmt.Errorf("user %w: %s", ErrNotFound, id)
	}
	var user StoredUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshaling user: %w", err)
	}
	return &user, nil
}

// SaveSession saves a session
func (b *BoltDB) SaveSession(session *Session) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshaling session: %w", err)
		}
		return tx.Bucket([]byte(sessionsBucket)).Put([]byte(session.Token), data)
	})
}

// GetSession retrieves a session by token
func (b *BoltDB) GetSession(token string) (*Session, error) {
	var session *Session
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(sessionsBucket)).Get([]byte(token))
		if data == nil {
			return fmt.Errorf("session %w", ErrNotFound)
		}
		return json.Unmarshal(data, &session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes a session
func (b *BoltDB) DeleteSession(token string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionsBucket)).Delete([]byte(token))
	})
}
