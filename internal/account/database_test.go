package account

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.etcd.io/bbolt"

	"github.com/zombor/balance-siaga/internal/database"
)

var _ = Describe("BoltDB", func() {
	var (
		bolt *bbolt.DB
		db   *BoltDB
	)

	BeforeEach(func() {
		var err error
		bolt, err = database.Open(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())
		db, err = NewBoltDB(bolt)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if bolt != nil {
			bolt.Close()
		}
	})

	newUser := func(id, email string) *StoredUser {
		return &StoredUser{
			User: User{
				ID:         id,
				Username:   "budi",
				Email:      email,
				JoinedDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			},
			PasswordHash: []byte("hash"),
		}
	}

	Describe("CreateUser", func() {
		var err error

		JustBeforeEach(func() {
			err = db.CreateUser(newUser("user-1", "budi@example.com"))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should make the user retrievable by ID", func() {
			user, getErr := db.GetUser("user-1")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(user.Email).To(Equal("budi@example.com"))
			Expect(user.PasswordHash).To(Equal([]byte("hash")))
		})

		It("should make the user retrievable by email", func() {
			user, getErr := db.GetUserByEmail("budi@example.com")
			Expect(getErr).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal("user-1"))
		})

		When("the email is already registered", func() {
			BeforeEach(func() {
				Expect(db.CreateUser(newUser("user-0", "budi@example.com"))).To(Succeed())
			})

			It("returns ErrEmailTaken", func() {
				Expect(err).To(MatchError(ErrEmailTaken))
			})

			It("should not store the second user", func() {
				_, getErr := db.GetUser("user-1")
				Expect(getErr).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("GetUserByEmail", func() {
		When("the email is unknown", func() {
			It("returns ErrNotFound", func() {
				_, err := db.GetUserByEmail("nobody@example.com")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("sessions", func() {
		var session *Session

		BeforeEach(func() {
			session = &Session{
				Token:     "token-1",
				UserID:    "user-1",
				CreatedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				ExpiresAt: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
			}
			Expect(db.SaveSession(session)).To(Succeed())
		})

		It("should return a saved session", func() {
			got, err := db.GetSession("token-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.UserID).To(Equal("user-1"))
			Expect(got.ExpiresAt).To(BeTemporally("==", session.ExpiresAt))
		})

		It("should delete a session", func() {
			Expect(db.DeleteSession("token-1")).To(Succeed())
			_, err := db.GetSession("token-1")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("should not fail deleting an unknown session", func() {
			Expect(db.DeleteSession("missing")).To(Succeed())
		})
	})
})
