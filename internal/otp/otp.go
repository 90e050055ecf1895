package otp

import (
	"errors"
	"fmt"
	"time"

	"github.com/ideamentor-dev/ideamentor/internal/mailer"
	"github.com/ideamentor-dev/ideamentor/internal/models"
	"github.com/pquerna/otp/totp"
	"gorm.io/gorm"
)

// Validity is how long a code can be verified after it was issued. The
// boundary is inclusive: a code is still good at exactly CreatedAt+Validity.
const Validity = 10 * time.Minute

var (
	ErrNotFound = errors.New("otp: record not found or already used")
	ErrExpired  = errors.New("otp: code expired")
	ErrDelivery = errors.New("otp: email delivery failed")
)

// Service issues and verifies email verification codes. Codes are TOTP
// derived from a shared secret, so two issues within the same time window
// produce the same code; the single-active-record invariant makes the
// replacement a no-op in that case.
type Service struct {
	secret string
	mail   mailer.Sender
}

func NewService(secret string, mail mailer.Sender) *Service {
	return &Service{secret: secret, mail: mail}
}

func (s *Service) Generate() (string, error) {
	return totp.GenerateCode(s.secret, time.Now())
}

// Deliver emails the code. It never touches the database, so callers are
// free to sequence it before their own transaction.
func (s *Service) Deliver(email, code string) error {
	subject := fmt.Sprintf("%s is your ideamentor code", code)
	body := fmt.Sprintf(`Log in to ideamentor

Welcome! Enter this code within the next 10 minutes to verify your email:

		%s
`, code)

	if err := s.mail.Send(email, subject, body); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	return nil
}

// Persist replaces any prior record for the email with a fresh one,
// keeping at most one active record per email. Run it inside the caller's
// transaction when other writes must commit with it.
func (s *Service) Persist(db *gorm.DB, email, code string) error {
	if err := db.Where("email = ?", email).Delete(&models.OTPRecord{}).Error; err != nil {
		return err
	}

	return db.Create(&models.OTPRecord{Email: email, Code: code}).Error
}

// Issue generates a code, emails it, and persists the record. The mail
// send happens before any write and never inside a transaction, so a
// delivery failure persists nothing and no database lock is held across
// SMTP I/O.
func (s *Service) Issue(db *gorm.DB, email string) error {
	code, err := s.Generate()

	if err != nil {
		return err
	}

	if err := s.Deliver(email, code); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return s.Persist(tx, email, code)
	})
}

// Verify looks up the record bound to the code, checks expiry, deletes the
// record (single use) and returns the email it was issued for. Pass a
// transaction handle when user activation must commit atomically with the
// record deletion.
func (s *Service) Verify(db *gorm.DB, code string) (string, error) {
	var record models.OTPRecord

	if err := db.Where("code = ?", code).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if time.Now().After(record.CreatedAt.Add(Validity)) {
		return "", ErrExpired
	}

	if err := db.Delete(&record).Error; err != nil {
		return "", err
	}

	return record.Email, nil
}
