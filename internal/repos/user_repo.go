package repos

import (
	"time"

	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id,email,first_name,last_name,phone,password_hash,role,failed_logins,locked_until,created_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.DB.Exec(`
		INSERT INTO users(id,email,first_name,last_name,phone,password_hash,role,created_at)
		VALUES(?,?,?,?,?,?,?,?)
	`, u.ID, u.Email, u.FirstName, u.LastName, u.Phone, u.Hash, u.Role, time.Now().UTC().Format(time.RFC3339))
	return err
}

// RecordLoginFailure bumps the failure counter and locks the account once the
// threshold is crossed.
func (r *UserRepo) RecordLoginFailure(id string, threshold int, lockFor time.Duration) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var failures int
	if err := tx.Get(&failures, `SELECT failed_logins FROM users WHERE id=?`, id); err != nil {
		return err
	}
	failures++
	lockedUntil := ""
	if failures >= threshold {
		lockedUntil = time.Now().UTC().Add(lockFor).Format(time.RFC3339)
	}
	if _, err := tx.Exec(`UPDATE users SET failed_logins=?, locked_until=? WHERE id=?`, failures, lockedUntil, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *UserRepo) ResetLoginFailures(id string) error {
	_, err := r.DB.Exec(`UPDATE users SET failed_logins=0, locked_until='' WHERE id=?`, id)
	return err
}

// ---------- Saved addresses ----------

func (r *UserRepo) ListAddresses(userID string) ([]domain.Address, error) {
	out := []domain.Address{}
	err := r.DB.Select(&out, `
		SELECT id,user_id,kind,first_name,last_name,line1,line2,city,state,postal_code,country,is_default,created_at
		FROM addresses WHERE user_id=? ORDER BY is_default DESC, created_at DESC
	`, userID)
	return out, err
}

func (r *UserRepo) AddAddress(a *domain.Address) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if a.IsDefault {
		if _, err := tx.Exec(`UPDATE addresses SET is_default=0 WHERE user_id=? AND kind=?`, a.UserID, a.Kind); err != nil {
			return err
		}
	}
	_, err = tx.Exec(`
		INSERT INTO addresses(id,user_id,kind,first_name,last_name,line1,line2,city,state,postal_code,country,is_default,created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, a.ID, a.UserID, a.Kind, a.FirstName, a.LastName, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.IsDefault)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *UserRepo) UpdateAddress(a *domain.Address) (bool, error) {
	tx, err := r.DB.Beginx()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if a.IsDefault {
		if _, err := tx.Exec(`UPDATE addresses SET is_default=0 WHERE user_id=? AND kind=?`, a.UserID, a.Kind); err != nil {
			return false, err
		}
	}
	res, err := tx.Exec(`
		UPDATE addresses
		SET kind=?, first_name=?, last_name=?, line1=?, line2=?, city=?, state=?, postal_code=?, country=?, is_default=?
		WHERE id=? AND user_id=?
	`, a.Kind, a.FirstName, a.LastName, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.IsDefault, a.ID, a.UserID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	return true, tx.Commit()
}

func (r *UserRepo) DeleteAddress(userID, addressID string) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM addresses WHERE id=? AND user_id=?`, addressID, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
