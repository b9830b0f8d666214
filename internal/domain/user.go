package domain

type User struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Phone     string `db:"phone" json:"phone,omitempty"`
	Hash      string `db:"password_hash" json:"-"`
	Role      string `db:"role" json:"role"`

	FailedLogins int    `db:"failed_logins" json:"-"`
	LockedUntil  string `db:"locked_until" json:"-"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	return u.FirstName + " " + u.LastName
}

// Address is a saved address on a user's profile. Orders snapshot address
// fields at placement and never reference these rows.
type Address struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"-"`
	Kind       string `db:"kind" json:"kind"` // billing | shipping
	FirstName  string `db:"first_name" json:"first_name"`
	LastName   string `db:"last_name" json:"last_name"`
	Line1      string `db:"line1" json:"line1"`
	Line2      string `db:"line2" json:"line2,omitempty"`
	City       string `db:"city" json:"city"`
	State      string `db:"state" json:"state"`
	PostalCode string `db:"postal_code" json:"postal_code"`
	Country    string `db:"country" json:"country"`
	IsDefault  bool   `db:"is_default" json:"is_default"`
	CreatedAt  string `db:"created_at" json:"created_at"`
}
