package schema

// AuthUserTable represents the 'auth.account' table
type AuthUserTable struct {
	Table         string
	ID            string
	Username      string
	Password      string
	Role          string
	FullName      string
	Email         string
	IsActive      string
	LoginAttempts string
	LockedUntil   string
	LastLogin     string
	CreatedAt     string
	UpdatedAt     string
}

// AuthUser is the schema definition for auth.account
var AuthUser = AuthUserTable{
	Table:         "auth.account",
	ID:            "id",
	Username:      "username",
	Password:      "passwordhash",
	Role:          "role",
	FullName:      "fullname",
	Email:         "email",
	IsActive:      "isactive",
	LoginAttempts: "loginattempts",
	LockedUntil:   "lockeduntil",
	LastLogin:     "lastlogin",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

// Columns returns all standard column names
func (t AuthUserTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Password, t.Role, t.FullName, t.Email,
		t.IsActive, t.LoginAttempts, t.LockedUntil, t.LastLogin,
		t.CreatedAt, t.UpdatedAt,
	}
}
