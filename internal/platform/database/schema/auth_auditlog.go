package schema

// AuthAuditLogTable represents the 'auth.auditlog' table
type AuthAuditLogTable struct {
	Table     string
	ID        string
	ActorID   string
	Username  string
	Action    string
	Resource  string
	Detail    string
	IPAddress string
	CreatedAt string
}

var AuthAuditLog = AuthAuditLogTable{
	Table:     "auth.auditlog",
	ID:        "id",
	ActorID:   "actorid",
	Username:  "username",
	Action:    "action",
	Resource:  "resource",
	Detail:    "detail",
	IPAddress: "ipaddress",
	CreatedAt: "createdat",
}
