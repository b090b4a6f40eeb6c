package schema

// GatewayAuditEventTable represents the 'gateway.auditevent' table
type GatewayAuditEventTable struct {
	Table      string
	ID         string
	EventType  string
	Actor      string
	Detail     string
	SourceIP   string
	OccurredAt string
}

// GatewayAuditEvent is the schema definition for gateway.auditevent
var GatewayAuditEvent = GatewayAuditEventTable{
	Table:      "gateway.auditevent",
	ID:         "id",
	EventType:  "eventtype",
	Actor:      "actor",
	Detail:     "detail",
	SourceIP:   "sourceip",
	OccurredAt: "occurredat",
}

// Columns returns all standard column names
func (t GatewayAuditEventTable) Columns() []string {
	return []string{
		t.ID, t.EventType, t.Actor, t.Detail, t.SourceIP, t.OccurredAt,
	}
}
