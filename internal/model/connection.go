// internal/model/connection.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionBlocked  ConnectionStatus = "blocked"
)

// Connection is the single row describing the relationship between an
// unordered pair of companies. CompanyA is always the lower id, so lookups
// are order-independent and at most one row can exist per pair.
// BlockingCompanyID is set on the transition into Blocked and never
// overwritten while still Blocked (first blocker wins).
type Connection struct {
	ID                uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyA          uint64           `gorm:"not null;index" json:"company_a"`
	CompanyB          uint64           `gorm:"not null;index" json:"company_b"`
	Status            ConnectionStatus `gorm:"type:text;not null" json:"status"`
	RequestedBy       uuid.UUID        `gorm:"type:uuid;not null" json:"requested_by"`
	BlockingCompanyID *uint64          `json:"blocking_company_id"`
	InitialMessage    string           `gorm:"type:text" json:"initial_message"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Involves reports whether companyID is one of the two sides.
func (c *Connection) Involves(companyID uint64) bool {
	return c.CompanyA == companyID || c.CompanyB == companyID
}

// Other returns the opposite side of the pair.
func (c *Connection) Other(companyID uint64) uint64 {
	if c.CompanyA == companyID {
		return c.CompanyB
	}
	return c.CompanyA
}

// ConnectionChat is a message exchanged inside a connection. Rows exist
// only while the connection exists and is not Blocked.
type ConnectionChat struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConnectionID uint64    `gorm:"not null;index" json:"connection_id"`
	Sender       uuid.UUID `gorm:"type:uuid;not null" json:"sender"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrderedPair normalizes two company ids into the (low, high) order the
// Connection row invariant requires.
func OrderedPair(a, b uint64) (uint64, uint64) {
	if a <= b {
		return a, b
	}
	return b, a
}
