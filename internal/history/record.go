package history

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusUnsigned  Status = "unsigned"
	StatusSigned    Status = "signed"
	StatusSubmitted Status = "submitted"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusPending   Status = "pending"
)

// Record is one assembled transaction produced by a session.
type Record struct {
	ID              string   `json:"id"`
	Command         string   `json:"command"`
	Mode            string   `json:"mode"`
	Network         string   `json:"network,omitempty"`
	SignerID        string   `json:"signer_id"`
	ReceiverID      string   `json:"receiver_id"`
	Actions         []string `json:"actions"`
	Status          Status   `json:"status"`
	TransactionHash string   `json:"transaction_hash,omitempty"`
	Payload         string   `json:"payload_base64,omitempty"`
	ExplorerURL     string   `json:"explorer_url,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

func NewRecordID() string {
	return "tx_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func NewRecord(command, mode string) Record {
	now := time.Now().UTC().Format(time.RFC3339)
	return Record{
		ID:        NewRecordID(),
		Command:   command,
		Mode:      mode,
		Actions:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}
