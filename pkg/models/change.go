package models

type ChangeOp string

const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"
)

// ChangeEvent is one notification from the order header change feed.
type ChangeEvent struct {
	Table string   `json:"table"`
	Op    ChangeOp `json:"op"`
	ID    string   `json:"id"`
}
