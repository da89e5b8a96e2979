package domain

import "context"

// Transaction exposes the domain operations that a persistence
// implementation must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateOTU(OTU) (OTU, error)
	UpdateOTU(id string, mutator func(*OTU) error) (OTU, error)
	DeleteOTU(id string) error
	FindOTU(id string) (OTU, bool)
	FindOTUByTaxid(taxid int) (OTU, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListOTUs() []OTU
	FindOTU(id string) (OTU, bool)
	FindOTUByTaxid(taxid int) (OTU, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It
// mirrors the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetOTU(id string) (OTU, bool)
	GetOTUByTaxid(taxid int) (OTU, bool)
	ListOTUs() []OTU
}
