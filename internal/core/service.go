package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"refcore/pkg/domain"
)

// Service exposes higher-level transactional curation operations on top of
// a persistent store. The engine stages themselves stay pure; the service
// owns transaction boundaries, logging, and metrics.
type Service struct {
	store     domain.PersistentStore
	log       *zap.Logger
	metrics   *Metrics
	tolerance float64
	nowFn     func() time.Time
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(log *zap.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithMetrics attaches operation metrics.
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLengthTolerance overrides the default segment length tolerance used
// during plan inference.
func WithLengthTolerance(tolerance float64) ServiceOption {
	return func(s *Service) { s.tolerance = tolerance }
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		log:       zap.NewNop(),
		tolerance: domain.DefaultLengthTolerance,
		nowFn:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore { return s.store }

// CreateOTU assembles and persists a new OTU. Creating a second OTU for a
// taxid already present in the reference fails.
func (s *Service) CreateOTU(ctx context.Context, p CreateParams) (OTU, Result, error) {
	start := s.nowFn()
	if p.LengthTolerance <= 0 {
		p.LengthTolerance = s.tolerance
	}

	var created OTU
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, exists := tx.FindOTUByTaxid(p.Taxid); exists {
			return fmt.Errorf("taxonomy ID %d has already been added to this reference", p.Taxid)
		}
		otu, err := CreateOTU(p)
		if err != nil {
			return err
		}
		created, err = tx.CreateOTU(otu)
		return err
	})
	if err != nil {
		s.log.Warn("otu creation failed", zap.Int("taxid", p.Taxid), zap.Error(err))
		return OTU{}, res, err
	}

	s.metrics.observeCreate(s.nowFn().Sub(start).Seconds(), len(created.ExcludedAccessions))
	s.log.Info("otu created",
		zap.String("otu_id", created.ID),
		zap.Int("taxid", created.Taxid),
		zap.String("name", created.Name),
		zap.Bool("multipartite", created.Schema.Multipartite),
	)
	return created, res, nil
}

// UpdateOTU reconciles newly fetched records into an existing OTU.
func (s *Service) UpdateOTU(ctx context.Context, id string, records []Record) (OTU, Result, error) {
	start := s.nowFn()

	var before, updated OTU
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var updateErr error
		updated, updateErr = tx.UpdateOTU(id, func(otu *OTU) error {
			before = otu.Clone()
			next, err := ApplyUpdate(*otu, records)
			if err != nil {
				return err
			}
			*otu = next
			return nil
		})
		return updateErr
	})
	if err != nil {
		s.log.Warn("otu update failed", zap.String("otu_id", id), zap.Error(err))
		return OTU{}, res, err
	}

	newlyExcluded := len(updated.ExcludedAccessions) - len(before.ExcludedAccessions)
	s.metrics.observeUpdate(s.nowFn().Sub(start).Seconds(), newlyExcluded)
	s.log.Info("otu updated",
		zap.String("otu_id", updated.ID),
		zap.Int("records", len(records)),
		zap.Int("newly_excluded", newlyExcluded),
	)
	return updated, res, nil
}

// PromoteOTU replaces linked sequences that have gained RefSeq
// equivalents and returns the promoted accession versions.
func (s *Service) PromoteOTU(ctx context.Context, id string, records []Record) (OTU, []string, Result, error) {
	var updated OTU
	var promoted []string
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var updateErr error
		updated, updateErr = tx.UpdateOTU(id, func(otu *OTU) error {
			next, accessions, err := Promote(*otu, records)
			if err != nil {
				return err
			}
			*otu = next
			promoted = accessions
			return nil
		})
		return updateErr
	})
	if err != nil {
		s.log.Warn("otu promotion failed", zap.String("otu_id", id), zap.Error(err))
		return OTU{}, nil, res, err
	}
	if len(promoted) > 0 {
		s.log.Info("sequences promoted", zap.String("otu_id", id), zap.Strings("accessions", promoted))
	}
	return updated, promoted, res, nil
}

// ExcludeAccessions adds accessions to an OTU's exclusion set and unlinks
// any sequences they cover. This is the manual curation path; the engine
// excludes redundant accessions automatically during create and update.
func (s *Service) ExcludeAccessions(ctx context.Context, id string, accessions []string) (OTU, Result, error) {
	var updated OTU
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var updateErr error
		updated, updateErr = tx.UpdateOTU(id, func(otu *OTU) error {
			for _, accession := range accessions {
				otu.ExcludedAccessions.Add(accession)
			}
			pruneExcluded(otu)
			return nil
		})
		return updateErr
	})
	if err != nil {
		return OTU{}, res, err
	}
	s.log.Info("accessions excluded", zap.String("otu_id", id), zap.Strings("accessions", accessions))
	return updated, res, nil
}

// AllowAccession removes an accession from an OTU's exclusion set, the
// explicit curation action that undoes automatic exclusion.
func (s *Service) AllowAccession(ctx context.Context, id string, accession string) (OTU, Result, error) {
	var updated OTU
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var updateErr error
		updated, updateErr = tx.UpdateOTU(id, func(otu *OTU) error {
			if !otu.ExcludedAccessions.Has(accession) {
				return fmt.Errorf("accession %s is not excluded", accession)
			}
			delete(otu.ExcludedAccessions, accession)
			return nil
		})
		return updateErr
	})
	if err != nil {
		return OTU{}, res, err
	}
	s.log.Info("accession allowed", zap.String("otu_id", id), zap.String("accession", accession))
	return updated, res, nil
}

// GetOTU retrieves an OTU by id from committed state.
func (s *Service) GetOTU(id string) (OTU, bool) { return s.store.GetOTU(id) }

// GetOTUByTaxid retrieves an OTU by taxonomy id from committed state.
func (s *Service) GetOTUByTaxid(taxid int) (OTU, bool) { return s.store.GetOTUByTaxid(taxid) }

// ListOTUs returns all OTUs from committed state.
func (s *Service) ListOTUs() []OTU { return s.store.ListOTUs() }
