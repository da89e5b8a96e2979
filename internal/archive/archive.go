// Package archive caches fetched sequence records as JSON blobs so
// repeated curation runs do not refetch upstream sources.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"refcore/internal/infra/blob/core"
	"refcore/pkg/domain"
)

const keyPrefix = "records/"

// FetchFunc retrieves a record from an upstream source when the archive
// has no cached copy.
type FetchFunc func(ctx context.Context, accessionVersion string) (domain.Record, error)

// Archive stores one JSON blob per accession version on a blob store.
type Archive struct {
	store core.Store
}

// New returns an archive backed by the given blob store.
func New(store core.Store) *Archive { return &Archive{store: store} }

func key(accessionVersion string) string { return keyPrefix + accessionVersion + ".json" }

// Put caches the record, replacing any existing copy.
func (a *Archive) Put(ctx context.Context, record domain.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = a.store.Put(ctx, key(record.AccessionVersion), bytes.NewReader(data), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"accession": record.Accession},
	})
	return err
}

// Get returns the cached record for the accession version. The boolean is
// false when no copy is cached.
func (a *Archive) Get(ctx context.Context, accessionVersion string) (domain.Record, bool, error) {
	_, body, err := a.store.Get(ctx, key(accessionVersion))
	if errors.Is(err, core.ErrNotFound) {
		return domain.Record{}, false, nil
	}
	if err != nil {
		return domain.Record{}, false, err
	}
	defer func() { _ = body.Close() }()

	var record domain.Record
	if err := json.NewDecoder(body).Decode(&record); err != nil {
		return domain.Record{}, false, fmt.Errorf("decode cached record %s: %w", accessionVersion, err)
	}
	return record, true, nil
}

// Ensure returns the cached record, fetching and caching it on a miss.
func (a *Archive) Ensure(ctx context.Context, accessionVersion string, fetch FetchFunc) (domain.Record, error) {
	record, ok, err := a.Get(ctx, accessionVersion)
	if err != nil {
		return domain.Record{}, err
	}
	if ok {
		return record, nil
	}
	record, err = fetch(ctx, accessionVersion)
	if err != nil {
		return domain.Record{}, fmt.Errorf("fetch %s: %w", accessionVersion, err)
	}
	if record.AccessionVersion != accessionVersion {
		return domain.Record{}, fmt.Errorf("fetch %s returned record %s", accessionVersion, record.AccessionVersion)
	}
	if err := a.Put(ctx, record); err != nil {
		return domain.Record{}, err
	}
	return record, nil
}

// List returns the accession versions of every cached record, ordered.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	infos, err := a.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(infos))
	for _, info := range infos {
		name := strings.TrimPrefix(info.Key, keyPrefix)
		versions = append(versions, strings.TrimSuffix(name, ".json"))
	}
	return versions, nil
}
