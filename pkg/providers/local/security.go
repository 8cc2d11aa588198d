package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/skybridge/skybridge/pkg/cloud"
)

// keyPairService implements cloud.KeyPairService. Key pairs carry no
// lifecycle state, so there is nothing to promote.
type keyPairService struct{ p *Provider }

// ListPage implements cloud.PageSource[cloud.KeyPair].
func (s *keyPairService) ListPage(ctx context.Context, marker string) (*cloud.ResultPage[cloud.KeyPair], error) {
	rows, err := s.p.store.listKeyPairs(ctx, marker, s.p.limit+1)
	if err != nil {
		return nil, err
	}
	truncated := len(rows) > s.p.limit
	if truncated {
		rows = rows[:s.p.limit]
	}

	total, err := s.p.store.count(ctx, "key_pairs")
	if err != nil {
		return nil, err
	}

	page := &cloud.ResultPage[cloud.KeyPair]{
		Data:          make([]cloud.KeyPair, 0, len(rows)),
		IsTruncated:   truncated,
		SupportsTotal: true,
		Total:         total,
	}
	for _, row := range rows {
		page.Data = append(page.Data, newKeyPair(s.p, &row))
	}
	if truncated {
		page.Marker = rows[len(rows)-1].ID
	}
	s.p.metrics.RecordPageFetched(Name, "key_pairs", len(page.Data))
	return page, nil
}

// Get implements cloud.KeyPairService. Lookup is by name.
func (s *keyPairService) Get(ctx context.Context, name string) (cloud.KeyPair, error) {
	row, err := s.p.store.getKeyPairByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &cloud.NotFoundError{Kind: "key pair", ID: name}
	}
	if err != nil {
		return nil, err
	}
	return newKeyPair(s.p, row), nil
}

// Create implements cloud.KeyPairService. Names are unique.
func (s *keyPairService) Create(ctx context.Context, name string) (cloud.KeyPair, error) {
	if name == "" {
		return nil, fmt.Errorf("key pair name must not be empty")
	}
	if _, err := s.p.store.getKeyPairByName(ctx, name); err == nil {
		return nil, fmt.Errorf("key pair %s already exists", name)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	row := keyPairRow{
		ID:   "kp-" + uuid.NewString(),
		Name: name,
	}
	if err := s.p.store.insertKeyPair(ctx, row); err != nil {
		return nil, err
	}
	s.p.log.WithField("name", name).Info("key pair created")
	return newKeyPair(s.p, &row), nil
}

// Delete implements cloud.KeyPairService. Deleting a missing key pair is
// not an error.
func (s *keyPairService) Delete(ctx context.Context, name string) error {
	return s.p.store.deleteKeyPairByName(ctx, name)
}

// keyPair implements cloud.KeyPair.
type keyPair struct {
	p    *Provider
	id   string
	name string
}

func newKeyPair(p *Provider, row *keyPairRow) *keyPair {
	return &keyPair{p: p, id: row.ID, name: row.Name}
}

func (k *keyPair) ID() string   { return k.id }
func (k *keyPair) Name() string { return k.name }

// Delete removes the key pair.
func (k *keyPair) Delete(ctx context.Context) error {
	return k.p.store.deleteKeyPairByName(ctx, k.name)
}
