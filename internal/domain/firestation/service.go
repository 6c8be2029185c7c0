package firestation

import (
	"context"
	"errors"

	"github.com/safetynet/alerts/internal/domain/address"
	"github.com/safetynet/alerts/internal/platform/db"
)

type Service struct {
	addresses address.Repository
	tx        db.Transactor
}

func NewService(addresses address.Repository, tx db.Transactor) *Service {
	return &Service{addresses: addresses, tx: tx}
}

// GetFirestation returns address.ErrNotFound for an unknown or uncovered
// address.
func (s *Service) GetFirestation(ctx context.Context, addr string) (*Firestation, error) {
	a, err := s.addresses.GetByAddress(ctx, addr)
	if err != nil {
		return nil, err
	}
	f := fromAddress(a)
	if f == nil {
		return nil, address.ErrNotFound
	}
	return f, nil
}

// CreateFirestation assigns the body's station to its address, creating a
// placeholder address without city and zip when it is unknown.
func (s *Service) CreateFirestation(ctx context.Context, body *Firestation) (*Outcome, error) {
	var out *Outcome
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.assign(ctx, body)
		return err
	})
	return out, err
}

// UpdateFirestation assigns a station to addr. The address is the key of the
// resource and cannot be changed by the body. An unknown address is created.
func (s *Service) UpdateFirestation(ctx context.Context, addr string, body *Firestation) (*Outcome, error) {
	if body.Address != addr {
		return nil, ErrImmutableAddress
	}
	var out *Outcome
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.assign(ctx, body)
		return err
	})
	return out, err
}

func (s *Service) assign(ctx context.Context, body *Firestation) (*Outcome, error) {
	station := body.Station
	a, err := s.addresses.GetByAddress(ctx, body.Address)
	if errors.Is(err, address.ErrNotFound) {
		a = &address.Address{Address: body.Address, Firestation: &station}
		if err := s.addresses.Create(ctx, a); err != nil {
			return nil, err
		}
		return &Outcome{Created: true, Firestation: fromAddress(a)}, nil
	}
	if err != nil {
		return nil, err
	}

	a.Firestation = &station
	if err := s.addresses.Update(ctx, a); err != nil {
		return nil, err
	}
	return &Outcome{Firestation: fromAddress(a)}, nil
}

// DeleteFirestation clears the station of addr. The address record and its
// residents are kept.
func (s *Service) DeleteFirestation(ctx context.Context, addr string) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.addresses.GetByAddress(ctx, addr)
		if err != nil {
			return err
		}
		if a.Firestation == nil {
			return address.ErrNotFound
		}
		a.Firestation = nil
		return s.addresses.Update(ctx, a)
	})
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.addresses.Count(ctx)
}
