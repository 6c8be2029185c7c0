package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/safetynet/alerts/internal/domain/address"
	"github.com/safetynet/alerts/internal/domain/medicalrecord"
	"github.com/safetynet/alerts/internal/domain/person"
	"github.com/safetynet/alerts/internal/platform/db"
)

// Service runs every view in one read-only transaction.
type Service struct {
	addresses address.Repository
	persons   person.Repository
	records   medicalrecord.Repository
	tx        db.Transactor
	nowFunc   func() time.Time
}

func NewService(addresses address.Repository, persons person.Repository, records medicalrecord.Repository, tx db.Transactor) *Service {
	return &Service{
		addresses: addresses,
		persons:   persons,
		records:   records,
		tx:        tx,
		nowFunc:   time.Now,
	}
}

// WithNow replaces the reference instant used for ages.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.nowFunc = now
	return s
}

// completeAll loads the medical records of ps in one query and builds their
// views.
func (s *Service) completeAll(ctx context.Context, ps []*person.Person, withMedical bool) ([]*Person, error) {
	ids := make([]int64, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	records, err := s.records.ListByPersonIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	now := s.nowFunc()
	out := make([]*Person, len(ps))
	for i, p := range ps {
		out[i] = complete(p, records[p.ID], now, withMedical)
	}
	return out, nil
}

func (s *Service) PersonsCoveredByFirestation(ctx context.Context, station string) (*PersonsCoveredByFirestation, error) {
	res := &PersonsCoveredByFirestation{Persons: []*Person{}}
	err := s.tx.InReadTx(ctx, func(ctx context.Context) error {
		ps, err := s.persons.ListByFirestation(ctx, station)
		if err != nil {
			return err
		}
		views, err := s.completeAll(ctx, ps, false)
		if err != nil {
			return err
		}
		for _, p := range views {
			if p.IsAdult() {
				res.AdultsCount++
			} else {
				res.ChildrenCount++
			}
		}
		res.Persons = views
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) ChildAlert(ctx context.Context, addr string) (*ChildAlert, error) {
	res := &ChildAlert{Children: []*Person{}, Adults: []*Person{}}
	err := s.tx.InReadTx(ctx, func(ctx context.Context) error {
		ps, err := s.persons.ListByAddress(ctx, addr)
		if err != nil {
			return err
		}
		views, err := s.completeAll(ctx, ps, false)
		if err != nil {
			return err
		}
		for _, p := range views {
			if p.IsAdult() {
				res.Adults = append(res.Adults, p)
			} else {
				res.Children = append(res.Children, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) PhoneAlert(ctx context.Context, station string) (*PhoneAlert, error) {
	var ps []*person.Person
	err := s.tx.InReadTx(ctx, func(ctx context.Context) error {
		var err error
		ps, err = s.persons.ListByFirestation(ctx, station)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PhoneAlert{Phones: distinct(ps, func(p *person.Person) string { return p.Phone })}, nil
}

// Fire lists the residents of addr with their medical detail and the station
// covering it, if any.
func (s *Service) Fire(ctx context.Context, addr string) (*Fire, error) {
	res := &Fire{Persons: []*Person{}}
	err := s.tx.InReadTx(ctx, func(ctx context.Context) error {
		a, err := s.addresses.GetByAddress(ctx, addr)
		switch {
		case err == nil:
			res.StationNumber = a.Firestation
		case !errors.Is(err, address.ErrNotFound):
			return err
		}

		ps, err := s.persons.ListByAddress(ctx, addr)
		if err != nil {
			return err
		}
		res.Persons, err = s.completeAll(ctx, ps, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// FloodStations groups by address the residents covered by any of stations.
// Addresses nobody lives at are left out.
func (s *Service) FloodStations(ctx context.Context, stations []string) (*FloodStations, error) {
	res := &FloodStations{Stations: []*FloodEntry{}}
	err := s.tx.InReadTx(ctx, func(ctx context.Context) error {
		addrs, err := s.addresses.ListByFirestations(ctx, stations)
		if err != nil {
			return err
		}
		for _, a := range addrs {
			ps, err := s.persons.ListByAddress(ctx, a.Address)
			if err != nil {
				return err
			}
			if len(ps) == 0 {
				continue
			}
			views, err := s.completeAll(ctx, ps, true)
			if err != nil {
				return err
			}
			res.Stations = append(res.Stations, &FloodEntry{Address: a.Address, Persons: views})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PersonInfo lists every person carrying the name pair. Several matches are
// valid here.
func (s *Service) PersonInfo(ctx context.Context, firstName, lastName string) (*PersonInfo, error) {
	res := &PersonInfo{Persons: []*Person{}}
	err := s.tx.InReadTx(ctx, func(ctx context.Context) error {
		ps, err := s.persons.ListByNames(ctx, firstName, lastName)
		if err != nil {
			return err
		}
		res.Persons, err = s.completeAll(ctx, ps, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) CommunityEmail(ctx context.Context, city string) (*CommunityEmail, error) {
	var ps []*person.Person
	err := s.tx.InReadTx(ctx, func(ctx context.Context) error {
		var err error
		ps, err = s.persons.ListByCity(ctx, city)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &CommunityEmail{Emails: distinct(ps, func(p *person.Person) string { return p.Email })}, nil
}

// distinct returns the non-empty values of field in first-seen order.
func distinct(ps []*person.Person, field func(*person.Person) string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
