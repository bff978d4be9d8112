// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

// Package store persists venues, operating hours, and user history in an
// embedded Badger database. It backs every collaborator interface the
// recommendation engine consumes.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/plateworks/tablescout/internal/hours"
	"github.com/plateworks/tablescout/internal/recommend"
)

// Key layout. Venue IDs and user IDs never contain ':'.
//
//	venue:<venueID>                     -> recommend.Venue
//	hours:<venueID>:<weekday 0-6>       -> []hours.Shift
//	special:<venueID>:<YYYY-MM-DD>      -> hours.SpecialHours
//	closure:<venueID>:<uuid>            -> hours.Closure
//	booking:<userID>:<RFC3339>:<uuid>   -> recommend.Booking
//	review:<userID>:<uuid>              -> recommend.Review
//	dietary:<userID>                    -> []string
const (
	venuePrefix   = "venue:"
	hoursPrefix   = "hours:"
	specialPrefix = "special:"
	closurePrefix = "closure:"
	bookingPrefix = "booking:"
	reviewPrefix  = "review:"
	dietaryPrefix = "dietary:"
)

// popularRatingFloor is the minimum average rating for the platform-wide
// popular set: featured venues rated at least this well, ordered by review
// volume.
const popularRatingFloor = 4.0

// Store is an embedded Badger store. Safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens or creates a store at dir.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(dir string, logger zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithIndexCacheSize(16 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger store at %s: %w", dir, err)
	}

	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get unmarshals the value at key into out. Returns found=false when the key
// does not exist.
func (s *Store) get(key string, out any) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	return true, nil
}

// scan decodes every value under prefix through decode, which receives the
// raw value bytes.
func (s *Store) scan(prefix string, decode func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(decode); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutVenue upserts a venue record.
func (s *Store) PutVenue(v *recommend.Venue) error {
	if v.ID == "" {
		return fmt.Errorf("venue has no ID")
	}
	return s.put(venuePrefix+v.ID, v)
}

// Venue returns a venue by ID.
func (s *Store) Venue(_ context.Context, id string) (*recommend.Venue, error) {
	var v recommend.Venue
	found, err := s.get(venuePrefix+id, &v)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("venue %s not found", id)
	}
	return &v, nil
}

// ListActive returns up to limit venues accepting bookings. Order follows
// key order, which callers must not rely on.
func (s *Store) ListActive(_ context.Context, limit int) ([]recommend.Venue, error) {
	venues := make([]recommend.Venue, 0, limit)
	err := s.scan(venuePrefix, func(val []byte) error {
		if limit > 0 && len(venues) >= limit {
			return nil
		}
		var v recommend.Venue
		if err := json.Unmarshal(val, &v); err != nil {
			return err
		}
		if v.Active() {
			venues = append(venues, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing active venues: %w", err)
	}
	return venues, nil
}

// ListPopular returns IDs of featured, well-rated venues ordered by review
// volume descending, venue ID ascending on ties.
func (s *Store) ListPopular(_ context.Context, limit int) ([]string, error) {
	var popular []recommend.Venue
	err := s.scan(venuePrefix, func(val []byte) error {
		var v recommend.Venue
		if err := json.Unmarshal(val, &v); err != nil {
			return err
		}
		if v.Active() && v.Featured && v.AverageRating >= popularRatingFloor {
			popular = append(popular, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing popular venues: %w", err)
	}

	sort.Slice(popular, func(i, j int) bool {
		if popular[i].TotalReviews != popular[j].TotalReviews {
			return popular[i].TotalReviews > popular[j].TotalReviews
		}
		return popular[i].ID < popular[j].ID
	})

	ids := make([]string, 0, len(popular))
	for _, v := range popular {
		if limit > 0 && len(ids) >= limit {
			break
		}
		ids = append(ids, v.ID)
	}
	return ids, nil
}

// PutRegularHours replaces a venue's shifts for one weekday.
func (s *Store) PutRegularHours(venueID string, day time.Weekday, shifts []hours.Shift) error {
	return s.put(fmt.Sprintf("%s%s:%d", hoursPrefix, venueID, day), shifts)
}

// RegularHours returns a venue's shifts for one weekday. A missing record
// means no service that day, not an error.
func (s *Store) RegularHours(_ context.Context, venueID string, day time.Weekday) ([]hours.Shift, error) {
	var shifts []hours.Shift
	_, err := s.get(fmt.Sprintf("%s%s:%d", hoursPrefix, venueID, day), &shifts)
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

// PutSpecialHours upserts a dated override for a venue.
func (s *Store) PutSpecialHours(venueID string, sh *hours.SpecialHours) error {
	if sh.Date == "" {
		return fmt.Errorf("special hours have no date")
	}
	return s.put(specialPrefix+venueID+":"+sh.Date, sh)
}

// SpecialHours returns the dated override for a venue, or nil when none
// exists.
func (s *Store) SpecialHours(_ context.Context, venueID, dateKey string) (*hours.SpecialHours, error) {
	var sh hours.SpecialHours
	found, err := s.get(specialPrefix+venueID+":"+dateKey, &sh)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &sh, nil
}

// PutClosure records a closure range for a venue.
func (s *Store) PutClosure(venueID string, c *hours.Closure) error {
	if c.StartDate == "" || c.EndDate == "" {
		return fmt.Errorf("closure has no date range")
	}
	return s.put(closurePrefix+venueID+":"+uuid.NewString(), c)
}

// Closure returns a closure covering the date key, or nil when none does.
// When several apply, a full-day closure wins over a partial one.
func (s *Store) Closure(_ context.Context, venueID, dateKey string) (*hours.Closure, error) {
	var match *hours.Closure
	err := s.scan(closurePrefix+venueID+":", func(val []byte) error {
		var c hours.Closure
		if err := json.Unmarshal(val, &c); err != nil {
			return err
		}
		if !c.Covers(dateKey) {
			return nil
		}
		if match == nil || (c.FullDay() && !match.FullDay()) {
			match = &c
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning closures for %s: %w", venueID, err)
	}
	return match, nil
}

// AddBooking records a completed booking in a user's history.
func (s *Store) AddBooking(userID string, b *recommend.Booking) error {
	key := fmt.Sprintf("%s%s:%s:%s",
		bookingPrefix, userID, b.BookingTime.UTC().Format(time.RFC3339), uuid.NewString())
	return s.put(key, b)
}

// CompletedBookings returns up to limit of the user's bookings, most recent
// first. Booking keys embed an RFC3339 timestamp, so reverse key order is
// reverse chronological.
func (s *Store) CompletedBookings(_ context.Context, userID string, limit int) ([]recommend.Booking, error) {
	prefix := []byte(bookingPrefix + userID + ":")

	bookings := make([]recommend.Booking, 0, limit)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode seek past the prefix range, then walk backward.
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.Valid(); it.Next() {
			if limit > 0 && len(bookings) >= limit {
				break
			}
			var b recommend.Booking
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &b)
			}); err != nil {
				return err
			}
			bookings = append(bookings, b)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing bookings for %s: %w", userID, err)
	}
	return bookings, nil
}

// AddReview records a user review.
func (s *Store) AddReview(userID string, r *recommend.Review) error {
	return s.put(reviewPrefix+userID+":"+uuid.NewString(), r)
}

// PositiveReviews returns the user's reviews rated at or above minRating.
func (s *Store) PositiveReviews(_ context.Context, userID string, minRating float64) ([]recommend.Review, error) {
	var reviews []recommend.Review
	err := s.scan(reviewPrefix+userID+":", func(val []byte) error {
		var r recommend.Review
		if err := json.Unmarshal(val, &r); err != nil {
			return err
		}
		if r.Rating >= minRating {
			reviews = append(reviews, r)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing reviews for %s: %w", userID, err)
	}
	return reviews, nil
}

// SetDietaryRestrictions replaces a user's declared restrictions.
func (s *Store) SetDietaryRestrictions(userID string, restrictions []string) error {
	return s.put(dietaryPrefix+userID, restrictions)
}

// DietaryRestrictions returns a user's declared restrictions, in declaration
// order. Missing record means none declared.
func (s *Store) DietaryRestrictions(_ context.Context, userID string) ([]string, error) {
	var restrictions []string
	_, err := s.get(dietaryPrefix+userID, &restrictions)
	if err != nil {
		return nil, err
	}
	return restrictions, nil
}
