package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type (
	// PropertyInput describes a catalog entry to be inserted, empty
	// Type/ImageURL are stored as null and replaced by defaults when read.
	PropertyInput struct {
		Slug     string
		Title    string
		Location string
		Type     string
		ImageURL string
		PriceTHB *int64
	}
)

// ListProperties returns the whole catalog ordered by id with IsFavorite
// computed for userID.
func (s *Store) ListProperties(ctx context.Context, userID int64) ([]Property, error) {
	props, err := s.listing.get(ctx, s.loadCatalog)
	if err != nil {
		return nil, err
	}
	favorites, err := s.favoriteSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range props {
		props[i].IsFavorite = favorites[props[i].ID]
	}
	return props, nil
}

// UpsertProperty inserts p unless its slug is already in the catalog
func (s *Store) UpsertProperty(ctx context.Context, p PropertyInput) (bool, error) {
	var id int64
	err := s.queryRow(ctx, `insert into properties (slug, title, location, type, image_url, price_thb)
		values (?, ?, ?, ?, ?, ?)
		on conflict (slug) do nothing
		returning id`,
		p.Slug, p.Title, p.Location, nullString(p.Type), nullString(p.ImageURL), nullInt(p.PriceTHB)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("unable to store property %v, cause %w", p.Slug, err)
	}
	s.listing.invalidate()
	return true, nil
}

// SetFavorite marks (or unmarks) propertyID as a favorite of userID.
// Marking twice or unmarking something that is not a favorite are no-ops.
func (s *Store) SetFavorite(ctx context.Context, userID, propertyID int64, favorite bool) error {
	if !favorite {
		_, err := s.exec(ctx, `delete from user_favorites where user_id = ? and property_id = ?`, userID, propertyID)
		if err != nil {
			return fmt.Errorf("unable to remove favorite %v of user %v, cause %w", propertyID, userID, err)
		}
		return nil
	}
	var found int
	err := s.queryRow(ctx, `select 1 from properties where id = ?`, propertyID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return PropertyNotFound{ID: propertyID}
	} else if err != nil {
		return fmt.Errorf("unable to lookup property %v, cause %w", propertyID, err)
	}
	_, err = s.exec(ctx, `insert into user_favorites (user_id, property_id) values (?, ?)
		on conflict (user_id, property_id) do nothing`, userID, propertyID)
	if isForeignKeyViolation(err) {
		// the property was checked above, so the user is the one missing
		return UserNotFound{ID: userID}
	} else if err != nil {
		return fmt.Errorf("unable to add favorite %v to user %v, cause %w", propertyID, userID, err)
	}
	return nil
}

func (s *Store) loadCatalog(ctx context.Context) ([]Property, error) {
	rows, err := s.query(ctx, `select id, slug, title, location, type, image_url, price_thb
		from properties
		order by id asc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list properties, cause %w", err)
	}
	defer rows.Close()
	var out []Property
	for rows.Next() {
		var p Property
		var tp, img sql.NullString
		var price sql.NullInt64
		err = rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Location, &tp, &img, &price)
		if err != nil {
			return nil, fmt.Errorf("unable to scan property, cause %w", err)
		}
		p.Type = DefaultPropertyType
		if tp.Valid {
			p.Type = tp.String
		}
		p.ImageURL = DefaultPropertyImage
		if img.Valid {
			p.ImageURL = img.String
		}
		if price.Valid {
			v := price.Int64
			p.PriceTHB = &v
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to list properties, cause %w", err)
	}
	return out, nil
}

func (s *Store) favoriteSet(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := s.query(ctx, `select property_id from user_favorites where user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("unable to list favorites of user %v, cause %w", userID, err)
	}
	defer rows.Close()
	out := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("unable to scan favorite, cause %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: len(v) > 0}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
