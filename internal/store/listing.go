package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/shareit-housing/apiserver/types"
)

// ListingRepository handles persistence for housing listings.
type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, user_id, accommodation_type, private_bathroom, rent, utility_included, amenities, distance_from_campus, images, status, published_at, created_at, updated_at`

func scanListing(scan func(dest ...any) error) (types.Listing, error) {
	var listing types.Listing
	var amenitiesJSON, imagesJSON []byte
	err := scan(
		&listing.ID,
		&listing.UserID,
		&listing.AccommodationType,
		&listing.PrivateBathroom,
		&listing.Rent,
		&listing.UtilityIncluded,
		&amenitiesJSON,
		&listing.DistanceFromCampus,
		&imagesJSON,
		&listing.Status,
		&listing.PublishedAt,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Listing{}, ErrNotFound
		}
		return types.Listing{}, err
	}

	if err := json.Unmarshal(amenitiesJSON, &listing.Amenities); err != nil {
		return types.Listing{}, err
	}
	if err := json.Unmarshal(imagesJSON, &listing.Images); err != nil {
		return types.Listing{}, err
	}
	return listing, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int) (types.Listing, error) {
	const query = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE id = $1`
	return scanListing(r.db.QueryRowContext(ctx, query, id).Scan)
}

func (r *ListingRepository) GetByUserID(ctx context.Context, userID int) (types.Listing, error) {
	const query = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE user_id = $1`
	return scanListing(r.db.QueryRowContext(ctx, query, userID).Scan)
}

// Upsert creates or updates the user's single listing atomically. New
// listings start as drafts; status, published_at, and images are owned
// by Finalize and AppendImage and are never touched here.
func (r *ListingRepository) Upsert(ctx context.Context, listing types.Listing) (types.Listing, error) {
	now := time.Now()

	amenitiesJSON, err := json.Marshal(listing.Amenities)
	if err != nil {
		return types.Listing{}, err
	}

	const query = `
		INSERT INTO listings (user_id, accommodation_type, private_bathroom, rent, utility_included,
			amenities, distance_from_campus, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'draft', $8, $8)
		ON CONFLICT (user_id) DO UPDATE
		SET accommodation_type = EXCLUDED.accommodation_type,
			private_bathroom = EXCLUDED.private_bathroom,
			rent = EXCLUDED.rent,
			utility_included = EXCLUDED.utility_included,
			amenities = EXCLUDED.amenities,
			distance_from_campus = EXCLUDED.distance_from_campus,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + listingColumns
	return scanListing(r.db.QueryRowContext(
		ctx,
		query,
		listing.UserID,
		listing.AccommodationType,
		listing.PrivateBathroom,
		listing.Rent,
		listing.UtilityIncluded,
		amenitiesJSON,
		listing.DistanceFromCampus,
		now,
	).Scan)
}

// AppendImage appends a public image URL to the user's listing.
func (r *ListingRepository) AppendImage(ctx context.Context, userID int, url string) error {
	const query = `
		UPDATE listings
		SET images = images || to_jsonb($1::text),
			updated_at = $2
		WHERE user_id = $3`
	result, err := r.db.ExecContext(ctx, query, url, time.Now(), userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Finalize moves the user's listing from draft to active and stamps
// published_at. The status guard makes the transition one-directional:
// an already-active listing is left untouched and affected is false.
func (r *ListingRepository) Finalize(ctx context.Context, userID int, publishedAt time.Time) (bool, error) {
	const query = `
		UPDATE listings
		SET status = 'active',
			published_at = $1,
			updated_at = $1
		WHERE user_id = $2 AND status = 'draft'`
	result, err := r.db.ExecContext(ctx, query, publishedAt, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListByStatus returns listings with the given status, newest first.
func (r *ListingRepository) ListByStatus(ctx context.Context, status types.ListingStatus) ([]types.Listing, error) {
	const query = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE status = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []types.Listing
	for rows.Next() {
		listing, err := scanListing(rows.Scan)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// ListByOwner returns the owner's listings in any status, newest first.
func (r *ListingRepository) ListByOwner(ctx context.Context, userID int) ([]types.Listing, error) {
	const query = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []types.Listing
	for rows.Next() {
		listing, err := scanListing(rows.Scan)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM listings WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
