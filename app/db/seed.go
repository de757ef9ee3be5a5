package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// DefaultCatalog is the Mumbai starter catalog, in display order.
var DefaultCatalog = []types.POIInput{
	{
		Title:       "Marine Drive Promenade",
		Description: "Walk along Mumbai's iconic Queen's Necklace, enjoy the sea breeze and stunning sunset views over the Arabian Sea",
		ImageURL:    "/assets/marine-drive.jpg",
		Duration:    "2-3 hours",
		Difficulty:  "Easy",
		Category:    "Heritage",
	},
	{
		Title:       "Street Food Paradise",
		Description: "Experience authentic Mumbai flavors with vada pav, bhel puri, and pav bhaji at the city's most famous food streets",
		ImageURL:    "/assets/street-food.jpg",
		Duration:    "3-4 hours",
		Difficulty:  "Easy",
		Category:    "Food",
	},
	{
		Title:       "Victorian Gothic Architecture",
		Description: "Explore UNESCO World Heritage Site Chhatrapati Shivaji Terminus and surrounding colonial-era buildings",
		ImageURL:    "/assets/cst.jpg",
		Duration:    "2 hours",
		Difficulty:  "Easy",
		Category:    "Heritage",
	},
	{
		Title:       "Elephanta Caves Journey",
		Description: "Ferry ride to ancient rock-cut caves featuring impressive Hindu sculptures and temple complexes",
		ImageURL:    "/assets/elephanta.jpg",
		Duration:    "4-5 hours",
		Difficulty:  "Moderate",
		Category:    "Heritage",
	},
	{
		Title:       "Haji Ali Spiritual Walk",
		Description: "Visit the iconic mosque on a causeway, surrounded by the Arabian Sea, especially beautiful at sunset",
		ImageURL:    "/assets/haji-ali.jpg",
		Duration:    "1-2 hours",
		Difficulty:  "Easy",
		Category:    "Heritage",
	},
	{
		Title:       "Crawford Market Experience",
		Description: "Discover vibrant colonial-era market filled with fresh produce, spices, and local goods in historic building",
		ImageURL:    "/assets/crawford.jpg",
		Duration:    "2 hours",
		Difficulty:  "Easy",
		Category:    "Food",
	},
	{
		Title:       "Sanjay Gandhi National Park Trek",
		Description: "Escape to lush green trails, explore Kanheri Caves, and spot wildlife in this urban national park",
		ImageURL:    "/assets/park.jpg",
		Duration:    "4-6 hours",
		Difficulty:  "Moderate",
		Category:    "Nature",
	},
	{
		Title:       "Mumbai Night Lights Tour",
		Description: "Experience the city's dazzling nighttime skyline, from Bandra-Worli Sea Link to illuminated landmarks",
		ImageURL:    "/assets/skyline.jpg",
		Duration:    "3 hours",
		Difficulty:  "Easy",
		Category:    "Adventure",
	},
}

// SeedCatalog inserts catalog when the pois table is empty. It returns the
// number of rows inserted.
func SeedCatalog(ctx context.Context, db Querier, catalog []types.POIInput, logger *slog.Logger) (int, error) {
	var existing int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM pois").Scan(&existing); err != nil {
		return 0, fmt.Errorf("failed to count pois: %w", err)
	}
	if existing > 0 {
		logger.InfoContext(ctx, "POI catalog already seeded", slog.Int64("count", existing))
		return 0, nil
	}
	if len(catalog) == 0 {
		return 0, nil
	}

	insert := Psql.Insert("pois").Columns("title", "description", "image_url", "duration", "difficulty", "category")
	for _, p := range catalog {
		insert = insert.Values(p.Title, p.Description, p.ImageURL, p.Duration, p.Difficulty, p.Category)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build seed query: %w", err)
	}
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to seed pois: %w", err)
	}

	logger.InfoContext(ctx, "Seeded POI catalog", slog.Int64("inserted", tag.RowsAffected()))
	return int(tag.RowsAffected()), nil
}

// SeedAdmin creates the admin account unless the email is already taken.
func SeedAdmin(ctx context.Context, db Querier, email, name, passwordHash string, logger *slog.Logger) (bool, error) {
	query, args, err := Psql.Insert("admins").
		Columns("email", "name", "password_hash", "role").
		Values(email, name, passwordHash, types.RoleSuperAdmin).
		Suffix("ON CONFLICT (email) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build admin seed query: %w", err)
	}
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}
	created := tag.RowsAffected() == 1
	logger.InfoContext(ctx, "Admin seed finished", slog.String("email", email), slog.Bool("created", created))
	return created, nil
}
