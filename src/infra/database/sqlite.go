package database

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rottenolives/rottenolives/src/music"
)

// SqliteLibrary is a SQLite implementation of the music.Library interface.
type SqliteLibrary struct {
	db *sql.DB
}

// NewSqliteLibrary creates a new SqliteLibrary.
func NewSqliteLibrary(path string) (*SqliteLibrary, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &SqliteLibrary{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS artists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			country TEXT
		);

		CREATE TABLE IF NOT EXISTS releases (
			id TEXT PRIMARY KEY,
			artist_id TEXT NOT NULL,
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			release_date TEXT,
			label TEXT,
			cover_url TEXT,
			is_mena BOOLEAN NOT NULL DEFAULT FALSE,
			external_track_id TEXT UNIQUE,
			FOREIGN KEY (artist_id) REFERENCES artists(id)
		);

		CREATE TABLE IF NOT EXISTS release_scores (
			release_id TEXT PRIMARY KEY,
			audience_score REAL,
			audience_count INTEGER NOT NULL DEFAULT 0,
			last_calculated TEXT,
			FOREIGN KEY (release_id) REFERENCES releases(id)
		);

		CREATE TABLE IF NOT EXISTS ratings (
			id TEXT PRIMARY KEY,
			release_id TEXT NOT NULL,
			stars INTEGER NOT NULL,
			comment TEXT,
			name TEXT,
			ip_hash TEXT NOT NULL DEFAULT '',
			subnet_hash TEXT NOT NULL DEFAULT '',
			ip_version INTEGER,
			created_at TEXT NOT NULL,
			FOREIGN KEY (release_id) REFERENCES releases(id)
		);

		CREATE INDEX IF NOT EXISTS idx_releases_artist ON releases(artist_id);
		CREATE INDEX IF NOT EXISTS idx_ratings_release ON ratings(release_id);
		CREATE INDEX IF NOT EXISTS idx_ratings_subnet_created ON ratings(subnet_hash, created_at);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_ratings_release_ip
			ON ratings(release_id, ip_hash) WHERE ip_hash <> '';
	`)
	return err
}

// GetArtist returns an artist by id, or (nil, nil) when it doesn't exist.
func (d *SqliteLibrary) GetArtist(ctx context.Context, id string) (*music.Artist, error) {
	row := d.db.QueryRowContext(ctx, `SELECT id, name, country FROM artists WHERE id = ?`, id)
	return scanArtist(row)
}

// GetArtistByName returns an artist by exact name, or (nil, nil) when none
// matches. Name matching is a heuristic fallback for artists with no
// external catalog id; two distinct artists sharing a display name merge.
func (d *SqliteLibrary) GetArtistByName(ctx context.Context, name string) (*music.Artist, error) {
	row := d.db.QueryRowContext(ctx, `SELECT id, name, country FROM artists WHERE name = ? LIMIT 1`, name)
	return scanArtist(row)
}

func scanArtist(row *sql.Row) (*music.Artist, error) {
	var artist music.Artist
	var country sql.NullString
	err := row.Scan(&artist.ID, &artist.Name, &country)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	artist.Country = country.String
	return &artist, nil
}

// AddArtist adds an artist to the database.
func (d *SqliteLibrary) AddArtist(ctx context.Context, artist *music.Artist) error {
	if err := artist.Validate(); err != nil {
		slog.Error("AddArtist: validation failed", "error", err, "artistID", artist.ID)
		return err
	}
	if artist.ID == "" {
		artist.ID = uuid.New().String()
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO artists (id, name, country) VALUES (?, ?, ?)
	`, artist.ID, artist.Name, nullString(artist.Country))
	return err
}

// UpdateArtist updates an artist's mutable fields.
func (d *SqliteLibrary) UpdateArtist(ctx context.Context, artist *music.Artist) error {
	if err := artist.Validate(); err != nil {
		return err
	}
	_, err := d.db.ExecContext(ctx, `
		UPDATE artists SET name = ?, country = ? WHERE id = ?
	`, artist.Name, nullString(artist.Country), artist.ID)
	return err
}

// GetRelease returns a release by id, or (nil, nil) when it doesn't exist.
func (d *SqliteLibrary) GetRelease(ctx context.Context, id string) (*music.Release, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, artist_id, title, type, release_date, label, cover_url, is_mena, external_track_id
		FROM releases WHERE id = ?
	`, id)
	return scanRelease(row)
}

// GetReleaseByExternalTrackID returns a release by its external catalog
// track id, or (nil, nil) when it doesn't exist.
func (d *SqliteLibrary) GetReleaseByExternalTrackID(ctx context.Context, externalTrackID string) (*music.Release, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, artist_id, title, type, release_date, label, cover_url, is_mena, external_track_id
		FROM releases WHERE external_track_id = ?
	`, externalTrackID)
	return scanRelease(row)
}

func scanRelease(row *sql.Row) (*music.Release, error) {
	var release music.Release
	var releaseDate, label, coverURL, externalTrackID sql.NullString
	err := row.Scan(&release.ID, &release.ArtistID, &release.Title, &release.Type,
		&releaseDate, &label, &coverURL, &release.IsMena, &externalTrackID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	release.ReleaseDate = parseStoredDate(releaseDate)
	release.Label = label.String
	release.CoverURL = coverURL.String
	release.ExternalTrackID = externalTrackID.String
	return &release, nil
}

// UpsertRelease inserts the release or refreshes the existing row sharing
// its external track id. The uniqueness constraint on external_track_id is
// what makes concurrent imports of the same track safe: both writers land
// on the same row.
func (d *SqliteLibrary) UpsertRelease(ctx context.Context, release *music.Release) (*music.Release, error) {
	if err := release.Validate(); err != nil {
		slog.Error("UpsertRelease: validation failed", "error", err, "title", release.Title)
		return nil, err
	}
	if release.ID == "" {
		release.ID = uuid.New().String()
	}

	if release.ExternalTrackID == "" {
		// Locally curated entry, no import idempotency key to conflict on.
		_, err := d.db.ExecContext(ctx, `
			INSERT INTO releases (id, artist_id, title, type, release_date, label, cover_url, is_mena, external_track_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)
		`, release.ID, release.ArtistID, release.Title, release.Type,
			formatStoredDate(release.ReleaseDate), nullString(release.Label), nullString(release.CoverURL), release.IsMena)
		if err != nil {
			return nil, err
		}
		return release, nil
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO releases (id, artist_id, title, type, release_date, label, cover_url, is_mena, external_track_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_track_id) DO UPDATE SET
			artist_id = excluded.artist_id,
			title = excluded.title,
			type = excluded.type,
			release_date = excluded.release_date,
			label = excluded.label,
			cover_url = excluded.cover_url,
			is_mena = excluded.is_mena
	`, release.ID, release.ArtistID, release.Title, release.Type,
		formatStoredDate(release.ReleaseDate), nullString(release.Label), nullString(release.CoverURL),
		release.IsMena, release.ExternalTrackID)
	if err != nil {
		return nil, err
	}

	// Return the stored row: on conflict the local id predates this call.
	return d.GetReleaseByExternalTrackID(ctx, release.ExternalTrackID)
}

// GetReleaseSummaries lists releases joined with artist name and audience
// score, newest release date first, undated releases last.
func (d *SqliteLibrary) GetReleaseSummaries(ctx context.Context, menaOnly bool) ([]*music.ReleaseSummary, error) {
	query := `
		SELECT r.id, r.artist_id, r.title, r.type, r.release_date, r.label, r.cover_url,
			r.is_mena, r.external_track_id, a.name, s.audience_score, s.audience_count
		FROM releases r
		JOIN artists a ON a.id = r.artist_id
		LEFT JOIN release_scores s ON s.release_id = r.id
	`
	if menaOnly {
		query += ` WHERE r.is_mena = TRUE`
	}
	query += ` ORDER BY r.release_date IS NULL, r.release_date DESC, r.title`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*music.ReleaseSummary
	for rows.Next() {
		var s music.ReleaseSummary
		var releaseDate, label, coverURL, externalTrackID sql.NullString
		var score sql.NullFloat64
		var count sql.NullInt64
		err := rows.Scan(&s.ID, &s.ArtistID, &s.Title, &s.Type, &releaseDate, &label, &coverURL,
			&s.IsMena, &externalTrackID, &s.ArtistName, &score, &count)
		if err != nil {
			return nil, err
		}
		s.ReleaseDate = parseStoredDate(releaseDate)
		s.Label = label.String
		s.CoverURL = coverURL.String
		s.ExternalTrackID = externalTrackID.String
		if score.Valid {
			v := score.Float64
			s.AudienceScore = &v
		}
		s.AudienceCount = int(count.Int64)
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

// GetReleasesCount returns the total number of releases.
func (d *SqliteLibrary) GetReleasesCount(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM releases`).Scan(&count)
	return count, err
}

// GetScore returns the score row of a release, or (nil, nil) when none
// exists yet.
func (d *SqliteLibrary) GetScore(ctx context.Context, releaseID string) (*music.ReleaseScore, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT release_id, audience_score, audience_count, last_calculated
		FROM release_scores WHERE release_id = ?
	`, releaseID)

	var score music.ReleaseScore
	var value sql.NullFloat64
	var lastCalculated sql.NullString
	err := row.Scan(&score.ReleaseID, &value, &score.AudienceCount, &lastCalculated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if value.Valid {
		v := value.Float64
		score.AudienceScore = &v
	}
	if t := parseStoredDate(lastCalculated); t != nil {
		score.LastCalculated = *t
	}
	return &score, nil
}

// UpsertScore writes the aggregate for a release, creating the row if the
// release somehow has none yet.
func (d *SqliteLibrary) UpsertScore(ctx context.Context, score *music.ReleaseScore) error {
	var value any
	if score.AudienceScore != nil {
		value = *score.AudienceScore
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO release_scores (release_id, audience_score, audience_count, last_calculated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(release_id) DO UPDATE SET
			audience_score = excluded.audience_score,
			audience_count = excluded.audience_count,
			last_calculated = excluded.last_calculated
	`, score.ReleaseID, value, score.AudienceCount, score.LastCalculated.UTC().Format(time.RFC3339))
	return err
}

// EnsureScore creates an empty score row if absent; an existing aggregate is
// left untouched, only its last_calculated stamp is refreshed.
func (d *SqliteLibrary) EnsureScore(ctx context.Context, releaseID string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO release_scores (release_id, audience_score, audience_count, last_calculated)
		VALUES (?, NULL, 0, ?)
		ON CONFLICT(release_id) DO UPDATE SET
			last_calculated = excluded.last_calculated
	`, releaseID, time.Now().UTC().Format(time.RFC3339))
	return err
}

// AddRating inserts a rating. A second rating for the same release from the
// same hashed address violates the partial unique index and is reported as
// music.ErrDuplicateRating.
func (d *SqliteLibrary) AddRating(ctx context.Context, rating *music.Rating) error {
	if err := rating.Validate(); err != nil {
		slog.Error("AddRating: validation failed", "error", err, "releaseID", rating.ReleaseID)
		return err
	}
	if rating.ID == "" {
		rating.ID = uuid.New().String()
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO ratings (id, release_id, stars, comment, name, ip_hash, subnet_hash, ip_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rating.ID, rating.ReleaseID, rating.Stars, nullString(rating.Comment), rating.Name,
		rating.IPHash, rating.SubnetHash, rating.IPVersion, rating.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return music.ErrDuplicateRating
	}
	return err
}

// GetRatings returns all ratings of a release, newest first.
func (d *SqliteLibrary) GetRatings(ctx context.Context, releaseID string) ([]*music.Rating, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, release_id, stars, comment, name, ip_hash, subnet_hash, ip_version, created_at
		FROM ratings WHERE release_id = ?
		ORDER BY created_at DESC, id
	`, releaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*music.Rating
	for rows.Next() {
		var r music.Rating
		var comment sql.NullString
		var ipVersion sql.NullInt64
		var createdAt string
		err := rows.Scan(&r.ID, &r.ReleaseID, &r.Stars, &comment, &r.Name,
			&r.IPHash, &r.SubnetHash, &ipVersion, &createdAt)
		if err != nil {
			return nil, err
		}
		r.Comment = comment.String
		r.IPVersion = int(ipVersion.Int64)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		ratings = append(ratings, &r)
	}
	return ratings, rows.Err()
}

// HasRatingFromIP reports whether the release already has a rating from the
// given hashed address.
func (d *SqliteLibrary) HasRatingFromIP(ctx context.Context, releaseID, ipHash string) (bool, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ratings WHERE release_id = ? AND ip_hash = ?
	`, releaseID, ipHash).Scan(&count)
	return count > 0, err
}

// CountRatingsFromSubnetSince counts ratings across all releases from the
// given hashed subnet since the given instant.
func (d *SqliteLibrary) CountRatingsFromSubnetSince(ctx context.Context, subnetHash string, since time.Time) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ratings WHERE subnet_hash = ? AND created_at >= ?
	`, subnetHash, since.UTC().Format(time.RFC3339)).Scan(&count)
	return count, err
}

// Close closes the underlying database.
func (d *SqliteLibrary) Close() error {
	return d.db.Close()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func formatStoredDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseStoredDate(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
