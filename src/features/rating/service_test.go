package rating

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rottenolives/rottenolives/src/features/config"
	"github.com/rottenolives/rottenolives/src/music"
)

// MockLibrary is a mock implementation of music.Library
type MockLibrary struct {
	music.Library // Embed interface to avoid implementing all methods, will panic if unused methods called
	releases      map[string]*music.Release
	ratings       []*music.Rating
	scores        map[string]*music.ReleaseScore
}

func NewMockLibrary() *MockLibrary {
	return &MockLibrary{
		releases: make(map[string]*music.Release),
		scores:   make(map[string]*music.ReleaseScore),
	}
}

func (m *MockLibrary) GetRelease(ctx context.Context, id string) (*music.Release, error) {
	return m.releases[id], nil
}

func (m *MockLibrary) HasRatingFromIP(ctx context.Context, releaseID, ipHash string) (bool, error) {
	for _, r := range m.ratings {
		if r.ReleaseID == releaseID && r.IPHash == ipHash {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockLibrary) CountRatingsFromSubnetSince(ctx context.Context, subnetHash string, since time.Time) (int, error) {
	count := 0
	for _, r := range m.ratings {
		if r.SubnetHash == subnetHash && !r.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MockLibrary) AddRating(ctx context.Context, rating *music.Rating) error {
	for _, r := range m.ratings {
		if r.ReleaseID == rating.ReleaseID && r.IPHash == rating.IPHash {
			return music.ErrDuplicateRating
		}
	}
	m.ratings = append(m.ratings, rating)
	return nil
}

func (m *MockLibrary) GetRatings(ctx context.Context, releaseID string) ([]*music.Rating, error) {
	var out []*music.Rating
	for _, r := range m.ratings {
		if r.ReleaseID == releaseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockLibrary) UpsertScore(ctx context.Context, score *music.ReleaseScore) error {
	m.scores[score.ReleaseID] = score
	return nil
}

func testConfig() *config.Manager {
	return config.NewManager(&config.Config{
		Rating: config.Rating{
			IPHashSalt:        "test-salt",
			SubnetLimit:       3,
			SubnetWindowHours: 24,
			PriorMean:         68,
			PriorWeight:       50,
		},
	})
}

func newTestService() (*Service, *MockLibrary) {
	lib := NewMockLibrary()
	lib.releases["rel1"] = &music.Release{ID: "rel1", ArtistID: "a1", Title: "Song One", Type: music.ReleaseTypeSingle}
	return NewService(lib, testConfig()), lib
}

func submitFrom(ip string, stars int) SubmitRequest {
	return SubmitRequest{ReleaseID: "rel1", Stars: stars, RemoteIP: ip}
}

func TestSubmit_RejectsInvalidStars(t *testing.T) {
	service, lib := newTestService()
	for _, stars := range []int{0, 11, -3} {
		_, err := service.Submit(context.Background(), submitFrom("203.0.113.7", stars))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("stars=%d: expected ErrInvalidInput, got %v", stars, err)
		}
	}
	if len(lib.ratings) != 0 {
		t.Errorf("Expected no ratings stored, got %d", len(lib.ratings))
	}
}

func TestSubmit_RejectsOverlongComment(t *testing.T) {
	service, _ := newTestService()
	req := submitFrom("203.0.113.7", 8)
	req.Comment = strings.Repeat("x", music.MaxCommentLength+1)
	_, err := service.Submit(context.Background(), req)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmit_RejectsUnknownRelease(t *testing.T) {
	service, _ := newTestService()
	req := submitFrom("203.0.113.7", 8)
	req.ReleaseID = "nope"
	_, err := service.Submit(context.Background(), req)
	if !errors.Is(err, ErrUnknownRelease) {
		t.Errorf("Expected ErrUnknownRelease, got %v", err)
	}
}

func TestSubmit_DefaultsAndTruncatesName(t *testing.T) {
	service, _ := newTestService()

	rating, err := service.Submit(context.Background(), submitFrom("203.0.113.7", 8))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if rating.Name != music.DefaultRaterName {
		t.Errorf("Expected default name %q, got %q", music.DefaultRaterName, rating.Name)
	}

	req := submitFrom("203.0.113.8", 8)
	req.Name = strings.Repeat("a", music.MaxRaterNameLen+10)
	rating, err = service.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if len(rating.Name) != music.MaxRaterNameLen {
		t.Errorf("Expected name truncated to %d, got %d", music.MaxRaterNameLen, len(rating.Name))
	}
}

func TestSubmit_RecalculatesBayesianScore(t *testing.T) {
	service, lib := newTestService()

	_, err := service.Submit(context.Background(), submitFrom("203.0.113.7", 8))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	score := lib.scores["rel1"]
	if score == nil || score.AudienceScore == nil {
		t.Fatal("Expected a score row with an audience score")
	}
	// One 8-star rating against the prior: (50*68 + 1*80) / 51.
	expected := 3480.0 / 51.0
	if math.Abs(*score.AudienceScore-expected) > 1e-9 {
		t.Errorf("Expected score %v, got %v", expected, *score.AudienceScore)
	}
	if score.AudienceCount != 1 {
		t.Errorf("Expected audience count 1, got %d", score.AudienceCount)
	}
}

func TestSubmit_RejectsDuplicateIP(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.Submit(context.Background(), submitFrom("203.0.113.7", 8)); err != nil {
		t.Fatalf("First submit failed: %v", err)
	}
	_, err := service.Submit(context.Background(), submitFrom("203.0.113.7", 3))
	if !errors.Is(err, music.ErrDuplicateRating) {
		t.Errorf("Expected ErrDuplicateRating, got %v", err)
	}
}

func TestSubmit_LimitsRatingsPerSubnet(t *testing.T) {
	service, lib := newTestService()
	lib.releases["rel2"] = &music.Release{ID: "rel2", ArtistID: "a1", Title: "Song Two", Type: music.ReleaseTypeSingle}
	lib.releases["rel3"] = &music.Release{ID: "rel3", ArtistID: "a1", Title: "Song Three", Type: music.ReleaseTypeSingle}
	lib.releases["rel4"] = &music.Release{ID: "rel4", ArtistID: "a1", Title: "Song Four", Type: music.ReleaseTypeSingle}

	// Three distinct addresses on 203.0.113.0/24 fill the window.
	for i, releaseID := range []string{"rel1", "rel2", "rel3"} {
		req := SubmitRequest{ReleaseID: releaseID, Stars: 7, RemoteIP: "203.0.113." + string(rune('1'+i))}
		if _, err := service.Submit(context.Background(), req); err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
	}

	req := SubmitRequest{ReleaseID: "rel4", Stars: 7, RemoteIP: "203.0.113.9"}
	_, err := service.Submit(context.Background(), req)
	if !errors.Is(err, ErrSubnetLimited) {
		t.Errorf("Expected ErrSubnetLimited, got %v", err)
	}

	// A different subnet is unaffected.
	req = SubmitRequest{ReleaseID: "rel4", Stars: 7, RemoteIP: "198.51.100.9"}
	if _, err := service.Submit(context.Background(), req); err != nil {
		t.Errorf("Submit from another subnet failed: %v", err)
	}
}

func TestSubmit_UsesForwardedForHeader(t *testing.T) {
	service, _ := newTestService()

	req := submitFrom("10.0.0.1", 8)
	req.ForwardedFor = "203.0.113.7, 10.0.0.1"
	if _, err := service.Submit(context.Background(), req); err != nil {
		t.Fatalf("First submit failed: %v", err)
	}

	// Same client address behind a different proxy hop is still a duplicate.
	req = submitFrom("10.0.0.2", 4)
	req.ForwardedFor = "203.0.113.7"
	_, err := service.Submit(context.Background(), req)
	if !errors.Is(err, music.ErrDuplicateRating) {
		t.Errorf("Expected ErrDuplicateRating, got %v", err)
	}
}
