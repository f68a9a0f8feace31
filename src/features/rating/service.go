package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rottenolives/rottenolives/src/features/config"
	"github.com/rottenolives/rottenolives/src/features/metrics"
	"github.com/rottenolives/rottenolives/src/music"
)

var (
	// ErrInvalidInput covers malformed submissions; rejected before any
	// store access.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownRelease is returned for a releaseId that doesn't exist.
	ErrUnknownRelease = errors.New("unknown release")
	// ErrSubnetLimited is the rate-limit rejection for noisy subnets.
	ErrSubnetLimited = errors.New("we see many ratings from your network today, try again later")
)

// Service validates rating submissions, applies the anti-abuse gates and
// recomputes the release's audience score.
type Service struct {
	library music.Library
	config  *config.Manager
}

// NewService creates a new rating service.
func NewService(lib music.Library, cfg *config.Manager) *Service {
	return &Service{library: lib, config: cfg}
}

// SubmitRequest is one rating submission.
type SubmitRequest struct {
	ReleaseID string
	Stars     int
	Comment   string
	Name      string
	// ForwardedFor is the raw forwarded-address header; RemoteIP the
	// transport-level peer address used when the header is absent.
	ForwardedFor string
	RemoteIP     string
}

// Submit persists one rating and recomputes the release's score from the
// full rating set, so the new rating is always included.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*music.Rating, error) {
	if req.ReleaseID == "" {
		metrics.RatingsRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: releaseId is required", ErrInvalidInput)
	}
	if req.Stars < music.MinStars || req.Stars > music.MaxStars {
		metrics.RatingsRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: stars must be between %d and %d", ErrInvalidInput, music.MinStars, music.MaxStars)
	}
	if len(req.Comment) > music.MaxCommentLength {
		metrics.RatingsRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: comment cannot exceed %d characters", ErrInvalidInput, music.MaxCommentLength)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = music.DefaultRaterName
	}
	if len(name) > music.MaxRaterNameLen {
		name = name[:music.MaxRaterNameLen]
	}

	release, err := s.library.GetRelease(ctx, req.ReleaseID)
	if err != nil {
		return nil, err
	}
	if release == nil {
		metrics.RatingsRejected.WithLabelValues("unknown_release").Inc()
		return nil, ErrUnknownRelease
	}

	cfg := s.config.Get().Rating
	ip := ParseClientIP(req.ForwardedFor, req.RemoteIP)
	ipHash := HashIP(ip, cfg.IPHashSalt)
	subnetHash := HashSubnet(SubnetOf(ip), cfg.IPHashSalt)

	exists, err := s.library.HasRatingFromIP(ctx, req.ReleaseID, ipHash)
	if err != nil {
		return nil, err
	}
	if exists {
		metrics.RatingsRejected.WithLabelValues("duplicate").Inc()
		return nil, music.ErrDuplicateRating
	}

	since := time.Now().Add(-time.Duration(cfg.SubnetWindowHours) * time.Hour)
	subnetCount, err := s.library.CountRatingsFromSubnetSince(ctx, subnetHash, since)
	if err != nil {
		return nil, err
	}
	if subnetCount >= cfg.SubnetLimit {
		metrics.RatingsRejected.WithLabelValues("subnet_limited").Inc()
		return nil, ErrSubnetLimited
	}

	rating := &music.Rating{
		ReleaseID:  req.ReleaseID,
		Stars:      req.Stars,
		Comment:    req.Comment,
		Name:       name,
		IPHash:     ipHash,
		SubnetHash: subnetHash,
		IPVersion:  IPVersion(ip),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.library.AddRating(ctx, rating); err != nil {
		// Two racing submissions from the same address can both pass the
		// gate above; the store's uniqueness constraint settles it.
		if errors.Is(err, music.ErrDuplicateRating) {
			metrics.RatingsRejected.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	if err := s.recalculateScore(ctx, req.ReleaseID); err != nil {
		return nil, err
	}

	metrics.RatingsAccepted.Inc()
	slog.Debug("Rating accepted", "releaseID", req.ReleaseID, "stars", req.Stars)
	return rating, nil
}

// recalculateScore recomputes the audience score from the full current
// rating set and upserts the score row.
func (s *Service) recalculateScore(ctx context.Context, releaseID string) error {
	ratings, err := s.library.GetRatings(ctx, releaseID)
	if err != nil {
		return err
	}

	cfg := s.config.Get().Rating
	score := &music.ReleaseScore{
		ReleaseID:      releaseID,
		AudienceCount:  len(ratings),
		LastCalculated: time.Now().UTC(),
	}
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r.Stars
		}
		value := bayesianScore(sum, len(ratings), cfg.PriorMean, cfg.PriorWeight)
		score.AudienceScore = &value
	}

	return s.library.UpsertScore(ctx, score)
}

// bayesianScore shrinks the raw mean toward a prior so a handful of early
// raters can't swing the public score to an extreme. The mean star rating is
// first scaled to the 0-100 public scale, then weighted against the prior:
// (m*C + n*R) / (m + n). As n grows the estimate converges to the raw mean.
func bayesianScore(starsSum, n int, priorMean, priorWeight float64) float64 {
	rawMean := float64(starsSum) / float64(n) * 10
	return (priorWeight*priorMean + float64(n)*rawMean) / (priorWeight + float64(n))
}
