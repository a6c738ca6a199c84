package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"streamhub/internal/domain"
	"streamhub/internal/repository"
)

// MatchService picks a random call partner.
type MatchService struct {
	users    UserStore
	settings SettingsProvider
	shuffle  func(n int, swap func(i, j int))
}

func NewMatchService(users UserStore, settings SettingsProvider) *MatchService {
	return &MatchService{users: users, settings: settings, shuffle: rand.Shuffle}
}

// NormalizeGender keeps only "male" or "female"; anything else means no filter.
func NormalizeGender(s string) string {
	switch g := strings.ToLower(strings.TrimSpace(s)); g {
	case "male", "female":
		return g
	}
	return ""
}

// FindMatch returns a random idle online real user, falling back to a random fake
// user when fakes are enabled. found is false when both pools are empty.
func (s *MatchService) FindMatch(ctx context.Context, userID int64, gender string) (match *domain.MatchUser, found bool, err error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}
	gender = NormalizeGender(gender)

	st, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, false, err
	}

	var fakes []domain.User
	if st.IsFake {
		fakes, err = s.users.FindFakeUsers(ctx, gender)
		if err != nil {
			return nil, false, err
		}
		s.shuffle(len(fakes), func(i, j int) { fakes[i], fakes[j] = fakes[j], fakes[i] })
	}

	online, err := s.users.FindMatchCandidates(ctx, domain.MatchFilter{ExcludeUserID: userID, Gender: gender})
	if err != nil {
		return nil, false, err
	}
	s.shuffle(len(online), func(i, j int) { online[i], online[j] = online[j], online[i] })

	switch {
	case len(online) > 0:
		MatchResults.WithLabelValues("real").Inc()
		return online[0].ToMatch(), true, nil
	case len(fakes) > 0:
		MatchResults.WithLabelValues("fake").Inc()
		return fakes[0].ToMatch(), true, nil
	}
	MatchResults.WithLabelValues("none").Inc()
	return nil, false, nil
}
