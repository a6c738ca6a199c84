package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"streamhub/internal/domain"
	"streamhub/internal/logger"
	"streamhub/internal/repository"
)

// PlanService handles VIP plan grants and expiry.
type PlanService struct {
	users UserStore
	plans PlanStore
	now   func() time.Time
}

func NewPlanService(users UserStore, plans PlanStore) *PlanService {
	return &PlanService{users: users, plans: plans, now: time.Now}
}

// Reconcile demotes the user out of VIP once the held plan has expired.
func (s *PlanService) Reconcile(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.reconcile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// reconcile mutates u in place. Nothing is written while the plan is still valid.
func (s *PlanService) reconcile(ctx context.Context, u *domain.User) error {
	if !u.Plan.Active() {
		return nil
	}

	plan, err := s.plans.GetByID(ctx, *u.Plan.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}

	if !plan.Expired(*u.Plan.StartDate, s.now()) {
		return nil
	}

	if err := s.users.SetPlan(ctx, u.ID, false, nil, nil); err != nil {
		return err
	}
	logger.WithContext(ctx).Info("vip plan expired", "user_id", u.ID, "plan_id", plan.ID)
	PlansExpired.Inc()

	u.IsVIP = false
	u.Plan = domain.UserPlan{}
	return nil
}

// Grant starts planID for the user now, replacing any current plan.
func (s *PlanService) Grant(ctx context.Context, userID, planID int64) (*domain.User, error) {
	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	start := s.now()
	if err := s.users.SetPlan(ctx, userID, true, &planID, &start); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *PlanService) List(ctx context.Context) ([]domain.VIPPlan, error) {
	return s.plans.List(ctx)
}

func (s *PlanService) Create(ctx context.Context, name string, validity int, validityType string, priceCoin int64) (*domain.VIPPlan, error) {
	vt, ok := domain.ParseValidityType(validityType)
	if !ok {
		return nil, invalidInput("validity type must be day, month or year")
	}
	if validity <= 0 || priceCoin < 0 {
		return nil, invalidInput("validity must be positive and price must not be negative")
	}
	p := &domain.VIPPlan{
		Name:         strings.TrimSpace(name),
		Validity:     validity,
		ValidityType: vt,
		PriceCoin:    priceCoin,
	}
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
