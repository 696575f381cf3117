package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/villageofwisdom/genius-backend/internal/cache"
	"github.com/villageofwisdom/genius-backend/internal/genius"
	"github.com/villageofwisdom/genius-backend/internal/models"
	pgrepo "github.com/villageofwisdom/genius-backend/internal/repositories/postgres"
	"github.com/villageofwisdom/genius-backend/internal/utils"
	"gorm.io/datatypes"
)

const (
	profileCacheTTL = 5 * time.Minute

	accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	accessCodeDays     = 30
)

type CreateProfileInput struct {
	StudentName  string
	GradeLevel   string
	Age          *int
	School       string
	Relationship string
	TeacherEmail string
}

var validRelationships = map[string]bool{
	"parent": true, "guardian": true, "grandparent": true,
	"caregiver": true, "educator": true, "other": true,
}

type ProfileService interface {
	Create(ctx context.Context, userID string, in CreateProfileInput) (*models.Profile, error)
	Get(ctx context.Context, id string) (*models.Profile, error)
	GetOwned(ctx context.Context, id, userID string) (*models.Profile, error)
	ListByUser(ctx context.Context, userID string) ([]models.Profile, error)
	// MarkSectionInProgress moves a not-started section to in-progress and
	// persists immediately. Any other current status is left untouched.
	MarkSectionInProgress(ctx context.Context, profileID, section string) error
	// ApplyProgress applies a completion signal for the given section:
	// status to complete, summary written, percent recomputed, and overall
	// status flipped to complete when every section is done. Returns
	// (nil, nil) when the reply did not signal completion.
	ApplyProgress(ctx context.Context, profileID, section string, reply genius.Reply) (*models.Profile, error)
}

type profileService struct {
	profiles pgrepo.ProfileRepository
	cache    cache.Cache
}

func NewProfileService(profiles pgrepo.ProfileRepository, c cache.Cache) ProfileService {
	return &profileService{profiles: profiles, cache: c}
}

func profileCacheKey(id string) string { return "profile:" + id }

func (s *profileService) Create(ctx context.Context, userID string, in CreateProfileInput) (*models.Profile, error) {
	const op = "ProfileService.Create"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user id is required", nil)
	}
	if in.StudentName == "" || in.GradeLevel == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "student name and grade level are required", nil)
	}
	if !validRelationships[in.Relationship] {
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid relationship", nil)
	}
	if in.Age != nil && (*in.Age < 4 || *in.Age > 18) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "age must be between 4 and 18", nil)
	}

	code, err := generateAccessCode()
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to generate access code", err)
	}

	now := time.Now().UTC()
	p := &models.Profile{
		ID:                  uuid.NewString(),
		UserID:              userID,
		StudentName:         in.StudentName,
		GradeLevel:          in.GradeLevel,
		Age:                 in.Age,
		School:              in.School,
		Relationship:        in.Relationship,
		AccessCode:          code,
		AccessCodeExpiresAt: now.AddDate(0, 0, accessCodeDays),
		PercentComplete:     0,
		Status:              models.ProfileInProgress,
		Sections:            datatypes.NewJSONType(genius.DefaultSections()),
		TeacherEmail:        in.TeacherEmail,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create profile", err)
	}
	return p, nil
}

func (s *profileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	const op = "ProfileService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "profile id is required", nil)
	}

	var cached models.Profile
	if hit, err := s.cache.GetJSON(ctx, profileCacheKey(id), &cached); err == nil && hit {
		return &cached, nil
	}

	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}

	_ = s.cache.SetJSON(ctx, profileCacheKey(id), p, profileCacheTTL)
	return p, nil
}

func (s *profileService) GetOwned(ctx context.Context, id, userID string) (*models.Profile, error) {
	const op = "ProfileService.GetOwned"

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return p, nil
}

func (s *profileService) ListByUser(ctx context.Context, userID string) ([]models.Profile, error) {
	const op = "ProfileService.ListByUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user id is required", nil)
	}
	rows, err := s.profiles.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list profiles", err)
	}
	return rows, nil
}

func (s *profileService) MarkSectionInProgress(ctx context.Context, profileID, section string) error {
	const op = "ProfileService.MarkSectionInProgress"

	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}

	sections := p.Sections.Data()
	sec := models.FindSection(sections, section)
	if sec == nil || sec.Status != models.SectionNotStarted {
		return nil
	}
	sec.Status = models.SectionInProgress
	p.Sections = datatypes.NewJSONType(sections)
	p.UpdatedAt = time.Now().UTC()

	if err := s.profiles.Save(ctx, p); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save profile", err)
	}
	_ = s.cache.Del(ctx, profileCacheKey(profileID))
	return nil
}

func (s *profileService) ApplyProgress(ctx context.Context, profileID, section string, reply genius.Reply) (*models.Profile, error) {
	const op = "ProfileService.ApplyProgress"

	if !reply.SectionComplete {
		return nil, nil
	}

	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}

	sections := p.Sections.Data()
	if sec := models.FindSection(sections, section); sec != nil {
		sec.Status = models.SectionComplete
		if reply.SectionContent != "" {
			sec.Description = reply.SectionContent
		}
	}

	allComplete := true
	for _, sec := range sections {
		if sec.Status != models.SectionComplete {
			allComplete = false
			break
		}
	}

	p.Sections = datatypes.NewJSONType(sections)
	p.PercentComplete = genius.PercentComplete(sections)
	if allComplete {
		p.Status = models.ProfileComplete
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save profile", err)
	}
	_ = s.cache.Del(ctx, profileCacheKey(profileID))
	return p, nil
}

func generateAccessCode() (string, error) {
	buf := make([]byte, 8)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(accessCodeAlphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(buf[:4]) + "-" + string(buf[4:]), nil
}
