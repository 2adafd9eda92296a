package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"medisafe/cache"
	"medisafe/models"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	ProfileCacheExpiry = 7 * 24 * time.Hour
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error)
	GetOrCreate(ctx context.Context, userID int64) (*models.UserProfile, bool, error)
	Save(ctx context.Context, profile *models.UserProfile) error
}

type profileRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewProfileRepository(db *gorm.DB, cache *cache.Cache) ProfileRepository {
	return &profileRepository{db: db, cache: cache}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.getProfileCacheKey(userID)
	cachedProfile, err := r.cache.Get(ctx, cacheKey)
	if err == nil && cachedProfile != "" {
		var profile models.UserProfile
		if err := json.Unmarshal([]byte(cachedProfile), &profile); err == nil {
			return &profile, nil
		}
	} else if err != nil && err != redis.Nil {
		log.Printf("Failed to get profile from cache: %v", err)
	}

	var profile models.UserProfile
	err = r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, cacheKey, profileJSON, ProfileCacheExpiry); err != nil {
		log.Printf("Failed to set profile in cache: %v", err)
	}

	return &profile, nil
}

// GetOrCreate fetches the profile for an account, creating an empty one when
// none exists yet. The second return value reports whether a row was created.
func (r *profileRepository) GetOrCreate(ctx context.Context, userID int64) (*models.UserProfile, bool, error) {
	profile, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if profile != nil {
		return profile, false, nil
	}

	created := models.UserProfile{UserID: userID}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where(models.UserProfile{UserID: userID}).FirstOrCreate(&created).Error
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create profile: %w", err)
	}
	return &created, true, nil
}

func (r *profileRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	if err := r.db.Save(profile).Error; err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return r.cache.Delete(ctx, r.getProfileCacheKey(profile.UserID))
}

func (r *profileRepository) getProfileCacheKey(userID int64) string {
	return fmt.Sprintf("profile_cache:%d", userID)
}
