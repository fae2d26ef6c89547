package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/skillpath/skillpath-backend/internal/clients/redis"
	"github.com/skillpath/skillpath-backend/internal/logger"
	"github.com/skillpath/skillpath-backend/internal/repos"
	"github.com/skillpath/skillpath-backend/internal/types"
)

const (
	communityStatsCacheKey = "community:stats"
	communityStatsCacheTTL = 5 * time.Minute
)

type CreatePostInput struct {
	SkillName string
	Category  string
	Title     string
	Content   string
}

// LikeResult reports the post's like state after a toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

type CommunityService interface {
	CreatePost(ctx context.Context, user *types.User, input CreatePostInput) (*types.CommunityPost, error)
	ListPosts(ctx context.Context, filter repos.PostFilter) ([]*types.CommunityPost, error)
	CreateReply(ctx context.Context, user *types.User, postID uuid.UUID, content string) (*types.CommunityReply, error)
	ListReplies(ctx context.Context, postID uuid.UUID, limit int) ([]*types.CommunityReply, error)
	ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*LikeResult, error)
	Stats(ctx context.Context) (*repos.CommunityStats, error)
}

type communityService struct {
	db           *gorm.DB
	log          *logger.Logger
	postRepo     repos.CommunityPostRepo
	replyRepo    repos.CommunityReplyRepo
	likeRepo     repos.CommunityLikeRepo
	activityRepo repos.UserActivityRepo
	gamification GamificationService
	rateLimit    RateLimitService
	redis        redisclient.Client
	now          func() time.Time
}

func NewCommunityService(
	db *gorm.DB,
	log *logger.Logger,
	postRepo repos.CommunityPostRepo,
	replyRepo repos.CommunityReplyRepo,
	likeRepo repos.CommunityLikeRepo,
	activityRepo repos.UserActivityRepo,
	gamification GamificationService,
	rateLimit RateLimitService,
	redis redisclient.Client,
) CommunityService {
	return &communityService{
		db:           db,
		log:          log.With("service", "CommunityService"),
		postRepo:     postRepo,
		replyRepo:    replyRepo,
		likeRepo:     likeRepo,
		activityRepo: activityRepo,
		gamification: gamification,
		rateLimit:    rateLimit,
		redis:        redis,
		now:          time.Now,
	}
}

func (cs *communityService) CreatePost(ctx context.Context, user *types.User, input CreatePostInput) (*types.CommunityPost, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}

	if err := cs.rateLimit.Allow(ctx, user.ID, RateLimitKindPost, user.IsPremium(cs.now())); err != nil {
		return nil, err
	}

	post := &types.CommunityPost{
		UserID:    user.ID,
		SkillName: strings.TrimSpace(input.SkillName),
		Category:  strings.TrimSpace(input.Category),
		Title:     title,
		Content:   content,
		IsActive:  true,
	}

	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.postRepo.Create(ctx, tx, post); err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		if _, err := cs.activityRepo.Create(ctx, tx, &types.UserActivity{
			UserID:       user.ID,
			ActivityType: types.ActivityPostCreated,
		}); err != nil {
			return fmt.Errorf("failed to log post creation: %w", err)
		}
		if _, err := cs.gamification.AwardForActivity(ctx, tx, user.ID, types.ActivityPostCreated); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cs.invalidateStats(ctx)
	return post, nil
}

func (cs *communityService) ListPosts(ctx context.Context, filter repos.PostFilter) ([]*types.CommunityPost, error) {
	posts, err := cs.postRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (cs *communityService) CreateReply(ctx context.Context, user *types.User, postID uuid.UUID, content string) (*types.CommunityReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}

	post, err := cs.postRepo.GetByID(ctx, nil, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}

	if err := cs.rateLimit.Allow(ctx, user.ID, RateLimitKindReply, user.IsPremium(cs.now())); err != nil {
		return nil, err
	}

	reply := &types.CommunityReply{
		PostID:   postID,
		UserID:   user.ID,
		Content:  content,
		IsActive: true,
	}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.replyRepo.Create(ctx, tx, reply); err != nil {
			return fmt.Errorf("failed to create reply: %w", err)
		}
		if err := cs.postRepo.AddReplies(ctx, tx, postID, 1); err != nil {
			return fmt.Errorf("failed to bump reply count: %w", err)
		}
		if _, err := cs.activityRepo.Create(ctx, tx, &types.UserActivity{
			UserID:       user.ID,
			ActivityType: types.ActivityReplyCreated,
		}); err != nil {
			return fmt.Errorf("failed to log reply creation: %w", err)
		}
		if _, err := cs.gamification.AwardForActivity(ctx, tx, user.ID, types.ActivityReplyCreated); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cs.invalidateStats(ctx)
	return reply, nil
}

func (cs *communityService) ListReplies(ctx context.Context, postID uuid.UUID, limit int) ([]*types.CommunityReply, error) {
	post, err := cs.postRepo.GetByID(ctx, nil, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	replies, err := cs.replyRepo.ListByPost(ctx, nil, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	return replies, nil
}

// ToggleLike likes the post when the user has not liked it, and removes
// the like when they have.
func (cs *communityService) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*LikeResult, error) {
	post, err := cs.postRepo.GetByID(ctx, nil, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}

	var result LikeResult
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		liked, err := cs.likeRepo.ExistsForPost(ctx, tx, userID, postID)
		if err != nil {
			return fmt.Errorf("failed to check like: %w", err)
		}
		delta := 1
		if liked {
			delta = -1
			if err := cs.likeRepo.DeleteForPost(ctx, tx, userID, postID); err != nil {
				return fmt.Errorf("failed to remove like: %w", err)
			}
		} else {
			if err := cs.likeRepo.CreateForPost(ctx, tx, userID, postID); err != nil {
				return fmt.Errorf("failed to create like: %w", err)
			}
		}
		if err := cs.postRepo.AddLikes(ctx, tx, postID, delta); err != nil {
			return fmt.Errorf("failed to adjust like count: %w", err)
		}
		result.Liked = !liked
		result.LikesCount = post.LikesCount + delta
		if result.LikesCount < 0 {
			result.LikesCount = 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (cs *communityService) Stats(ctx context.Context) (*repos.CommunityStats, error) {
	var stats repos.CommunityStats
	if cs.redis != nil {
		hit, err := cs.redis.GetJSON(ctx, communityStatsCacheKey, &stats)
		if err != nil {
			cs.log.Warn("community stats cache read failed (ignored)", "error", err)
		} else if hit {
			return &stats, nil
		}
	}

	stats, err := cs.postRepo.Stats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compute community stats: %w", err)
	}

	if cs.redis != nil {
		if err := cs.redis.SetJSON(ctx, communityStatsCacheKey, stats, communityStatsCacheTTL); err != nil {
			cs.log.Warn("community stats cache write failed (ignored)", "error", err)
		}
	}
	return &stats, nil
}

func (cs *communityService) invalidateStats(ctx context.Context) {
	if cs.redis == nil {
		return
	}
	if err := cs.redis.Delete(ctx, communityStatsCacheKey); err != nil {
		cs.log.Warn("community stats cache invalidation failed (ignored)", "error", err)
	}
}
