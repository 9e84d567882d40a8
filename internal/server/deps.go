package server

import (
	"context"

	"dogpark/internal/repository"
	"dogpark/internal/service"

	"gorm.io/gorm"
)

// services is the per-connection service graph. It is rebuilt only when the
// lazy handle hands out a different *gorm.DB.
type services struct {
	db       *gorm.DB
	auth     *service.AuthService
	users    *service.UserService
	posts    *service.PostService
	comments *service.CommentService
	likes    *service.LikeService
	tags     *service.TagService
	search   *service.SearchService
}

// services returns the service graph, connecting to the database on demand.
// The error is UNAVAILABLE when no connection can be made.
func (s *Server) services(ctx context.Context) (*services, error) {
	db, err := s.handle.Get(ctx)
	if err != nil {
		return nil, err
	}

	s.svcMu.Lock()
	defer s.svcMu.Unlock()
	if s.svc != nil && s.svc.db == db {
		return s.svc, nil
	}
	s.svc = s.buildServices(db)
	return s.svc, nil
}

func (s *Server) buildServices(db *gorm.DB) *services {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)
	maxUpload := s.maxUploadBytes()

	return &services{
		db:    db,
		auth:  service.NewAuthService(userRepo, s.config.OwnerOpenID),
		users: service.NewUserService(userRepo, postRepo, s.store, s.cache, maxUpload),
		posts: service.NewPostService(service.PostServiceDeps{
			Posts:          postRepo,
			Images:         repository.NewImageRepository(db),
			Comments:       commentRepo,
			Tags:           tagRepo,
			Users:          userRepo,
			Store:          s.store,
			Cache:          s.cache,
			Flags:          s.featureFlags,
			MaxUploadBytes: maxUpload,
		}),
		comments: service.NewCommentService(commentRepo, postRepo, userRepo, s.cache, s.featureFlags),
		likes:    service.NewLikeService(repository.NewLikeRepository(db), postRepo, s.cache, s.featureFlags),
		tags:     service.NewTagService(tagRepo, postRepo, s.cache, s.featureFlags),
		search:   service.NewSearchService(postRepo, s.featureFlags),
	}
}

func (s *Server) maxUploadBytes() int64 {
	mb := s.config.ImageMaxUploadSizeMB
	if mb <= 0 {
		mb = 10
	}
	return int64(mb) << 20
}
