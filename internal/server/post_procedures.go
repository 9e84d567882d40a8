package server

import (
	"time"

	"dogpark/internal/middleware"
	"dogpark/internal/models"
	"dogpark/internal/service"
)

type createPostResponse struct {
	Success bool `json:"success"`
	PostID  uint `json:"postId"`
}

// emptyPage is served by list queries while the database is unreachable.
var emptyPage = &models.PostPage{Posts: []models.Post{}, Total: 0}

func (s *Server) postProcedures() []*procedure {
	return []*procedure{
		def("posts.list", query, public, s.listPosts).withFallback(emptyPage),
		def("posts.listByUser", query, public, s.listPostsByUser),
		def("posts.getById", query, public, s.getPost),
		def("posts.create", mutation, protected, s.createPost).
			use(middleware.RateLimit(s.redis, 10, 5*time.Minute, "posts.create")),
		def("posts.update", mutation, protected, s.updatePost),
		def("posts.delete", mutation, protected, s.deletePost),
	}
}

// @Summary List published posts
// @Tags posts
// @Produce json
// @Param input query string false "JSON {page, limit}"
// @Success 200 {object} models.PostPage
// @Router /rpc/posts.list [get]
func (s *Server) listPosts(rc *rpcCall, in service.ListPostsInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	return svc.posts.List(rc.c.UserContext(), in)
}

func (s *Server) listPostsByUser(rc *rpcCall, in service.ListByUserInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	return svc.posts.ListByUser(rc.c.UserContext(), rc.userID, in)
}

// @Summary Get a post with images, comments and tags
// @Tags posts
// @Produce json
// @Param input query string true "JSON {id}"
// @Success 200 {object} models.PostDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /rpc/posts.getById [get]
func (s *Server) getPost(rc *rpcCall, in service.PostIDInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	return svc.posts.GetByID(rc.c.UserContext(), in)
}

// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param input body service.CreatePostInput true "Post"
// @Success 200 {object} createPostResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /rpc/posts.create [post]
func (s *Server) createPost(rc *rpcCall, in service.CreatePostInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	id, err := svc.posts.Create(rc.c.UserContext(), rc.userID, in)
	if err != nil {
		return nil, err
	}
	return createPostResponse{Success: true, PostID: id}, nil
}

func (s *Server) updatePost(rc *rpcCall, in service.UpdatePostInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	if err := svc.posts.Update(rc.c.UserContext(), rc.userID, in); err != nil {
		return nil, err
	}
	return successResponse{Success: true}, nil
}

func (s *Server) deletePost(rc *rpcCall, in service.PostIDInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	if err := svc.posts.Delete(rc.c.UserContext(), rc.userID, in); err != nil {
		return nil, err
	}
	return successResponse{Success: true}, nil
}
