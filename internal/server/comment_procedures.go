package server

import (
	"time"

	"dogpark/internal/middleware"
	"dogpark/internal/service"
)

type createCommentResponse struct {
	Success   bool `json:"success"`
	CommentID uint `json:"commentId"`
}

type likedResponse struct {
	Liked bool `json:"liked"`
}

func (s *Server) commentProcedures() []*procedure {
	return []*procedure{
		def("comments.list", query, public, s.listComments),
		def("comments.create", mutation, protected, s.createComment).
			use(middleware.RateLimit(s.redis, 30, time.Minute, "comments.create")),
		def("comments.delete", mutation, protected, s.deleteComment),
	}
}

func (s *Server) likeProcedures() []*procedure {
	return []*procedure{
		def("likes.toggle", mutation, protected, s.toggleLike),
		def("likes.isLiked", query, protected, s.isLiked),
	}
}

func (s *Server) listComments(rc *rpcCall, in service.ListCommentsInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	return svc.comments.List(rc.c.UserContext(), in)
}

// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param input body service.CreateCommentInput true "Comment"
// @Success 200 {object} createCommentResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /rpc/comments.create [post]
func (s *Server) createComment(rc *rpcCall, in service.CreateCommentInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	id, err := svc.comments.Create(rc.c.UserContext(), rc.userID, in)
	if err != nil {
		return nil, err
	}
	return createCommentResponse{Success: true, CommentID: id}, nil
}

func (s *Server) deleteComment(rc *rpcCall, in service.DeleteCommentInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	if err := svc.comments.Delete(rc.c.UserContext(), rc.userID, in); err != nil {
		return nil, err
	}
	return successResponse{Success: true}, nil
}

// @Summary Like or unlike a post
// @Tags likes
// @Accept json
// @Produce json
// @Param input body service.LikeInput true "Post"
// @Success 200 {object} likedResponse
// @Router /rpc/likes.toggle [post]
func (s *Server) toggleLike(rc *rpcCall, in service.LikeInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	liked, err := svc.likes.Toggle(rc.c.UserContext(), rc.userID, in)
	if err != nil {
		return nil, err
	}
	return likedResponse{Liked: liked}, nil
}

func (s *Server) isLiked(rc *rpcCall, in service.LikeInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	liked, err := svc.likes.IsLiked(rc.c.UserContext(), rc.userID, in)
	if err != nil {
		return nil, err
	}
	return likedResponse{Liked: liked}, nil
}
