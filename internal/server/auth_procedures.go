package server

import (
	"time"

	"dogpark/internal/middleware"
	"dogpark/internal/models"
	"dogpark/internal/service"
)

type successResponse struct {
	Success bool `json:"success"`
}

type loginResponse struct {
	Success bool `json:"success"`
	UserID  uint `json:"userId"`
}

func (s *Server) authProcedures() []*procedure {
	return []*procedure{
		def("auth.me", query, public, s.me),
		def("auth.register", mutation, public, s.register).
			use(middleware.RateLimit(s.redis, 5, 10*time.Minute, "auth.register")),
		def("auth.login", mutation, public, s.login).
			use(middleware.RateLimit(s.redis, 10, 5*time.Minute, "auth.login")),
		def("auth.logout", mutation, public, s.logout),
	}
}

// me returns the calling user, or null for anonymous callers and when the
// database is unreachable.
func (s *Server) me(rc *rpcCall, _ struct{}) (any, error) {
	if rc.userID == 0 {
		return nil, nil
	}
	svc, err := rc.services()
	if err != nil {
		if models.ErrorCode(err) == models.CodeUnavailable {
			return nil, nil
		}
		return nil, err
	}
	user, err := svc.auth.Me(rc.c.UserContext(), rc.userID)
	if err != nil || user == nil {
		return nil, err
	}
	return user, nil
}

// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param input body service.RegisterInput true "Registration"
// @Success 200 {object} successResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /rpc/auth.register [post]
func (s *Server) register(rc *rpcCall, in service.RegisterInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	if err := svc.auth.Register(rc.c.UserContext(), in); err != nil {
		return nil, err
	}
	return successResponse{Success: true}, nil
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param input body service.LoginInput true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /rpc/auth.login [post]
func (s *Server) login(rc *rpcCall, in service.LoginInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	user, err := svc.auth.Login(rc.c.UserContext(), in)
	if err != nil {
		return nil, err
	}
	token, claims, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.sessions.SetCookie(rc.c, token, claims.ExpiresAt)
	return loginResponse{Success: true, UserID: user.ID}, nil
}

// logout revokes the presented token when there is one. It never fails for
// anonymous callers.
func (s *Server) logout(rc *rpcCall, _ struct{}) (any, error) {
	if rc.claims != nil {
		if err := s.sessions.Revoke(rc.c.UserContext(), rc.claims); err != nil {
			middleware.Logger.WarnContext(rc.c.UserContext(), "session revoke failed")
		}
	}
	s.sessions.ClearCookie(rc.c)
	return successResponse{Success: true}, nil
}
