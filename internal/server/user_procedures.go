package server

import "dogpark/internal/service"

func (s *Server) userProcedures() []*procedure {
	return []*procedure{
		def("user.getProfile", query, protected, s.getProfile),
		def("user.updateProfile", mutation, protected, s.updateProfile),
	}
}

func (s *Server) getProfile(rc *rpcCall, in service.GetProfileInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	return svc.users.GetProfile(rc.c.UserContext(), in)
}

// @Summary Update the caller's profile
// @Tags user
// @Accept json
// @Produce json
// @Param input body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} models.User
// @Failure 409 {object} models.ErrorResponse
// @Router /rpc/user.updateProfile [post]
func (s *Server) updateProfile(rc *rpcCall, in service.UpdateProfileInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	return svc.users.UpdateProfile(rc.c.UserContext(), rc.userID, in)
}
