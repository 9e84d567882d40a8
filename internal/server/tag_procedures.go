package server

import "dogpark/internal/service"

func (s *Server) tagProcedures() []*procedure {
	return []*procedure{
		def("tags.list", query, public, s.listTags),
		def("tags.getByName", query, public, s.getTag),
		def("tags.search", query, public, s.searchTags).withFallback(emptyPage),
	}
}

func (s *Server) searchProcedures() []*procedure {
	return []*procedure{
		def("search.posts", query, public, s.searchPosts).withFallback(emptyPage),
	}
}

// @Summary List tags by usage
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Router /rpc/tags.list [get]
func (s *Server) listTags(rc *rpcCall, _ struct{}) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	return svc.tags.List(rc.c.UserContext())
}

func (s *Server) getTag(rc *rpcCall, in service.TagNameInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	return svc.tags.GetByName(rc.c.UserContext(), in)
}

func (s *Server) searchTags(rc *rpcCall, in service.SearchTagsInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	return svc.tags.Search(rc.c.UserContext(), rc.userID, in)
}

// @Summary Search published posts
// @Tags search
// @Produce json
// @Param input query string false "JSON {query, page, limit}"
// @Success 200 {object} models.PostPage
// @Router /rpc/search.posts [get]
func (s *Server) searchPosts(rc *rpcCall, in service.SearchPostsInput) (any, error) {
	svc, err := rc.services()
	if err != nil {
		return nil, err
	}
	return svc.search.Posts(rc.c.UserContext(), rc.userID, in)
}
