package service

import (
	"strings"

	followrepo "microsocial/internal/domain/follow/repository"
	groupmodel "microsocial/internal/domain/group/model"
	grouprepo "microsocial/internal/domain/group/repository"
	postmodel "microsocial/internal/domain/post/model"
	postrepo "microsocial/internal/domain/post/repository"
	usermodel "microsocial/internal/domain/user/model"
	userrepo "microsocial/internal/domain/user/repository"
	"microsocial/internal/pkg/access"
)

// Search scopes.
const (
	ScopeAll      = "all"
	ScopeProfiles = "profiles"
	ScopePosts    = "posts"
	ScopeGroups   = "groups"
)

const sectionLimit = 20

// Result carries one section per requested scope. Profiles and groups are
// discoverable regardless of privacy; posts honor the visibility rules.
type Result struct {
	Profiles []usermodel.User  `json:"profiles,omitempty"`
	Posts    []postmodel.Post  `json:"posts,omitempty"`
	Groups   []groupmodel.Group `json:"groups,omitempty"`
}

// SearchService is a cross-domain read model over users, posts and groups.
type SearchService interface {
	Search(query, scope, viewerID string, viewerIsAdmin bool) (*Result, error)
}

type searchService struct {
	userRepo   userrepo.UserRepository
	postRepo   postrepo.PostRepository
	groupRepo  grouprepo.GroupRepository
	followRepo followrepo.FollowRepository
}

func NewSearchService(userRepo userrepo.UserRepository, postRepo postrepo.PostRepository, groupRepo grouprepo.GroupRepository, followRepo followrepo.FollowRepository) SearchService {
	return &searchService{
		userRepo:   userRepo,
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		followRepo: followRepo,
	}
}

func (s *searchService) Search(query, scope, viewerID string, viewerIsAdmin bool) (*Result, error) {
	query = strings.TrimSpace(query)
	result := &Result{}
	if query == "" {
		return result, nil
	}

	if scope == "" {
		scope = ScopeAll
	}

	if scope == ScopeAll || scope == ScopeProfiles {
		profiles, err := s.userRepo.SearchByName(query, sectionLimit)
		if err != nil {
			return nil, err
		}
		result.Profiles = profiles
	}

	if scope == ScopeAll || scope == ScopePosts {
		posts, err := s.searchPosts(query, viewerID, viewerIsAdmin)
		if err != nil {
			return nil, err
		}
		result.Posts = posts
	}

	if scope == ScopeAll || scope == ScopeGroups {
		groups, err := s.groupRepo.SearchGroups(query, sectionLimit)
		if err != nil {
			return nil, err
		}
		result.Groups = groups
	}

	return result, nil
}

// searchPosts over-fetches and filters through the visibility rules so a
// private account's posts never leak into results.
func (s *searchService) searchPosts(query, viewerID string, viewerIsAdmin bool) ([]postmodel.Post, error) {
	candidates, err := s.postRepo.SearchPosts(query, nil, sectionLimit*3)
	if err != nil {
		return nil, err
	}

	// Per-author verdicts are cached; result pages repeat authors a lot.
	verdicts := make(map[string]bool)
	visible := make([]postmodel.Post, 0, sectionLimit)

	for _, post := range candidates {
		if len(visible) == sectionLimit {
			break
		}
		if post.Author == nil {
			continue
		}

		ok, seen := verdicts[post.AuthorID]
		if !seen {
			accepted, err := s.followRepo.IsAcceptedFollower(viewerID, post.AuthorID)
			if err != nil {
				return nil, err
			}
			ok = access.CanView(post.Author.IsPublic, post.AuthorID, viewerID, viewerIsAdmin, accepted)
			verdicts[post.AuthorID] = ok
		}
		if ok {
			visible = append(visible, post)
		}
	}

	return visible, nil
}
