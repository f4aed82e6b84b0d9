// Package access holds the single visibility rule-set for user content.
// Post, comment, profile and search code must all decide through CanView
// rather than re-deriving the rules inline.
package access

// CanView reports whether a viewer may read content owned by the given
// user. Rules are evaluated in order, first match wins:
//
//  1. platform administrators see everything
//  2. public accounts are visible to anyone
//  3. anonymous viewers see nothing private
//  4. owners always see their own content
//  5. otherwise only accepted followers
//
// viewerID is empty for unauthenticated viewers. isAcceptedFollower must
// reflect an Accepted follow edge from viewer to owner; pending edges do
// not grant access.
func CanView(ownerIsPublic bool, ownerID, viewerID string, viewerIsAdmin, isAcceptedFollower bool) bool {
	if viewerIsAdmin {
		return true
	}
	if ownerIsPublic {
		return true
	}
	if viewerID == "" {
		return false
	}
	if viewerID == ownerID {
		return true
	}
	return isAcceptedFollower
}
