package dto

import (
	"anoa.com/communityforum/internal/entity"
)

// ProfileView is what the profile page shows about the logged in member.
type ProfileView struct {
	User     *entity.User
	Roles    []string
	Comments []*entity.Comment
}
