package api

import "cartbackend/models"

// DomainUserToAPIUser converts a domain User model to an API UserModel
func DomainUserToAPIUser(domainUser *models.User) *UserModel {
	if domainUser == nil {
		return nil
	}

	return &UserModel{
		ID:          domainUser.ID,
		Email:       domainUser.Email,
		DisplayName: domainUser.DisplayName,
		AvatarURL:   domainUser.AvatarURL,
		CreatedAt:   domainUser.CreatedAt,
		UpdatedAt:   domainUser.UpdatedAt,
	}
}
