package dto

type RegisterRequest struct {
	Username      string `form:"username" binding:"notblank,min=3,max=50"`
	Email         string `form:"email" binding:"required,email,max=180"`
	PlainPassword string `form:"plainPassword" binding:"required,min=6,max=4096"`
}

type LoginInput struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username string `form:"username" binding:"notblank,min=3,max=50"`
	Email    string `form:"email" binding:"required,email,max=180"`
}

// CreateUserInput creates an account that can log in right away.
type CreateUserInput struct {
	Username string `json:"username" form:"username" binding:"notblank,min=3,max=50"`
	Email    string `json:"email" form:"email" binding:"required,email,max=180"`
	Password string `json:"password" form:"password" binding:"required,max=4096"`
	Admin    bool   `json:"admin" form:"admin"`
}
