package dto

type ResetRequest struct {
	Email string `form:"email" binding:"required,email"`
}

type ChangePasswordRequest struct {
	PlainPassword        string `form:"plainPassword" binding:"required,min=8,max=4096"`
	PlainPasswordConfirm string `form:"plainPasswordConfirm" binding:"eqfield=PlainPassword"`
}
