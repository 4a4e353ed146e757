package dto

type MemberRequest struct {
	Username string `form:"username" binding:"notblank,min=3,max=50"`
	Email    string `form:"email" binding:"required,email,max=180"`
	Password string `form:"password" binding:"max=4096"`
	Admin    bool   `form:"admin"`
}

type CategoryRequest struct {
	Name string `form:"name" binding:"notblank,max=255"`
}

type SujetRequest struct {
	Name     string `form:"name" binding:"notblank,max=255"`
	Category uint   `form:"category" binding:"required"`
}

type CommentRequest struct {
	Text    string `form:"text" binding:"notblank,min=5,max=2000"`
	Subject uint   `form:"subject" binding:"required"`
	// AuthorUser is optional, zero posts as anonymous.
	AuthorUser uint   `form:"authorUser"`
	Date       string `form:"date" binding:"required,datetime=2006-01-02T15:04"`
}

type DashboardStats struct {
	Users      int64
	Categories int64
	Sujets     int64
	Comments   int64
}
