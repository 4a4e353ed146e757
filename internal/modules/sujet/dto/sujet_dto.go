package dto

type CreateSujetRequest struct {
	Name     string `form:"name" binding:"notblank,max=255"`
	Category uint   `form:"category" binding:"required"`
}

type ListFilter struct {
	CategoryFilter string `form:"category_filter"`
}

type SearchQuery struct {
	Q string `form:"q"`
}
