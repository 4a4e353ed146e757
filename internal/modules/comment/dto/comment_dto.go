package dto

// PostCommentRequest is the comment box under a subject. Blank text is
// reported by the service, not by binding.
type PostCommentRequest struct {
	Text string `form:"text"`
}

type EditCommentRequest struct {
	Text string `form:"text" binding:"notblank,min=5,max=2000"`
}
