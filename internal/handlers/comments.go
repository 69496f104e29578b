package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherhub/gather-api/internal/auth"
	"github.com/gatherhub/gather-api/internal/models"
	"gorm.io/gorm"
)

type CommentHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewCommentHandler(db *gorm.DB, authHandler *auth.AuthHandler) *CommentHandler {
	return &CommentHandler{db: db, authHandler: authHandler}
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Approved  bool      `json:"approved"`
	LikeCount int64     `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListCommentsInput struct {
	PostID uint `path:"id" doc:"Post ID"`
}

type ListCommentsOutput struct {
	Body []CommentResponse
}

// HandleList returns a post's approved comments, oldest first.
func (h *CommentHandler) HandleList(ctx context.Context, input *ListCommentsInput) (*ListCommentsOutput, error) {
	var post models.Post
	if err := h.db.First(&post, input.PostID).Error; err != nil {
		return nil, huma.Error404NotFound("Post not found")
	}

	var comments []models.Comment
	err := h.db.Preload("Author").
		Where("post_id = ? AND approved = ?", post.ID, true).
		Order("created_at").
		Find(&comments).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to fetch comments")
	}

	res := &ListCommentsOutput{Body: make([]CommentResponse, 0, len(comments))}
	for i := range comments {
		res.Body = append(res.Body, h.newCommentResponse(&comments[i]))
	}
	return res, nil
}

type CreateCommentInput struct {
	auth.Credentials
	PostID uint `path:"id" doc:"Post ID"`
	Body   struct {
		Content string `json:"content" minLength:"1"`
	}
}

type CommentOutput struct {
	Status int
	Body   CommentResponse
}

func (h *CommentHandler) HandleCreate(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := h.db.First(&post, input.PostID).Error; err != nil {
		return nil, huma.Error404NotFound("Post not found")
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: user.ID,
		Content:  input.Body.Content,
		Approved: true,
	}
	if err := comment.Validate(); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err := h.db.Create(&comment).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create comment")
	}
	comment.Author = *user

	return &CommentOutput{Status: 201, Body: h.newCommentResponse(&comment)}, nil
}

type UpdateCommentInput struct {
	auth.Credentials
	ID   uint `path:"id"`
	Body struct {
		Content string `json:"content" minLength:"1"`
	}
}

func (h *CommentHandler) HandleUpdate(ctx context.Context, input *UpdateCommentInput) (*CommentOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := h.db.Preload("Author").First(&comment, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Comment not found")
	}
	if comment.AuthorID != user.ID {
		return nil, huma.Error403Forbidden("You do not have permission to edit this comment")
	}

	comment.Content = input.Body.Content
	if err := comment.Validate(); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err := h.db.Save(&comment).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update comment")
	}

	return &CommentOutput{Status: 200, Body: h.newCommentResponse(&comment)}, nil
}

type DeleteCommentInput struct {
	auth.Credentials
	ID uint `path:"id"`
}

func (h *CommentHandler) HandleDelete(ctx context.Context, input *DeleteCommentInput) (*struct{}, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := h.db.First(&comment, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Comment not found")
	}
	if comment.AuthorID != user.ID {
		return nil, huma.Error403Forbidden("You do not have permission to delete this comment")
	}
	if err := h.db.Delete(&comment).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete comment")
	}
	return nil, nil
}

type LikeCommentInput struct {
	auth.Credentials
	ID uint `path:"id"`
}

func (h *CommentHandler) HandleLike(ctx context.Context, input *LikeCommentInput) (*LikeOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := h.db.First(&comment, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Comment not found")
	}

	liked, count, err := toggleLike(h.db, "comment_likes", "comment_id", comment.ID, user)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to toggle like")
	}

	res := &LikeOutput{}
	res.Body.Liked = liked
	res.Body.LikeCount = count
	return res, nil
}

type ApproveCommentInput struct {
	auth.Credentials
	ID uint `path:"id"`
}

// HandleApprove toggles moderation approval. Only the post's author or a
// staff user may moderate.
func (h *CommentHandler) HandleApprove(ctx context.Context, input *ApproveCommentInput) (*CommentOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := h.db.Preload("Author").First(&comment, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Comment not found")
	}

	var post models.Post
	if err := h.db.First(&post, comment.PostID).Error; err != nil {
		return nil, huma.Error404NotFound("Post not found")
	}
	if post.AuthorID != user.ID && !user.IsStaff {
		return nil, huma.Error403Forbidden("You do not have permission to moderate this comment")
	}

	comment.Approved = !comment.Approved
	if err := h.db.Save(&comment).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update comment")
	}

	return &CommentOutput{Status: 200, Body: h.newCommentResponse(&comment)}, nil
}

func (h *CommentHandler) newCommentResponse(comment *models.Comment) CommentResponse {
	var likes int64
	h.db.Table("comment_likes").Where("comment_id = ?", comment.ID).Count(&likes)
	return CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Author:    comment.Author.Username,
		Content:   comment.Content,
		Approved:  comment.Approved,
		LikeCount: likes,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
