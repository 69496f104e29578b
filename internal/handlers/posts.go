package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherhub/gather-api/internal/auth"
	"github.com/gatherhub/gather-api/internal/config"
	"github.com/gatherhub/gather-api/internal/models"
	"gorm.io/gorm"
)

type PostHandler struct {
	db          *gorm.DB
	cfg         *config.Config
	authHandler *auth.AuthHandler
}

func NewPostHandler(db *gorm.DB, cfg *config.Config, authHandler *auth.AuthHandler) *PostHandler {
	return &PostHandler{db: db, cfg: cfg, authHandler: authHandler}
}

type PostResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Published bool      `json:"published"`
	Tags      []string  `json:"tags"`
	LikeCount int64     `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var postOrderings = map[string]string{
	"created_at": "posts.created_at",
	"title":      "posts.title",
}

type ListPostsInput struct {
	Author    string `query:"author" required:"false" doc:"Author username"`
	Tag       string `query:"tag" required:"false" doc:"Tag slug"`
	Published string `query:"published" required:"false" enum:"true,false"`
	Search    string `query:"search" required:"false" doc:"Search over title and content"`
	Ordering  string `query:"ordering" required:"false" doc:"created_at, title; prefix with - for descending"`
	PageInput
}

type ListPostsOutput struct {
	Body Page[PostResponse]
}

func (h *PostHandler) HandleList(ctx context.Context, input *ListPostsInput) (*ListPostsOutput, error) {
	query := h.db.Model(&models.Post{}).
		Joins("JOIN users ON users.id = posts.author_id").
		Preload("Author").
		Preload("Tags")

	if input.Author != "" {
		query = query.Where("users.username = ?", input.Author)
	}
	if input.Tag != "" {
		query = query.
			Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.slug = ?", input.Tag)
	}
	switch input.Published {
	case "true":
		query = query.Where("posts.published = ?", true)
	case "false":
		query = query.Where("posts.published = ?", false)
	}
	if input.Search != "" {
		pattern := likeContains(input.Search)
		query = query.Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?", pattern, pattern)
	}

	order := ordering(input.Ordering, "posts.created_at DESC", postOrderings)
	page, err := paginate[models.Post](query, h.cfg, input.PageInput, order)
	if err != nil {
		return nil, err
	}

	out := Page[PostResponse]{Count: page.Count, Page: page.Page, PageSize: page.PageSize, Results: []PostResponse{}}
	for i := range page.Results {
		out.Results = append(out.Results, h.newPostResponse(&page.Results[i]))
	}
	return &ListPostsOutput{Body: out}, nil
}

type CreatePostInput struct {
	auth.Credentials
	Body struct {
		Title     string   `json:"title" minLength:"1" maxLength:"200"`
		Content   string   `json:"content" minLength:"1"`
		Published *bool    `json:"published,omitempty" required:"false"`
		Tags      []string `json:"tags,omitempty" required:"false" doc:"Tag names; created on first use"`
	}
}

type PostOutput struct {
	Status int
	Body   PostResponse
}

func (h *PostHandler) HandleCreate(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Title:     input.Body.Title,
		Content:   input.Body.Content,
		AuthorID:  user.ID,
		Published: true,
	}
	if input.Body.Published != nil {
		post.Published = *input.Body.Published
	}
	if err := post.Validate(); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	tags, err := h.resolveTags(input.Body.Tags)
	if err != nil {
		return nil, err
	}
	post.Tags = tags

	if err := h.db.Create(&post).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create post")
	}
	post.Author = *user

	return &PostOutput{Status: 201, Body: h.newPostResponse(&post)}, nil
}

type GetPostInput struct {
	ID uint `path:"id"`
}

func (h *PostHandler) HandleGet(ctx context.Context, input *GetPostInput) (*PostOutput, error) {
	var post models.Post
	if err := h.db.Preload("Author").Preload("Tags").First(&post, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Post not found")
	}
	return &PostOutput{Status: 200, Body: h.newPostResponse(&post)}, nil
}

type UpdatePostInput struct {
	auth.Credentials
	ID   uint `path:"id"`
	Body struct {
		Title     string   `json:"title,omitempty" required:"false" maxLength:"200"`
		Content   string   `json:"content,omitempty" required:"false"`
		Published *bool    `json:"published,omitempty" required:"false"`
		Tags      []string `json:"tags,omitempty" required:"false"`
	}
}

func (h *PostHandler) HandleUpdate(ctx context.Context, input *UpdatePostInput) (*PostOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := h.db.Preload("Author").Preload("Tags").First(&post, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Post not found")
	}
	if post.AuthorID != user.ID {
		return nil, huma.Error403Forbidden("You do not have permission to edit this post")
	}

	if input.Body.Title != "" {
		post.Title = input.Body.Title
	}
	if input.Body.Content != "" {
		post.Content = input.Body.Content
	}
	if input.Body.Published != nil {
		post.Published = *input.Body.Published
	}
	if err := post.Validate(); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	if input.Body.Tags != nil {
		tags, err := h.resolveTags(input.Body.Tags)
		if err != nil {
			return nil, err
		}
		if err := h.db.Model(&post).Association("Tags").Replace(tags); err != nil {
			return nil, huma.Error500InternalServerError("Failed to update tags")
		}
		post.Tags = tags
	}

	if err := h.db.Save(&post).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update post")
	}

	return &PostOutput{Status: 200, Body: h.newPostResponse(&post)}, nil
}

type DeletePostInput struct {
	auth.Credentials
	ID uint `path:"id"`
}

func (h *PostHandler) HandleDelete(ctx context.Context, input *DeletePostInput) (*struct{}, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := h.db.First(&post, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Post not found")
	}
	if post.AuthorID != user.ID {
		return nil, huma.Error403Forbidden("You do not have permission to delete this post")
	}
	if err := h.db.Delete(&post).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete post")
	}
	return nil, nil
}

type LikePostInput struct {
	auth.Credentials
	ID uint `path:"id"`
}

type LikeOutput struct {
	Body struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"like_count"`
	}
}

// HandleLike toggles the caller's like on a post.
func (h *PostHandler) HandleLike(ctx context.Context, input *LikePostInput) (*LikeOutput, error) {
	user, err := h.authHandler.CurrentUser(input.Credentials)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := h.db.First(&post, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Post not found")
	}

	liked, count, err := toggleLike(h.db, "post_likes", "post_id", post.ID, user)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to toggle like")
	}

	res := &LikeOutput{}
	res.Body.Liked = liked
	res.Body.LikeCount = count
	return res, nil
}

// resolveTags finds or creates tags by name.
func (h *PostHandler) resolveTags(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		slug := models.Slugify(name)
		if slug == "" {
			continue
		}
		var tag models.Tag
		if err := h.db.Where("slug = ?", slug).
			Attrs(models.Tag{Name: name, Slug: slug}).
			FirstOrCreate(&tag).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to resolve tags")
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (h *PostHandler) newPostResponse(post *models.Post) PostResponse {
	tags := make([]string, 0, len(post.Tags))
	for _, t := range post.Tags {
		tags = append(tags, t.Slug)
	}
	var likes int64
	h.db.Table("post_likes").Where("post_id = ?", post.ID).Count(&likes)
	return PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Author:    post.Author.Username,
		Published: post.Published,
		Tags:      tags,
		LikeCount: likes,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// toggleLike flips a user's row in a many2many like table and returns the
// new state plus the total count.
func toggleLike(db *gorm.DB, table, fkColumn string, id uint, user *models.User) (bool, int64, error) {
	var existing int64
	if err := db.Table(table).
		Where(fkColumn+" = ? AND user_id = ?", id, user.ID).
		Count(&existing).Error; err != nil {
		return false, 0, err
	}

	liked := existing == 0
	if liked {
		err := db.Exec("INSERT INTO "+table+" ("+fkColumn+", user_id) VALUES (?, ?)", id, user.ID).Error
		if err != nil {
			return false, 0, err
		}
	} else {
		err := db.Exec("DELETE FROM "+table+" WHERE "+fkColumn+" = ? AND user_id = ?", id, user.ID).Error
		if err != nil {
			return false, 0, err
		}
	}

	var count int64
	if err := db.Table(table).Where(fkColumn+" = ?", id).Count(&count).Error; err != nil {
		return false, 0, err
	}
	return liked, count, nil
}
